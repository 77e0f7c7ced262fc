package document

// NewSampleDocument returns a small document with one element of every kind,
// used by the browser playground.
func NewSampleDocument() Document {
	rect, _ := Create(0, 120, 100, 360, 260, KindRectangle, Style{Fill: "SteelBlue", Stroke: "Black"})
	ellipse, _ := Create(1, 420, 120, 620, 260, KindEllipse, Style{Stroke: "Crimson"})
	line, _ := Create(2, 120, 320, 620, 380, KindLine, Style{Stroke: "Green"})

	pencil, _ := Create(3, 140, 440, 0, 0, KindPencil, Style{})
	for _, p := range []Point{{180, 470}, {220, 450}, {260, 480}, {300, 455}} {
		pencil, _ = Update(pencil, EditContext{Anchor: p, Far: &p})
	}

	text, _ := Create(4, 420, 440, 420, 440, KindText, Style{})
	content := "sketchpad"
	// Without a measurer the width stays zero until the text is edited.
	text, _ = Update(text, EditContext{Anchor: Point{X: 420, Y: 440}, Content: &content})

	return Document{rect, ellipse, line, pencil, text}
}
