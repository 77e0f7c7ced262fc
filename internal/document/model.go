package document

import (
	"encoding/json"
	"slices"
)

// Kind identifies which variant of Element a value is.
type Kind string

const (
	KindLine      Kind = "line"
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindPencil    Kind = "pencil"
	KindText      Kind = "text"
)

// LineHeight is the fixed height of a text element, in document units.
const LineHeight = 25.0

// DefaultStroke is applied to shapes created without a stroke colour.
const DefaultStroke = "#000"

// Palette is the fixed set of colours offered for fill and stroke.
// A fill may additionally be empty, meaning no fill.
var Palette = []string{"Black", "Crimson", "Green", "SteelBlue", "Orange", "Grey"}

// InPalette reports whether c is one of the palette colours.
func InPalette(c string) bool {
	return slices.Contains(Palette, c)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is a pair of corner points. It is not necessarily normalized.
type Bounds struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Contains checks if a point is inside the bounds, edges included.
// Bounds are assumed to be normalized.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X1 && x <= b.X2 && y >= b.Y1 && y <= b.Y2
}

type Style struct {
	Fill   string `json:"fill,omitempty"`
	Stroke string `json:"stroke"`
}

// normalized fills in the defaults: no fill and a black stroke.
func (s Style) normalized() Style {
	if s.Stroke == "" {
		s.Stroke = DefaultStroke
	}
	return s
}

// Element is one drawable unit of a document. The set of implementations is
// closed: Shape, Pencil and Text.
type Element interface {
	ID() int
	Kind() Kind
	isElement()
}

// Shape is a line, rectangle or ellipse spanned by two corner points.
type Shape struct {
	id       int
	kind     Kind
	X1       float64
	Y1       float64
	X2       float64
	Y2       float64
	Style    Style
	drawable Drawable
}

func (s Shape) ID() int    { return s.id }
func (s Shape) Kind() Kind { return s.kind }
func (Shape) isElement()   {}

// Bounds returns the two defining corner points.
func (s Shape) Bounds() Bounds {
	return Bounds{X1: s.X1, Y1: s.Y1, X2: s.X2, Y2: s.Y2}
}

// Drawable returns the render-ready outline built when the shape was created.
func (s Shape) Drawable() Drawable {
	return s.drawable
}

func (s Shape) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int      `json:"id"`
		Kind     Kind     `json:"kind"`
		X1       float64  `json:"x1"`
		Y1       float64  `json:"y1"`
		X2       float64  `json:"x2"`
		Y2       float64  `json:"y2"`
		Fill     string   `json:"fill,omitempty"`
		Stroke   string   `json:"stroke"`
		Drawable Drawable `json:"drawable"`
	}{s.id, s.kind, s.X1, s.Y1, s.X2, s.Y2, s.Style.Fill, s.Style.Stroke, s.drawable})
}

// Pencil is a freehand stroke. Point order is stroke order.
type Pencil struct {
	id     int
	Points []Point
}

func (p Pencil) ID() int  { return p.id }
func (Pencil) Kind() Kind { return KindPencil }
func (Pencil) isElement() {}

func (p Pencil) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     int     `json:"id"`
		Kind   Kind    `json:"kind"`
		Points []Point `json:"points"`
	}{p.id, KindPencil, p.Points})
}

// Text is a single line of text anchored at its top-left corner. The far
// corner is derived from the measured width and LineHeight.
type Text struct {
	id      int
	X1      float64
	Y1      float64
	X2      float64
	Y2      float64
	Content string
}

func (t Text) ID() int  { return t.id }
func (Text) Kind() Kind { return KindText }
func (Text) isElement() {}

func (t Text) Bounds() Bounds {
	return Bounds{X1: t.X1, Y1: t.Y1, X2: t.X2, Y2: t.Y2}
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      int     `json:"id"`
		Kind    Kind    `json:"kind"`
		X1      float64 `json:"x1"`
		Y1      float64 `json:"y1"`
		X2      float64 `json:"x2"`
		Y2      float64 `json:"y2"`
		Content string  `json:"text"`
	}{t.id, KindText, t.X1, t.Y1, t.X2, t.Y2, t.Content})
}

// Document is the ordered element sequence. An element's ID is its index.
type Document []Element

// Clone returns a copy that shares no mutable memory with d.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d))
	for i, el := range d {
		switch e := el.(type) {
		case Shape:
			e.drawable = e.drawable.clone()
			out[i] = e
		case Pencil:
			e.Points = slices.Clone(e.Points)
			out[i] = e
		default:
			out[i] = el
		}
	}
	return out
}

// Replace returns a copy of d with the element at el.ID() swapped for el.
func (d Document) Replace(el Element) Document {
	out := slices.Clone(d)
	out[el.ID()] = el
	return out
}
