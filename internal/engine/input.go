package engine

import (
	"fmt"
	"strings"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/geometry"
)

// Button is a pointer button code, numbered like DOM MouseEvent.button.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Key names, as reported by DOM KeyboardEvent.key.
const (
	KeySpace   = " "
	KeyControl = "Control"
	KeyMeta    = "Meta"
	KeyShift   = "Shift"
)

// PointerEvent is a pointer press, move or release in screen coordinates.
type PointerEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button Button  `json:"button"`
}

// WheelEvent carries scroll deltas in screen pixels.
type WheelEvent struct {
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
}

// PointerDown starts an interaction: panning, grabbing an existing element
// with the selection tool, or creating a new element with a drawing tool.
// Presses are ignored while text is being written.
func (e *Engine) PointerDown(ev PointerEvent) error {
	if e.action == ActionWriting {
		return nil
	}
	defer e.changed()

	p := e.view.ToDocument(ev.X, ev.Y)

	if ev.Button == ButtonMiddle || e.keys[KeySpace] {
		e.panStart = p
		e.setAction(ActionPanning)
		return nil
	}

	if e.tool == ToolSelection {
		return e.grab(p)
	}
	return e.create(p)
}

// grab selects the topmost element under p. The unchanged document is
// committed so that everything the interaction overwrites lands in one new
// undo step.
func (e *Engine) grab(p document.Point) error {
	doc := e.history.Current()
	hit, ok, err := geometry.FindTopmostHit(p, doc)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	if !ok {
		return nil
	}

	sel := &Selection{
		Index:    hit.Element.ID(),
		Element:  hit.Element,
		Position: hit.Position,
		Captured: true,
	}
	switch el := hit.Element.(type) {
	case document.Pencil:
		sel.Offsets = make([]document.Point, len(el.Points))
		for i, pt := range el.Points {
			sel.Offsets[i] = document.Point{X: p.X - pt.X, Y: p.Y - pt.Y}
		}
	case document.Shape:
		sel.Offset = document.Point{X: p.X - el.X1, Y: p.Y - el.Y1}
	case document.Text:
		sel.Offset = document.Point{X: p.X - el.X1, Y: p.Y - el.Y1}
	}

	e.selection = sel
	e.history.Commit(doc)

	if hit.Position == geometry.Inside {
		e.setAction(ActionMoving)
	} else {
		e.setAction(ActionResizing)
	}
	return nil
}

// create appends a zero-size element of the active tool's kind at p.
func (e *Engine) create(p document.Point) error {
	doc := e.history.Current()
	el, err := document.Create(len(doc), p.X, p.Y, p.X, p.Y, document.Kind(e.tool), e.style)
	if err != nil {
		return fmt.Errorf("draw with tool %q: %w", e.tool, err)
	}

	e.history.Commit(append(doc, el))
	e.selection = &Selection{Index: el.ID(), Element: el}

	if e.tool == ToolText {
		e.setAction(ActionWriting)
	} else {
		e.setAction(ActionDrawing)
	}
	return nil
}

// PointerMove advances the interaction in progress. With the selection tool
// and nothing in progress it only updates the cursor hint.
func (e *Engine) PointerMove(ev PointerEvent) error {
	p := e.view.ToDocument(ev.X, ev.Y)

	switch e.action {
	case ActionPanning:
		e.view.PanX += p.X - e.panStart.X
		e.view.PanY += p.Y - e.panStart.Y
		e.changed()
		return nil

	case ActionDrawing:
		defer e.changed()
		return e.drawTo(p)

	case ActionMoving:
		defer e.changed()
		return e.moveTo(p)

	case ActionResizing:
		defer e.changed()
		return e.resizeTo(p)

	case ActionIdle:
		if e.tool == ToolSelection {
			return e.hover(p)
		}
	}
	return nil
}

func (e *Engine) hover(p document.Point) error {
	hit, ok, err := geometry.FindTopmostHit(p, e.history.Current())
	if err != nil {
		return fmt.Errorf("hover: %w", err)
	}
	cursor := geometry.CursorDefault
	if ok {
		cursor = geometry.CursorForHandle(hit.Position)
	}
	if cursor != e.cursor {
		e.cursor = cursor
		e.changed()
	}
	return nil
}

// drawTo drags the far point of the element being drawn, or extends the
// pencil stroke, as an overwrite of the current snapshot.
func (e *Engine) drawTo(p document.Point) error {
	doc := e.history.Current()
	if len(doc) == 0 {
		return nil
	}
	el := doc[len(doc)-1]

	ctx := document.EditContext{Far: &p}
	switch cur := el.(type) {
	case document.Pencil:
		ctx.Anchor = cur.Points[len(cur.Points)-1]
	case document.Shape:
		ctx.Anchor = document.Point{X: cur.X1, Y: cur.Y1}
	case document.Text:
		ctx.Anchor = document.Point{X: cur.X1, Y: cur.Y1}
	}
	return e.overwrite(doc, el, ctx)
}

// moveTo translates the selected element so the grabbed point follows the
// pointer.
func (e *Engine) moveTo(p document.Point) error {
	sel := e.selection
	if sel == nil {
		return nil
	}
	doc := e.history.Current()

	var ctx document.EditContext
	switch el := sel.Element.(type) {
	case document.Pencil:
		points := make([]document.Point, len(sel.Offsets))
		for i, off := range sel.Offsets {
			points[i] = document.Point{X: p.X - off.X, Y: p.Y - off.Y}
		}
		ctx.Points = points

	case document.Shape:
		x, y := p.X-sel.Offset.X, p.Y-sel.Offset.Y
		ctx.Anchor = document.Point{X: x, Y: y}
		ctx.Far = &document.Point{X: x + el.X2 - el.X1, Y: y + el.Y2 - el.Y1}

	case document.Text:
		x, y := p.X-sel.Offset.X, p.Y-sel.Offset.Y
		ctx.Anchor = document.Point{X: x, Y: y}
		ctx.Content = &el.Content
		ctx.Measurer = e.measurer
	}
	return e.overwrite(doc, sel.Element, ctx)
}

// resizeTo moves the grabbed handle of the selected shape to the pointer,
// keeping the opposite corner where it was when the drag started.
func (e *Engine) resizeTo(p document.Point) error {
	sel := e.selection
	if sel == nil {
		return nil
	}
	shape, ok := sel.Element.(document.Shape)
	if !ok {
		return nil
	}

	b := geometry.ResizeFromHandle(p.X, p.Y, sel.Position, shape.Bounds())
	ctx := document.EditContext{
		Anchor: document.Point{X: b.X1, Y: b.Y1},
		Far:    &document.Point{X: b.X2, Y: b.Y2},
	}
	return e.overwrite(e.history.Current(), shape, ctx)
}

// PointerUp finishes the interaction. Releasing a text element exactly where
// it was grabbed opens it for editing instead. A drawn or resized shape is
// normalized so its first corner is the minimum.
func (e *Engine) PointerUp(ev PointerEvent) error {
	defer e.changed()
	p := e.view.ToDocument(ev.X, ev.Y)

	if sel := e.selection; sel != nil {
		if t, ok := sel.Element.(document.Text); ok && sel.Captured &&
			p.X-sel.Offset.X == t.X1 && p.Y-sel.Offset.Y == t.Y1 {
			e.setAction(ActionWriting)
			return nil
		}

		if e.action == ActionDrawing || e.action == ActionResizing {
			if err := e.settle(sel.Index); err != nil {
				return err
			}
		}
	}

	if e.action == ActionWriting {
		return nil
	}

	e.selection = nil
	e.setAction(ActionIdle)
	return nil
}

// settle normalizes the corners of the shape at index.
func (e *Engine) settle(index int) error {
	doc := e.history.Current()
	if index >= len(doc) {
		return nil
	}
	shape, ok := doc[index].(document.Shape)
	if !ok {
		return nil
	}

	b := geometry.NormalizeBounds(shape.Kind(), shape.Bounds())
	ctx := document.EditContext{
		Anchor: document.Point{X: b.X1, Y: b.Y1},
		Far:    &document.Point{X: b.X2, Y: b.Y2},
	}
	return e.overwrite(doc, shape, ctx)
}

// Blur commits the overlay's text into the element being written and ends
// the interaction. It does nothing unless text is being written.
func (e *Engine) Blur(content string) error {
	if e.action != ActionWriting || e.selection == nil {
		return nil
	}
	t, ok := e.selection.Element.(document.Text)
	if !ok {
		return nil
	}
	defer e.changed()

	doc := e.history.Current()
	ctx := document.EditContext{
		Anchor:   document.Point{X: t.X1, Y: t.Y1},
		Content:  &content,
		Measurer: e.measurer,
	}
	if err := e.overwrite(doc, doc[e.selection.Index], ctx); err != nil {
		return err
	}

	e.selection = nil
	e.setAction(ActionIdle)
	return nil
}

// overwrite applies ctx to el and replaces the current snapshot with the
// result.
func (e *Engine) overwrite(doc document.Document, el document.Element, ctx document.EditContext) error {
	updated, err := document.Update(el, ctx)
	if err != nil {
		return fmt.Errorf("edit element %d: %w", el.ID(), err)
	}
	e.history.Overwrite(doc.Replace(updated))
	return nil
}

// KeyDown records a held key and handles the undo (Ctrl/Cmd+Z) and redo
// (Ctrl/Cmd+Shift+Z) shortcuts.
func (e *Engine) KeyDown(key string) {
	key = normalizeKey(key)
	e.keys[key] = true

	if key != "z" || !(e.keys[KeyControl] || e.keys[KeyMeta]) {
		return
	}
	if e.keys[KeyShift] {
		e.Redo()
	} else {
		e.Undo()
	}
}

func (e *Engine) KeyUp(key string) {
	delete(e.keys, normalizeKey(key))
}

// normalizeKey folds single letters so Shift+Z and z are the same key.
func normalizeKey(key string) string {
	if len(key) == 1 {
		return strings.ToLower(key)
	}
	return key
}

// Wheel pans the view, or zooms it while Control or Meta is held.
func (e *Engine) Wheel(ev WheelEvent) {
	if e.keys[KeyControl] || e.keys[KeyMeta] {
		e.Zoom(-ev.DeltaY * WheelZoomFactor)
		return
	}
	e.view.PanX -= ev.DeltaX
	e.view.PanY -= ev.DeltaY
	e.changed()
}
