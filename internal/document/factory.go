package document

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidKind    = errors.New("invalid element kind")
	ErrUnknownElement = errors.New("unknown element type")
)

// Measurer measures rendered text. *gg.Context satisfies it once a font
// face has been set.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// EditContext carries the inputs of an interactive edit. Anchor is always
// set; the rest are optional and nil/empty when absent.
type EditContext struct {
	Anchor   Point
	Far      *Point
	Content  *string
	Points   []Point
	Measurer Measurer
}

// Create builds a new element of the given kind. Shapes get their drawable
// built from the corners and style; a pencil starts as a single point at
// (x1, y1); text starts empty with its far corner at the anchor.
func Create(id int, x1, y1, x2, y2 float64, kind Kind, style Style) (Element, error) {
	switch kind {
	case KindLine, KindRectangle, KindEllipse:
		style = style.normalized()
		return Shape{
			id:       id,
			kind:     kind,
			X1:       x1,
			Y1:       y1,
			X2:       x2,
			Y2:       y2,
			Style:    style,
			drawable: buildDrawable(kind, x1, y1, x2, y2, style),
		}, nil

	case KindPencil:
		return Pencil{id: id, Points: []Point{{X: x1, Y: y1}}}, nil

	case KindText:
		return Text{id: id, X1: x1, Y1: y1, X2: x2, Y2: y2}, nil

	default:
		return nil, fmt.Errorf("create element %d: %w: %q", id, ErrInvalidKind, kind)
	}
}

// Update re-derives el after an interactive edit and returns the new
// element. The input element is never modified.
func Update(el Element, ctx EditContext) (Element, error) {
	switch e := el.(type) {
	case Shape:
		if ctx.Far == nil {
			return e, nil
		}
		return Create(e.id, ctx.Anchor.X, ctx.Anchor.Y, ctx.Far.X, ctx.Far.Y, e.kind, e.Style)

	case Pencil:
		if ctx.Points != nil {
			return Pencil{id: e.id, Points: slices.Clone(ctx.Points)}, nil
		}
		if ctx.Far == nil {
			return e, nil
		}
		points := make([]Point, len(e.Points), len(e.Points)+1)
		copy(points, e.Points)
		return Pencil{id: e.id, Points: append(points, *ctx.Far)}, nil

	case Text:
		return updateText(e, ctx), nil

	default:
		return nil, fmt.Errorf("update element: %w: %T", ErrUnknownElement, el)
	}
}

func updateText(t Text, ctx EditContext) Text {
	content := t.Content
	if ctx.Content != nil {
		content = *ctx.Content
	}

	width := t.X2 - t.X1
	if ctx.Measurer != nil {
		width, _ = ctx.Measurer.MeasureString(content)
	}

	return Text{
		id:      t.id,
		X1:      ctx.Anchor.X,
		Y1:      ctx.Anchor.Y,
		X2:      ctx.Anchor.X + width,
		Y2:      ctx.Anchor.Y + LineHeight,
		Content: content,
	}
}
