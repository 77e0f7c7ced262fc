package geometry

import (
	"math"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
)

// Cursor is an advisory pointer shape for the UI.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorNWSE    Cursor = "nwse-resize"
	CursorNESW    Cursor = "nesw-resize"
	CursorMove    Cursor = "move"
)

// NormalizeBounds orders a rectangle or ellipse as (min,min)-(max,max) and a
// line so its first point precedes the second by x, then by y. Other kinds
// are returned unchanged.
func NormalizeBounds(kind document.Kind, b document.Bounds) document.Bounds {
	switch kind {
	case document.KindRectangle, document.KindEllipse:
		return document.Bounds{
			X1: math.Min(b.X1, b.X2),
			Y1: math.Min(b.Y1, b.Y2),
			X2: math.Max(b.X1, b.X2),
			Y2: math.Max(b.Y1, b.Y2),
		}
	case document.KindLine:
		if b.X1 < b.X2 || (b.X1 == b.X2 && b.Y1 < b.Y2) {
			return b
		}
		return document.Bounds{X1: b.X2, Y1: b.Y2, X2: b.X1, Y2: b.Y1}
	default:
		return b
	}
}

// ResizeFromHandle moves the grabbed corner or end point to (px, py) and
// keeps the opposite one fixed. Unknown handles leave b unchanged.
func ResizeFromHandle(px, py float64, handle Position, b document.Bounds) document.Bounds {
	switch handle {
	case TopLeft, Start:
		return document.Bounds{X1: px, Y1: py, X2: b.X2, Y2: b.Y2}
	case TopRight:
		return document.Bounds{X1: b.X1, Y1: py, X2: px, Y2: b.Y2}
	case BottomLeft:
		return document.Bounds{X1: px, Y1: b.Y1, X2: b.X2, Y2: py}
	case BottomRight, End:
		return document.Bounds{X1: b.X1, Y1: b.Y1, X2: px, Y2: py}
	default:
		return b
	}
}

func CursorForHandle(p Position) Cursor {
	switch p {
	case TopLeft, BottomRight, Start, End:
		return CursorNWSE
	case TopRight, BottomLeft:
		return CursorNESW
	default:
		return CursorMove
	}
}
