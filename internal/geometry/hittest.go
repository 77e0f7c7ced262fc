// Package geometry answers where a document point lands on an element and
// how an element's corners change under a resize. It holds no state.
package geometry

import (
	"fmt"
	"math"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
)

// Position is the result of a hit test: a grab handle, the interior, or None.
type Position string

const (
	None        Position = ""
	Inside      Position = "inside"
	Start       Position = "start"
	End         Position = "end"
	TopLeft     Position = "tl"
	TopRight    Position = "tr"
	BottomLeft  Position = "bl"
	BottomRight Position = "br"
)

const (
	// HandleTolerance is how close, per axis, a point must be to grab a handle.
	HandleTolerance = 5.0
	// SegmentTolerance is the slack allowed when testing a point against a line.
	SegmentTolerance = 1.0
	// StrokeTolerance is the slack allowed against a freehand stroke segment.
	StrokeTolerance = 5.0
)

// PointNear returns tag when (px, py) is within HandleTolerance of (tx, ty)
// on both axes, else None.
func PointNear(px, py, tx, ty float64, tag Position) Position {
	if math.Abs(px-tx) < HandleTolerance && math.Abs(py-ty) < HandleTolerance {
		return tag
	}
	return None
}

// PointOnSegment returns Inside when p lies approximately on the segment a-b,
// judged by how far d(a,p)+d(p,b) exceeds d(a,b). Points near the ends of the
// segment but off its line can be missed.
func PointOnSegment(x1, y1, x2, y2, px, py, tolerance float64) Position {
	ab := math.Hypot(x2-x1, y2-y1)
	ap := math.Hypot(px-x1, py-y1)
	bp := math.Hypot(px-x2, py-y2)
	if math.Abs(ab-(ap+bp)) < tolerance {
		return Inside
	}
	return None
}

// HitTest reports where p falls on el.
func HitTest(p document.Point, el document.Element) (Position, error) {
	switch e := el.(type) {
	case document.Shape:
		switch e.Kind() {
		case document.KindLine:
			return hitLine(p, e), nil
		case document.KindRectangle:
			return hitRectangle(p, e), nil
		case document.KindEllipse:
			return hitEllipse(p, e), nil
		}
		return None, fmt.Errorf("hit test: %w: shape kind %q", document.ErrUnknownElement, e.Kind())

	case document.Pencil:
		return hitPencil(p, e), nil

	case document.Text:
		if e.Bounds().Contains(p.X, p.Y) {
			return Inside, nil
		}
		return None, nil

	default:
		return None, fmt.Errorf("hit test: %w: %T", document.ErrUnknownElement, el)
	}
}

func hitLine(p document.Point, e document.Shape) Position {
	return first(
		PointNear(p.X, p.Y, e.X1, e.Y1, Start),
		PointNear(p.X, p.Y, e.X2, e.Y2, End),
		PointOnSegment(e.X1, e.Y1, e.X2, e.Y2, p.X, p.Y, SegmentTolerance),
	)
}

func hitRectangle(p document.Point, e document.Shape) Position {
	inside := None
	if e.Bounds().Contains(p.X, p.Y) {
		inside = Inside
	}
	return first(
		PointNear(p.X, p.Y, e.X1, e.Y1, TopLeft),
		PointNear(p.X, p.Y, e.X2, e.Y1, TopRight),
		PointNear(p.X, p.Y, e.X1, e.Y2, BottomLeft),
		PointNear(p.X, p.Y, e.X2, e.Y2, BottomRight),
		inside,
	)
}

// hitEllipse grabs the four axis end points (left, right, top, bottom, tagged
// tl, tr, bl, br) before testing the ellipse interior.
func hitEllipse(p document.Point, e document.Shape) Position {
	cx, cy := (e.X1+e.X2)/2, (e.Y1+e.Y2)/2
	a, b := math.Abs(e.X2-e.X1)/2, math.Abs(e.Y2-e.Y1)/2

	inside := None
	dx, dy := (p.X-cx)/a, (p.Y-cy)/b
	// A degenerate axis yields NaN or Inf, which never passes.
	if dx*dx+dy*dy <= 1 {
		inside = Inside
	}
	return first(
		PointNear(p.X, p.Y, e.X1, cy, TopLeft),
		PointNear(p.X, p.Y, e.X2, cy, TopRight),
		PointNear(p.X, p.Y, cx, e.Y1, BottomLeft),
		PointNear(p.X, p.Y, cx, e.Y2, BottomRight),
		inside,
	)
}

func hitPencil(p document.Point, e document.Pencil) Position {
	for i := 0; i+1 < len(e.Points); i++ {
		a, b := e.Points[i], e.Points[i+1]
		if PointOnSegment(a.X, a.Y, b.X, b.Y, p.X, p.Y, StrokeTolerance) != None {
			return Inside
		}
	}
	return None
}

func first(candidates ...Position) Position {
	for _, c := range candidates {
		if c != None {
			return c
		}
	}
	return None
}

// Hit pairs an element with where it was hit.
type Hit struct {
	Element  document.Element
	Position Position
}

// FindTopmostHit returns the most recently added element under p. Later
// elements are drawn on top, so the last match wins.
func FindTopmostHit(p document.Point, doc document.Document) (Hit, bool, error) {
	for i := len(doc) - 1; i >= 0; i-- {
		pos, err := HitTest(p, doc[i])
		if err != nil {
			return Hit{}, false, err
		}
		if pos != None {
			return Hit{Element: doc[i], Position: pos}, true, nil
		}
	}
	return Hit{}, false, nil
}
