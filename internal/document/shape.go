package document

import (
	"math"
	"slices"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// Drawable is the render-ready description of a shape: an outline in
// document coordinates plus its paint. It is derived from the shape's
// corners and style and is only ever built by Create.
type Drawable struct {
	Path   []PathCommand `json:"path"`
	Fill   string        `json:"fill,omitempty"`
	Stroke string        `json:"stroke"`
}

func (d Drawable) clone() Drawable {
	path := make([]PathCommand, len(d.Path))
	for i, cmd := range d.Path {
		path[i] = slices.Clone(cmd)
	}
	d.Path = path
	return d
}

// buildDrawable generates the outline for a shape kind. The caller has
// already validated kind.
func buildDrawable(kind Kind, x1, y1, x2, y2 float64, style Style) Drawable {
	switch kind {
	case KindLine:
		// Lines are never filled.
		return Drawable{Path: linePath(x1, y1, x2, y2), Stroke: style.Stroke}
	case KindRectangle:
		return Drawable{Path: rectPath(x1, y1, x2, y2), Fill: style.Fill, Stroke: style.Stroke}
	default:
		return Drawable{Path: ellipsePath(x1, y1, x2, y2), Fill: style.Fill, Stroke: style.Stroke}
	}
}

func linePath(x1, y1, x2, y2 float64) []PathCommand {
	return []PathCommand{
		{"M", x1, y1},
		{"L", x2, y2},
	}
}

func rectPath(x1, y1, x2, y2 float64) []PathCommand {
	return []PathCommand{
		{"M", x1, y1},
		{"L", x2, y1},
		{"L", x2, y2},
		{"L", x1, y2},
		{"Z"},
	}
}

// ellipsePath approximates the ellipse inscribed in the corners with four
// cubic bezier curves.
func ellipsePath(x1, y1, x2, y2 float64) []PathCommand {
	cx, cy := (x1+x2)/2, (y1+y2)/2
	rx, ry := math.Abs(x2-x1)/2, math.Abs(y2-y1)/2

	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}
