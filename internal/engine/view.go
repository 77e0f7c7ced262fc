package engine

import "github.com/sketchpad/sketchpad/backend-go/internal/document"

const (
	MinScale = 0.1
	MaxScale = 20.0

	// ZoomStep is the scale change of one zoom button press.
	ZoomStep = 0.1
	// WheelZoomFactor converts wheel delta units into a scale change.
	WheelZoomFactor = 0.01
)

// View maps document coordinates to screen coordinates: a pan offset in
// document units and a scale anchored at the viewport centre. It never
// affects the document itself.
type View struct {
	PanX   float64 `json:"panX"`
	PanY   float64 `json:"panY"`
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultView returns an unpanned, unscaled view of the given viewport.
func DefaultView(width, height float64) View {
	return View{Scale: 1, Width: width, Height: height}
}

// ScaleOffset is how far the scaled viewport grows past each edge, which is
// subtracted so zoom appears centred.
func (v View) ScaleOffset() (float64, float64) {
	return (v.Width*v.Scale - v.Width) / 2, (v.Height*v.Scale - v.Height) / 2
}

// Matrix returns the document-to-screen transform: translate, then scale.
func (v View) Matrix() Matrix2D {
	ox, oy := v.ScaleOffset()
	return Translate(v.PanX*v.Scale-ox, v.PanY*v.Scale-oy).Multiply(Scale(v.Scale, v.Scale))
}

// ToDocument converts a screen (client) point into document coordinates.
func (v View) ToDocument(x, y float64) document.Point {
	dx, dy := v.Matrix().Invert().TransformPoint(x, y)
	return document.Point{X: dx, Y: dy}
}

// ToScreen converts a document point into screen coordinates.
func (v View) ToScreen(p document.Point) (float64, float64) {
	return v.Matrix().TransformPoint(p.X, p.Y)
}

// zoomed returns v with delta added to the scale, clamped to [MinScale, MaxScale].
func (v View) zoomed(delta float64) View {
	v.Scale = min(max(v.Scale+delta, MinScale), MaxScale)
	return v
}
