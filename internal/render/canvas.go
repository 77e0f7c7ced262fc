// Package render paints engine frames onto a raster image and measures text
// with the same font face, so that text bounds match what is drawn.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
)

// PencilWidth is the width of a rasterized freehand stroke.
const PencilWidth = 8.0

var (
	ErrBadPath      = errors.New("malformed path command")
	ErrUnknownColor = errors.New("unknown colour")
)

// Canvas is a raster surface. It implements engine.Surface and
// document.Measurer.
type Canvas struct {
	dc   *gg.Context
	face font.Face
}

// NewCanvas creates a white canvas of the given pixel size with the text face
// loaded.
func NewCanvas(width, height int) (*Canvas, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    document.LineHeight,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.Clear()
	return &Canvas{dc: dc, face: face}, nil
}

// MeasureString returns the rendered size of s in document units.
func (c *Canvas) MeasureString(s string) (float64, float64) {
	return c.dc.MeasureString(s)
}

// Paint draws f, logging instead of failing so it can serve as an
// engine.Surface.
func (c *Canvas) Paint(f engine.Frame) {
	if err := c.Draw(f); err != nil {
		slog.Error("paint frame", "error", err)
	}
}

// Draw clears the canvas and draws every command of f under its view
// transform.
func (c *Canvas) Draw(f engine.Frame) error {
	dc := c.dc
	dc.Identity()
	dc.SetColor(color.White)
	dc.Clear()

	dc.Push()
	defer dc.Pop()
	if len(f.Transform) == 6 {
		// View transforms never skew, so translate and scale are enough.
		dc.Translate(f.Transform[4], f.Transform[5])
		dc.Scale(f.Transform[0], f.Transform[3])
	}

	for _, cmd := range f.Commands {
		if err := c.drawCommand(cmd); err != nil {
			return fmt.Errorf("draw element %d: %w", cmd.ElementID, err)
		}
	}
	return nil
}

func (c *Canvas) drawCommand(cmd engine.DrawCommand) error {
	dc := c.dc
	switch cmd.Op {
	case engine.OpPath:
		if err := c.tracePath(cmd.Path); err != nil {
			return err
		}
		if cmd.Fill != "" {
			if err := c.setColor(cmd.Fill); err != nil {
				return err
			}
			dc.FillPreserve()
		}
		if err := c.setColor(cmd.Stroke); err != nil {
			return err
		}
		dc.SetLineWidth(1)
		dc.Stroke()

	case engine.OpFreehand:
		if len(cmd.Points) == 0 {
			return nil
		}
		if err := c.setColor(cmd.Fill); err != nil {
			return err
		}
		dc.SetLineWidth(PencilWidth)
		dc.SetLineCapRound()
		dc.SetLineJoinRound()
		if len(cmd.Points) == 1 {
			p := cmd.Points[0]
			dc.DrawCircle(p.X, p.Y, PencilWidth/2)
			dc.Fill()
			return nil
		}
		dc.MoveTo(cmd.Points[0].X, cmd.Points[0].Y)
		for _, p := range cmd.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()

	case engine.OpText:
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(cmd.Text, cmd.X, cmd.Y, 0, 1)

	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
	return nil
}

func (c *Canvas) tracePath(path []document.PathCommand) error {
	dc := c.dc
	dc.NewSubPath()
	for i, pc := range path {
		if len(pc) == 0 {
			return fmt.Errorf("%w: empty command at %d", ErrBadPath, i)
		}
		op, _ := pc[0].(string)
		args, err := floats(pc[1:])
		if err != nil {
			return fmt.Errorf("%w: command %d: %v", ErrBadPath, i, err)
		}

		switch {
		case op == "M" && len(args) == 2:
			dc.MoveTo(args[0], args[1])
		case op == "L" && len(args) == 2:
			dc.LineTo(args[0], args[1])
		case op == "C" && len(args) == 6:
			dc.CubicTo(args[0], args[1], args[2], args[3], args[4], args[5])
		case op == "Z" && len(args) == 0:
			dc.ClosePath()
		default:
			return fmt.Errorf("%w: %v", ErrBadPath, pc)
		}
	}
	return nil
}

// floats converts path arguments, which are float64 when built locally and
// may be any JSON number type after a round trip.
func floats(vs []interface{}) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case float32:
			out[i] = float64(n)
		case int:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("argument %d is %T", i, v)
		}
	}
	return out, nil
}

// setColor accepts a named colour (the palette) or a #rgb/#rrggbb hex value.
func (c *Canvas) setColor(name string) error {
	if strings.HasPrefix(name, "#") {
		c.dc.SetHexColor(name)
		return nil
	}
	col, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	c.dc.SetColor(col)
	return nil
}

// Image returns the canvas pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the canvas as a PNG image.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Close releases the font face.
func (c *Canvas) Close() error {
	return c.face.Close()
}
