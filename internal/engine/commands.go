package engine

import (
	"encoding/json"
	"fmt"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
)

// Draw command operations.
const (
	OpPath     = "path"     // pre-built shape outline
	OpFreehand = "freehand" // raw pencil points; the surface builds the stroke outline
	OpText     = "text"     // single line, top-left anchored
)

// TextFont is the font every text element is drawn and measured with.
const TextFont = "25px sans-serif"

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context
// after applying the frame's view transform.
type DrawCommand struct {
	Op        string                 `json:"op"`
	ElementID int                    `json:"elementId"`
	Path      []document.PathCommand `json:"path,omitempty"`
	Points    []document.Point       `json:"points,omitempty"`
	Fill      string                 `json:"fill,omitempty"`
	Stroke    string                 `json:"stroke,omitempty"`
	Text      string                 `json:"text,omitempty"`
	X         float64                `json:"x,omitempty"`
	Y         float64                `json:"y,omitempty"`
	Font      string                 `json:"font,omitempty"`
}

// CompileDrawCommands generates a draw command buffer from a document in
// painter's order (first element at the back). The element at index hidden
// is skipped; pass -1 to draw everything.
func CompileDrawCommands(doc document.Document, hidden int) ([]DrawCommand, error) {
	commands := make([]DrawCommand, 0, len(doc))
	for i, el := range doc {
		if i == hidden {
			continue
		}

		switch e := el.(type) {
		case document.Shape:
			d := e.Drawable()
			commands = append(commands, DrawCommand{
				Op:        OpPath,
				ElementID: e.ID(),
				Path:      d.Path,
				Fill:      d.Fill,
				Stroke:    d.Stroke,
			})

		case document.Pencil:
			commands = append(commands, DrawCommand{
				Op:        OpFreehand,
				ElementID: e.ID(),
				Points:    e.Points,
				Fill:      document.DefaultStroke,
			})

		case document.Text:
			commands = append(commands, DrawCommand{
				Op:        OpText,
				ElementID: e.ID(),
				Text:      e.Content,
				X:         e.X1,
				Y:         e.Y1,
				Font:      TextFont,
			})

		default:
			return nil, fmt.Errorf("compile element %d: %w: %T", i, document.ErrUnknownElement, el)
		}
	}
	return commands, nil
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
