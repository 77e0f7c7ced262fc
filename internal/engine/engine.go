package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/geometry"
	"github.com/sketchpad/sketchpad/backend-go/internal/history"
)

// Action is the interaction mode of the engine.
type Action string

const (
	ActionIdle     Action = "idle"
	ActionDrawing  Action = "drawing"
	ActionMoving   Action = "moving"
	ActionResizing Action = "resizing"
	ActionWriting  Action = "writing"
	ActionPanning  Action = "panning"
)

// Tool is what a primary-button press does.
type Tool string

const (
	ToolSelection Tool = "selection"
	ToolLine      Tool = Tool(document.KindLine)
	ToolRectangle Tool = Tool(document.KindRectangle)
	ToolEllipse   Tool = Tool(document.KindEllipse)
	ToolPencil    Tool = Tool(document.KindPencil)
	ToolText      Tool = Tool(document.KindText)
)

// Tools is the full tool set, in toolbar order.
var Tools = []Tool{ToolSelection, ToolLine, ToolRectangle, ToolEllipse, ToolPencil, ToolText}

var ErrUnknownColor = errors.New("colour not in palette")

// Selection is the scratch state of an interaction in progress. It refers
// to its element by position and is discarded when the interaction ends.
type Selection struct {
	Index int
	// Element is the element as it was when the interaction began.
	Element  document.Element
	Position geometry.Position
	// Offset is pointer minus anchor, captured by the selection tool.
	Offset document.Point
	// Offsets holds pointer minus each point, for moving a pencil stroke.
	Offsets []document.Point
	// Captured is set when the selection tool grabbed an existing element.
	Captured bool
}

// Surface is a render driver. Paint is called after every state change and
// must not call back into the engine.
type Surface interface {
	Paint(frame Frame)
}

// Engine is the scene-editing engine. It owns the undo history, the active
// tool and style, the view transform and the interaction state. It is not
// safe for concurrent use; feed it one event at a time.
type Engine struct {
	history *history.Store[document.Document]

	action    Action
	selection *Selection
	panStart  document.Point

	tool  Tool
	style document.Style
	view  View
	keys  map[string]bool

	// Cursor hint from the last hover with the selection tool.
	cursor geometry.Cursor

	measurer document.Measurer
	surface  Surface
}

// NewEngine creates an engine with an empty document, the rectangle tool
// and a 1280x720 viewport.
func NewEngine() *Engine {
	return &Engine{
		history: history.New(document.Document{}, document.Document.Clone),
		action:  ActionIdle,
		tool:    ToolRectangle,
		view:    DefaultView(1280, 720),
		keys:    make(map[string]bool),
		cursor:  geometry.CursorDefault,
	}
}

// --- Commands ---

// LoadDocument replaces the history with a single snapshot of doc.
func (e *Engine) LoadDocument(doc document.Document) {
	e.history = history.New(doc, document.Document.Clone)
	e.selection = nil
	e.setAction(ActionIdle)
	e.changed()
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument() {
	e.LoadDocument(document.NewSampleDocument())
}

// SetTool selects the active tool. Tools are not validated here: an unknown
// tool is reported by the next drawing press as document.ErrInvalidKind.
func (e *Engine) SetTool(t Tool) {
	e.tool = t
	e.changed()
}

// SetStyle sets the style used for shapes created from now on. Fill may be
// empty (no fill); both colours must otherwise come from document.Palette.
func (e *Engine) SetStyle(s document.Style) error {
	if s.Fill != "" && !document.InPalette(s.Fill) {
		return fmt.Errorf("fill %q: %w", s.Fill, ErrUnknownColor)
	}
	if s.Stroke != "" && s.Stroke != document.DefaultStroke && !document.InPalette(s.Stroke) {
		return fmt.Errorf("stroke %q: %w", s.Stroke, ErrUnknownColor)
	}
	e.style = s
	e.changed()
	return nil
}

// SetViewport sets the size of the drawing surface in screen pixels.
func (e *Engine) SetViewport(width, height float64) {
	e.view.Width, e.view.Height = width, height
	e.changed()
}

// SetMeasurer sets the surface used to measure text. Without one, text keeps
// its previous width.
func (e *Engine) SetMeasurer(m document.Measurer) {
	e.measurer = m
}

// SetSurface attaches a render driver.
func (e *Engine) SetSurface(s Surface) {
	e.surface = s
	e.changed()
}

// Zoom changes the scale by delta, clamped to [MinScale, MaxScale].
func (e *Engine) Zoom(delta float64) {
	e.view = e.view.zoomed(delta)
	e.changed()
}

// ResetZoom returns the scale to 1.
func (e *Engine) ResetZoom() {
	e.view.Scale = 1
	e.changed()
}

// Undo steps back one snapshot. It is ignored while an interaction is in
// progress, since the interaction refers to elements by position.
func (e *Engine) Undo() bool {
	if e.action != ActionIdle || !e.history.Undo() {
		return false
	}
	e.changed()
	return true
}

// Redo steps forward one snapshot. Ignored while an interaction is in progress.
func (e *Engine) Redo() bool {
	if e.action != ActionIdle || !e.history.Redo() {
		return false
	}
	e.changed()
	return true
}

// --- Queries ---

// Document returns a copy of the current snapshot.
func (e *Engine) Document() document.Document {
	return e.history.Current()
}

func (e *Engine) Action() Action { return e.action }

func (e *Engine) Tool() Tool { return e.tool }

func (e *Engine) Style() document.Style { return e.style }

func (e *Engine) View() View { return e.view }

func (e *Engine) Cursor() geometry.Cursor { return e.cursor }

func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// HistoryPosition returns the current snapshot index and the snapshot count.
func (e *Engine) HistoryPosition() (int, int) {
	return e.history.Index(), e.history.Len()
}

// Selection returns a copy of the active selection, if any.
func (e *Engine) Selection() (Selection, bool) {
	if e.selection == nil {
		return Selection{}, false
	}
	return *e.selection, true
}

// ViewMatrix returns the document-to-screen transform.
func (e *Engine) ViewMatrix() Matrix2D {
	return e.view.Matrix()
}

// Render compiles the current document into draw commands. While a text
// element is being edited it is left out, since the overlay shows it.
func (e *Engine) Render() ([]DrawCommand, error) {
	hidden := -1
	if e.action == ActionWriting && e.selection != nil {
		hidden = e.selection.Index
	}
	return CompileDrawCommands(e.history.Current(), hidden)
}

// Overlay positions the text editor over the element being written.
type Overlay struct {
	ElementID int     `json:"elementId"`
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	FontSize  float64 `json:"fontSize"`
	Content   string  `json:"content"`
}

// TextEditor reports where the text overlay should be shown, if writing.
func (e *Engine) TextEditor() (Overlay, bool) {
	if e.action != ActionWriting || e.selection == nil {
		return Overlay{}, false
	}
	t, ok := e.selection.Element.(document.Text)
	if !ok {
		return Overlay{}, false
	}

	s := e.view.Scale
	ox, oy := e.view.ScaleOffset()
	return Overlay{
		ElementID: t.ID(),
		Left:      t.X1*s + e.view.PanX*s - ox,
		Top:       (t.Y1-2)*s + e.view.PanY*s - oy,
		FontSize:  document.LineHeight * s,
		Content:   t.Content,
	}, true
}

// Frame is everything a render driver needs to paint the current state.
type Frame struct {
	Commands     []DrawCommand   `json:"commands"`
	Transform    []float64       `json:"transform"`
	View         View            `json:"view"`
	Action       Action          `json:"action"`
	Tool         Tool            `json:"tool"`
	Cursor       geometry.Cursor `json:"cursor"`
	HistoryIndex int             `json:"historyIndex"`
	HistoryLen   int             `json:"historyLen"`
	Editor       *Overlay        `json:"editor,omitempty"`
}

// Frame snapshots the render-relevant state.
func (e *Engine) Frame() (Frame, error) {
	commands, err := e.Render()
	if err != nil {
		return Frame{}, err
	}

	f := Frame{
		Commands:     commands,
		Transform:    e.view.Matrix().ToSlice(),
		View:         e.view,
		Action:       e.action,
		Tool:         e.tool,
		Cursor:       e.cursor,
		HistoryIndex: e.history.Index(),
		HistoryLen:   e.history.Len(),
	}
	if ov, ok := e.TextEditor(); ok {
		f.Editor = &ov
	}
	return f, nil
}

// --- internal ---

func (e *Engine) setAction(a Action) {
	if e.action != a {
		slog.Debug("interaction", "from", e.action, "to", a)
		e.action = a
	}
}

// changed notifies the attached surface, if any.
func (e *Engine) changed() {
	if e.surface == nil {
		return
	}
	f, err := e.Frame()
	if err != nil {
		slog.Error("compile frame", "error", err)
		return
	}
	e.surface.Paint(f)
}
