//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
)

var eng *engine.Engine

// jsMeasurer measures text on an offscreen page canvas with the same font
// the page draws with.
type jsMeasurer struct {
	ctx js.Value
}

func newJSMeasurer() *jsMeasurer {
	canvas := js.Global().Get("document").Call("createElement", "canvas")
	ctx := canvas.Call("getContext", "2d")
	ctx.Set("font", engine.TextFont)
	return &jsMeasurer{ctx: ctx}
}

func (m *jsMeasurer) MeasureString(s string) (float64, float64) {
	return m.ctx.Call("measureText", s).Get("width").Float(), document.LineHeight
}

// jsSurface forwards every frame to a page callback as JSON.
type jsSurface struct {
	callback js.Value
}

func (s *jsSurface) Paint(f engine.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	s.callback.Invoke(string(data))
}

func main() {
	eng = engine.NewEngine()
	eng.SetMeasurer(newJSMeasurer())

	// Create the engine API object
	sketchpad := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	sketchpad.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	sketchpad.Set("pointerDown", js.FuncOf(pointerHandler(eng.PointerDown)))
	sketchpad.Set("pointerMove", js.FuncOf(pointerHandler(eng.PointerMove)))
	sketchpad.Set("pointerUp", js.FuncOf(pointerHandler(eng.PointerUp)))
	sketchpad.Set("blur", js.FuncOf(blur))
	sketchpad.Set("keyDown", js.FuncOf(keyDown))
	sketchpad.Set("keyUp", js.FuncOf(keyUp))
	sketchpad.Set("wheel", js.FuncOf(wheel))
	sketchpad.Set("setTool", js.FuncOf(setTool))
	sketchpad.Set("setStyle", js.FuncOf(setStyle))
	sketchpad.Set("setViewport", js.FuncOf(setViewport))
	sketchpad.Set("zoom", js.FuncOf(zoom))
	sketchpad.Set("resetZoom", js.FuncOf(resetZoom))
	sketchpad.Set("undo", js.FuncOf(undo))
	sketchpad.Set("redo", js.FuncOf(redo))
	sketchpad.Set("onFrame", js.FuncOf(onFrame))

	// --- Queries (frontend ← engine) ---
	sketchpad.Set("render", js.FuncOf(render))
	sketchpad.Set("getFrame", js.FuncOf(getFrame))
	sketchpad.Set("getDocument", js.FuncOf(getDocument))
	sketchpad.Set("getTextEditor", js.FuncOf(getTextEditor))

	// Register on global scope
	js.Global().Set("sketchpadEngine", sketchpad)

	// Signal that WASM is ready
	js.Global().Set("sketchpadWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func jsonValue(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleDocument()
	return ok()
}

func pointerHandler(fn func(engine.PointerEvent) error) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 {
			return js.ValueOf(map[string]interface{}{"error": "missing coordinates"})
		}
		ev := engine.PointerEvent{X: args[0].Float(), Y: args[1].Float()}
		if len(args) > 2 && args[2].Type() == js.TypeNumber {
			ev.Button = engine.Button(args[2].Int())
		}
		if err := fn(ev); err != nil {
			return fail(err)
		}
		return ok()
	}
}

func blur(this js.Value, args []js.Value) interface{} {
	content := ""
	if len(args) > 0 {
		content = args[0].String()
	}
	if err := eng.Blur(content); err != nil {
		return fail(err)
	}
	return ok()
}

func keyDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.KeyDown(args[0].String())
	return nil
}

func keyUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.KeyUp(args[0].String())
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.Wheel(engine.WheelEvent{DeltaX: args[0].Float(), DeltaY: args[1].Float()})
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetTool(engine.Tool(args[0].String()))
	return nil
}

func setStyle(this js.Value, args []js.Value) interface{} {
	var style document.Style
	if len(args) > 0 && args[0].Type() == js.TypeString {
		style.Fill = args[0].String()
	}
	if len(args) > 1 && args[1].Type() == js.TypeString {
		style.Stroke = args[1].String()
	}
	if err := eng.SetStyle(style); err != nil {
		return fail(err)
	}
	return ok()
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetViewport(args[0].Float(), args[1].Float())
	return nil
}

func zoom(this js.Value, args []js.Value) interface{} {
	delta := engine.ZoomStep
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		delta = args[0].Float()
	}
	eng.Zoom(delta)
	return nil
}

func resetZoom(this js.Value, args []js.Value) interface{} {
	eng.ResetZoom()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func onFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		eng.SetSurface(nil)
		return nil
	}
	eng.SetSurface(&jsSurface{callback: args[0]})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	commands, err := eng.Render()
	if err != nil {
		return fail(err)
	}
	return jsonValue(commands)
}

func getFrame(this js.Value, args []js.Value) interface{} {
	frame, err := eng.Frame()
	if err != nil {
		return fail(err)
	}
	return jsonValue(frame)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return jsonValue(eng.Document())
}

func getTextEditor(this js.Value, args []js.Value) interface{} {
	ov, editing := eng.TextEditor()
	if !editing {
		return js.Null()
	}
	return jsonValue(ov)
}
