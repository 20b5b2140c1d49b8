//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/editor"
	"github.com/inamate/canvasedit/internal/engine"
)

var (
	ed       *editor.Editor
	listener js.Value
)

func main() {
	ed = editor.New(document.NewBoard("board_local", "Untitled", ""), editor.ListenerFuncs{
		Changed: func(el *document.Element) { notify("element.changed", el) },
		Removed: func(id string) { notify("element.removed", map[string]string{"id": id}) },
	})

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("setListener", js.FuncOf(setListener))
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	api.Set("createElement", js.FuncOf(createElement))
	api.Set("pasteElements", js.FuncOf(pasteElements))
	api.Set("removeElement", js.FuncOf(removeElement))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("setSelected", js.FuncOf(setSelected))
	api.Set("setEditing", js.FuncOf(setEditing))
	api.Set("setText", js.FuncOf(setText))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("cancel", js.FuncOf(cancel))
	api.Set("keyDown", js.FuncOf(keyDown))

	// --- Queries (frontend ← engine) ---
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getTransform", js.FuncOf(getTransform))
	api.Set("getHandles", js.FuncOf(getHandles))
	api.Set("getCursors", js.FuncOf(getCursors))
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))

	js.Global().Set("canvaseditEngine", api)
	js.Global().Set("canvaseditWasmReady", js.ValueOf(true))

	select {}
}

func notify(kind string, payload any) {
	if listener.Type() != js.TypeFunction {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	listener.Invoke(kind, string(data))
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func jsonResult(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return string(data)
}

func argString(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

func argFloat(args []js.Value, i int) float64 {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return 0
	}
	return args[i].Float()
}

func argBool(args []js.Value, i int) bool {
	return i < len(args) && args[i].Type() == js.TypeBoolean && args[i].Bool()
}

func argStrings(args []js.Value, i int) []string {
	if i >= len(args) || args[i].Type() != js.TypeObject {
		return nil
	}
	arr := args[i]
	out := make([]string, arr.Length())
	for j := range out {
		out[j] = arr.Index(j).String()
	}
	return out
}

// --- Command handlers ---

func setListener(this js.Value, args []js.Value) any {
	if len(args) > 0 && args[0].Type() == js.TypeFunction {
		listener = args[0]
	} else {
		listener = js.Undefined()
	}
	return nil
}

func loadBoard(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing board JSON"})
	}
	if err := ed.LoadBoard(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleBoard(this js.Value, args []js.Value) any {
	boardID := argString(args, 0)
	if boardID == "" {
		boardID = "board_sample"
	}
	ed.Reset(document.NewSampleBoard(boardID))
	return okResult()
}

// createElement(kind, x, y) places a new element at the pointer.
func createElement(this js.Value, args []js.Value) any {
	kind, err := document.ParseKind(argString(args, 0))
	if err != nil {
		return errorResult(err)
	}
	el, err := ed.Place(kind, engine.V(argFloat(args, 1), argFloat(args, 2)))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"element": el, "placing": kind.StartsPlacement()})
}

// pasteElements(ids, pasteCount)
func pasteElements(this js.Value, args []js.Value) any {
	pasteCount := 0
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		pasteCount = args[1].Int()
	}
	els, err := ed.Paste(argStrings(args, 0), pasteCount)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(els)
}

func removeElement(this js.Value, args []js.Value) any {
	if err := ed.Remove(argString(args, 0)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setSelection(this js.Value, args []js.Value) any {
	ed.Select(argStrings(args, 0))
	return nil
}

func setSelected(this js.Value, args []js.Value) any {
	if err := ed.SetSelected(argString(args, 0), argBool(args, 1)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setEditing(this js.Value, args []js.Value) any {
	if err := ed.SetEditing(argString(args, 0), argBool(args, 1)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setText(this js.Value, args []js.Value) any {
	if err := ed.SetText(argString(args, 0), argString(args, 1)); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func dispatch(id string, ev engine.Event) any {
	out, err := ed.Dispatch(id, ev)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(out)
}

// pointerDown(id, x, y, handle)
func pointerDown(this js.Value, args []js.Value) any {
	return dispatch(argString(args, 0), engine.Event{
		Kind:     engine.EventPointerDown,
		Position: engine.V(argFloat(args, 1), argFloat(args, 2)),
		Handle:   engine.ParseHandleRole(argString(args, 3)),
	})
}

// pointerMove(id, x, y, aspectLock, fromCenter, angleSnap)
func pointerMove(this js.Value, args []js.Value) any {
	return dispatch(argString(args, 0), engine.Event{
		Kind:     engine.EventPointerMove,
		Position: engine.V(argFloat(args, 1), argFloat(args, 2)),
		Modifiers: engine.Modifiers{
			AspectLock: argBool(args, 3),
			FromCenter: argBool(args, 4),
			AngleSnap:  argBool(args, 5),
		},
	})
}

func pointerUp(this js.Value, args []js.Value) any {
	return dispatch(argString(args, 0), engine.Event{Kind: engine.EventPointerUp})
}

// cancel(id) ends one drag; with no id it ends all of them.
func cancel(this js.Value, args []js.Value) any {
	id := argString(args, 0)
	if id == "" {
		ed.CancelAll()
		return okResult()
	}
	return dispatch(id, engine.Event{Kind: engine.EventCancel})
}

// keyDown(id, key, fine, magnitude)
func keyDown(this js.Value, args []js.Value) any {
	return dispatch(argString(args, 0), engine.Event{
		Kind:      engine.EventKeyDown,
		Key:       argString(args, 1),
		Fine:      argBool(args, 2),
		Magnitude: argBool(args, 3),
	})
}

// --- Query handlers ---

func hitTest(this js.Value, args []js.Value) any {
	id, role := ed.HitTest(engine.V(argFloat(args, 0), argFloat(args, 1)))
	if id == "" {
		return nil
	}
	return js.ValueOf(map[string]any{"id": id, "handle": role.String()})
}

func getTransform(this js.Value, args []js.Value) any {
	c, ok := ed.Controller(argString(args, 0))
	if !ok {
		return nil
	}
	return jsonResult(c.Transform())
}

func getHandles(this js.Value, args []js.Value) any {
	c, ok := ed.Controller(argString(args, 0))
	if !ok {
		return nil
	}
	return jsonResult(c.Handles().Regions())
}

func getCursors(this js.Value, args []js.Value) any {
	c, ok := ed.Controller(argString(args, 0))
	if !ok {
		return nil
	}
	return jsonResult(c.Cursors())
}

func getBoard(this js.Value, args []js.Value) any {
	return ed.GetBoard()
}

func getSelection(this js.Value, args []js.Value) any {
	return ed.GetSelection()
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return ed.GetSelectionBounds()
}
