package editor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
)

type recorder struct {
	changed []string
	removed []string
}

func (r *recorder) ElementChanged(el *document.Element) { r.changed = append(r.changed, el.ID) }
func (r *recorder) ElementRemoved(id string)            { r.removed = append(r.removed, id) }

func newEditor(t *testing.T) (*Editor, *recorder) {
	t.Helper()
	b := document.NewBoard("board_1", "test", "")
	_ = b.Add(&document.Element{ID: "a", Kind: document.KindRect, Transform: engine.Transform{X: 100, Y: 100, Width: 200, Height: 100}})
	_ = b.Add(&document.Element{ID: "t", Kind: document.KindText, Transform: engine.Transform{X: 500, Y: 500, Width: 200, Height: 100}, Text: "hi"})
	rec := &recorder{}
	return New(b, rec), rec
}

func TestEditor_DragUpdatesBoard(t *testing.T) {
	ed, rec := newEditor(t)
	ed.Select([]string{"a"})

	if _, err := ed.Dispatch("a", engine.Event{Kind: engine.EventPointerDown, Position: engine.V(200, 150), Handle: engine.HandleCornerBR}); err != nil {
		t.Fatal(err)
	}
	out, err := ed.Dispatch("a", engine.Event{Kind: engine.EventPointerMove, Position: engine.V(250, 170)})
	if err != nil || !out.Changed {
		t.Fatalf("move = %+v, %v", out, err)
	}

	el, _ := ed.Board().Get("a")
	if el.Transform.Width != 250 || el.Transform.Height != 120 {
		t.Errorf("board transform = %+v", el.Transform)
	}
	if len(rec.changed) != 1 || rec.changed[0] != "a" {
		t.Errorf("changed = %v", rec.changed)
	}
}

func TestEditor_UnselectedIgnored(t *testing.T) {
	ed, _ := newEditor(t)
	_, err := ed.Dispatch("a", engine.Event{Kind: engine.EventPointerDown, Position: engine.V(0, 0), Handle: engine.HandleMove})
	if !errors.Is(err, engine.ErrNotSelected) {
		t.Errorf("err = %v, want ErrNotSelected", err)
	}
	if _, err := ed.Dispatch("nope", engine.Event{Kind: engine.EventPointerUp}); !errors.Is(err, document.ErrElementNotFound) {
		t.Errorf("unknown element err = %v", err)
	}
}

func TestEditor_DeleteKeyRemoves(t *testing.T) {
	ed, rec := newEditor(t)
	ed.Select([]string{"a"})

	out, err := ed.Dispatch("a", engine.Event{Kind: engine.EventKeyDown, Key: "Delete"})
	if err != nil || out.Nudge != engine.NudgeRemove {
		t.Fatalf("delete = %+v, %v", out, err)
	}
	if _, ok := ed.Board().Get("a"); ok {
		t.Error("element still on board")
	}
	if len(rec.removed) != 1 || len(ed.Selection()) != 0 {
		t.Errorf("removed = %v, selection = %v", rec.removed, ed.Selection())
	}
}

func TestEditor_PlaceStartsSizing(t *testing.T) {
	ed, _ := newEditor(t)

	el, err := ed.Place(document.KindRect, engine.V(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := ed.Controller(el.ID)
	if !c.Dragging() || c.ActiveHandle() != engine.HandleCornerBR {
		t.Fatalf("placement not started: dragging %v handle %v", c.Dragging(), c.ActiveHandle())
	}
	ed.Dispatch(el.ID, engine.Event{Kind: engine.EventPointerMove, Position: engine.V(11, 11)})
	ed.Dispatch(el.ID, engine.Event{Kind: engine.EventPointerMove, Position: engine.V(50, 30)})
	if el.Transform.Width != 40 || el.Transform.Height != 20 {
		t.Errorf("placed transform = %+v", el.Transform)
	}

	text, err := ed.Place(document.KindText, engine.V(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := ed.Controller(text.ID); c.Dragging() {
		t.Error("text placement should not start a drag")
	}

	if _, err := ed.Place("star", engine.V(0, 0)); !errors.Is(err, document.ErrUnknownKind) {
		t.Errorf("unknown kind = %v", err)
	}
}

func TestEditor_Paste(t *testing.T) {
	ed, _ := newEditor(t)
	els, err := ed.Paste([]string{"a", "t"}, 1)
	if err != nil || len(els) != 2 {
		t.Fatalf("Paste = %v, %v", els, err)
	}
	if els[0].Transform.X != 120 || els[0].Transform.Y != 120 {
		t.Errorf("pasted at %+v, want offset 20", els[0].Transform)
	}
	if els[1].Text != "hi" {
		t.Errorf("pasted text = %q", els[1].Text)
	}
	if _, err := ed.Paste([]string{"gone"}, 0); !errors.Is(err, document.ErrElementNotFound) {
		t.Errorf("paste unknown = %v", err)
	}
}

func TestEditor_EditingEmptyTextRemoves(t *testing.T) {
	ed, rec := newEditor(t)
	if err := ed.SetEditing("t", true); err != nil {
		t.Fatal(err)
	}
	if err := ed.SetText("t", "   "); err != nil {
		t.Fatal(err)
	}
	if err := ed.SetEditing("t", false); err != nil {
		t.Fatal(err)
	}
	if _, ok := ed.Board().Get("t"); ok {
		t.Error("empty text element kept")
	}
	if len(rec.removed) != 1 || rec.removed[0] != "t" {
		t.Errorf("removed = %v", rec.removed)
	}
}

func TestEditor_HitTest(t *testing.T) {
	ed, _ := newEditor(t)

	if id, role := ed.HitTest(engine.V(100, 100)); id != "a" || role != engine.HandleMove {
		t.Errorf("body hit = %q %v", id, role)
	}
	// Handle bands exist only once the element is selected.
	if id, _ := ed.HitTest(engine.V(204, 154)); id != "" {
		t.Errorf("unselected handle hit = %q", id)
	}
	ed.Select([]string{"a"})
	if id, role := ed.HitTest(engine.V(204, 154)); id != "a" || role != engine.HandleCornerBR {
		t.Errorf("selected handle hit = %q %v", id, role)
	}
}

func TestEditor_SelectOrdersAndBounds(t *testing.T) {
	ed, _ := newEditor(t)
	ed.Select([]string{"a", "missing"})

	if got := ed.Selection(); len(got) != 1 || got[0] != "a" {
		t.Errorf("selection = %v", got)
	}
	if order := ed.Board().Order; order[len(order)-1] != "a" {
		t.Errorf("order = %v, want a last", order)
	}
	want := engine.Rect{X: 0, Y: 50, Width: 200, Height: 100}
	if got := ed.SelectionBounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}

	var ids []string
	if err := json.Unmarshal([]byte(ed.GetSelection()), &ids); err != nil || len(ids) != 1 {
		t.Errorf("GetSelection = %s", ed.GetSelection())
	}
}

func TestEditor_LoadBoard(t *testing.T) {
	ed, _ := newEditor(t)
	data := ed.GetBoard()

	other := New(document.NewBoard("x", "x", ""), nil)
	if err := other.LoadBoard(data); err != nil {
		t.Fatal(err)
	}
	if len(other.Board().Ordered()) != 2 {
		t.Errorf("loaded %d elements, want 2", len(other.Board().Ordered()))
	}
	if err := other.LoadBoard("{"); err == nil {
		t.Error("bad JSON accepted")
	}
}

func TestEditor_SetTransformDuringDrag(t *testing.T) {
	ed, _ := newEditor(t)
	ed.Select([]string{"a"})
	ed.Dispatch("a", engine.Event{Kind: engine.EventPointerDown, Position: engine.V(100, 100), Handle: engine.HandleMove})
	if err := ed.SetTransform("a", engine.Transform{}); !errors.Is(err, engine.ErrSessionActive) {
		t.Errorf("SetTransform during drag = %v", err)
	}
	ed.CancelAll()
	if err := ed.SetTransform("a", engine.Transform{Width: 1, Height: 1}); err != nil {
		t.Errorf("SetTransform after cancel = %v", err)
	}
}
