package editor

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/typeid"
)

// Listener is told about element changes made through the editor.
type Listener interface {
	ElementChanged(el *document.Element)
	ElementRemoved(id string)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Changed func(*document.Element)
	Removed func(string)
}

func (l ListenerFuncs) ElementChanged(el *document.Element) {
	if l.Changed != nil {
		l.Changed(el)
	}
}

func (l ListenerFuncs) ElementRemoved(id string) {
	if l.Removed != nil {
		l.Removed(id)
	}
}

// Editor owns a board and one transform controller per element. It applies
// pointer and key input to the board and reports changes to its Listener.
// It is not safe for concurrent use.
type Editor struct {
	board       *document.Board
	controllers map[string]*engine.Controller
	opts        []engine.Option
	listener    Listener

	// Selection state (the editor owns this)
	selection []string

	// Removals requested from inside controller callbacks
	pendingRemoval []string
}

// New creates an editor for board.
func New(board *document.Board, listener Listener, opts ...engine.Option) *Editor {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &Editor{
		board:       board,
		controllers: map[string]*engine.Controller{},
		opts:        opts,
		listener:    listener,
	}
}

// Board returns the live board.
func (e *Editor) Board() *document.Board { return e.board }

// --- Commands ---

// LoadBoard replaces the board with one decoded from JSON. Controllers and
// selection are reset.
func (e *Editor) LoadBoard(jsonData string) error {
	var b document.Board
	if err := json.Unmarshal([]byte(jsonData), &b); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	if b.Elements == nil {
		b.Elements = map[string]*document.Element{}
	}
	e.Reset(&b)
	return nil
}

// Reset swaps in board and drops all controller state.
func (e *Editor) Reset(board *document.Board) {
	e.board = board
	e.controllers = map[string]*engine.Controller{}
	e.selection = nil
	e.pendingRemoval = nil
}

// Place creates an element of kind at the pointer. Kinds without a default
// size are selected and start sizing from their bottom-right corner; the
// caller feeds the following pointer moves through Dispatch.
func (e *Editor) Place(kind document.Kind, at engine.Vec2) (*document.Element, error) {
	if _, err := document.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	el := document.NewElement(typeid.NewElementID(), kind, document.UserPlace{Pointer: at})
	if err := e.board.Add(el); err != nil {
		return nil, err
	}
	if kind.StartsPlacement() {
		c := e.controller(el)
		c.SetSelected(true)
		if err := c.StartPlacement(); err != nil {
			return nil, fmt.Errorf("start placement: %w", err)
		}
	}
	return el, nil
}

// Paste copies ids as new elements, shifted according to pasteCount.
func (e *Editor) Paste(ids []string, pasteCount int) ([]*document.Element, error) {
	var out []*document.Element
	for _, id := range ids {
		src, ok := e.board.Get(id)
		if !ok {
			return out, fmt.Errorf("paste %s: %w", id, document.ErrElementNotFound)
		}
		el := document.NewElement(typeid.NewElementID(), src.Kind, document.Paste{
			Values:     src.Transform,
			Text:       src.Text,
			PasteCount: pasteCount,
		})
		if err := e.board.Add(el); err != nil {
			return out, err
		}
		out = append(out, el)
	}
	return out, nil
}

// Add inserts a stored element.
func (e *Editor) Add(el *document.Element) error {
	return e.board.Add(el)
}

// Remove deletes an element and its controller.
func (e *Editor) Remove(id string) error {
	if err := e.board.Remove(id); err != nil {
		return err
	}
	if c, ok := e.controllers[id]; ok {
		c.Cancel()
		delete(e.controllers, id)
	}
	e.selection = removeString(e.selection, id)
	e.listener.ElementRemoved(id)
	return nil
}

// Select makes ids the selection and paints them last.
func (e *Editor) Select(ids []string) {
	keep := make(map[string]bool, len(ids))
	var sel []string
	for _, id := range ids {
		if _, ok := e.board.Get(id); ok && !keep[id] {
			keep[id] = true
			sel = append(sel, id)
		}
	}
	for id, c := range e.controllers {
		c.SetSelected(keep[id])
	}
	for _, id := range sel {
		if el, ok := e.board.Get(id); ok {
			e.controller(el).SetSelected(true)
		}
	}
	e.selection = sel
	e.board.BringToFront(sel...)
}

// SetSelected flips one element's selection without touching the others.
func (e *Editor) SetSelected(id string, selected bool) error {
	el, ok := e.board.Get(id)
	if !ok {
		return document.ErrElementNotFound
	}
	e.controller(el).SetSelected(selected)
	e.selection = removeString(e.selection, id)
	if selected {
		e.selection = append(e.selection, id)
	}
	return nil
}

// SetEditing enters or leaves content editing. A text element left empty
// when editing ends is removed.
func (e *Editor) SetEditing(id string, editing bool) error {
	el, ok := e.board.Get(id)
	if !ok {
		return document.ErrElementNotFound
	}
	e.controller(el).SetEditing(editing)
	if !editing && el.IsEmpty() {
		return e.Remove(id)
	}
	return nil
}

// SetText replaces an element's text.
func (e *Editor) SetText(id, text string) error {
	el, ok := e.board.Get(id)
	if !ok {
		return document.ErrElementNotFound
	}
	el.Text = text
	e.board.Touch()
	e.listener.ElementChanged(el)
	return nil
}

// SetTransform overwrites an element's transform outside of a drag.
func (e *Editor) SetTransform(id string, t engine.Transform) error {
	el, ok := e.board.Get(id)
	if !ok {
		return document.ErrElementNotFound
	}
	if err := e.controller(el).SetTransform(t); err != nil {
		return err
	}
	el.Transform = t
	e.board.Touch()
	e.listener.ElementChanged(el)
	return nil
}

// Dispatch feeds ev to the controller of element id.
func (e *Editor) Dispatch(id string, ev engine.Event) (engine.Outcome, error) {
	el, ok := e.board.Get(id)
	if !ok {
		return engine.Outcome{}, document.ErrElementNotFound
	}
	out, err := e.controller(el).Handle(ev)
	e.flushRemovals()
	return out, err
}

// CancelAll ends every active drag.
func (e *Editor) CancelAll() {
	for _, c := range e.controllers {
		c.Cancel()
	}
}

// --- Queries ---

// Controller returns the controller of element id.
func (e *Editor) Controller(id string) (*engine.Controller, bool) {
	el, ok := e.board.Get(id)
	if !ok {
		return nil, false
	}
	return e.controller(el), true
}

// HitTest returns the element and handle under p. Handles of selected
// elements stick out of their body and are tested first.
func (e *Editor) HitTest(p engine.Vec2) (string, engine.HandleRole) {
	for i := len(e.board.Order) - 1; i >= 0; i-- {
		id := e.board.Order[i]
		if c, ok := e.controllers[id]; ok && c.Selected() {
			if role := c.HitTest(p); role != engine.HandleNone {
				return id, role
			}
		}
	}
	if id := e.board.HitTest(p); id != "" {
		return id, engine.HandleMove
	}
	return "", engine.HandleNone
}

// Selection returns the selected element ids.
func (e *Editor) Selection() []string {
	return append([]string(nil), e.selection...)
}

// SelectionBounds returns the bounding rect of the selection.
func (e *Editor) SelectionBounds() engine.Rect {
	return e.board.Bounds(e.selection...)
}

// GetBoard returns the board as JSON.
func (e *Editor) GetBoard() string {
	data, _ := json.Marshal(e.board)
	return string(data)
}

// GetSelection returns the selection as JSON.
func (e *Editor) GetSelection() string {
	data, _ := json.Marshal(e.Selection())
	return string(data)
}

// GetSelectionBounds returns the selection bounds as JSON.
func (e *Editor) GetSelectionBounds() string {
	data, _ := json.Marshal(e.SelectionBounds())
	return string(data)
}

func (e *Editor) controller(el *document.Element) *engine.Controller {
	if c, ok := e.controllers[el.ID]; ok {
		return c
	}
	id := el.ID
	host := engine.HostFuncs{
		Update: func(t engine.Transform) {
			cur, ok := e.board.Get(id)
			if !ok {
				return
			}
			cur.Transform = t
			e.board.Touch()
			e.listener.ElementChanged(cur)
		},
		Remove: func() {
			e.pendingRemoval = append(e.pendingRemoval, id)
		},
	}
	c := engine.NewController(el.Transform, host, e.opts...)
	e.controllers[id] = c
	return c
}

func (e *Editor) flushRemovals() {
	pending := e.pendingRemoval
	e.pendingRemoval = nil
	for _, id := range pending {
		_ = e.Remove(id)
	}
}

func removeString(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
