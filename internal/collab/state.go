package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/editor"
	"github.com/inamate/canvasedit/internal/engine"
	"github.com/inamate/canvasedit/internal/typeid"
)

// maxOpLog bounds the operations kept per room.
const maxOpLog = 1000

var (
	ErrDragOwned  = errors.New("element is being dragged by another client")
	ErrBadPayload = errors.New("invalid payload")
)

// Actor is the client a message came from, with its current selection.
type Actor struct {
	ClientID  string
	UserID    string
	Selection []string
}

func (a Actor) selects(id string) bool {
	return slices.Contains(a.Selection, id)
}

// BoardState holds the authoritative board for a room. Messages are applied
// one at a time in arrival order.
type BoardState struct {
	mu        sync.Mutex
	boardID   string
	editor    *editor.Editor
	serverSeq int64
	opLog     []Operation
	dirty     bool

	// elementID -> clientID of the client dragging it
	owners map[string]string

	removed []string
}

// NewBoardState wraps board; opts tune every element controller.
func NewBoardState(board *document.Board, opts ...engine.Option) *BoardState {
	bs := &BoardState{
		boardID: board.ID,
		owners:  map[string]string{},
		opLog:   make([]Operation, 0),
	}
	bs.editor = editor.New(board, editor.ListenerFuncs{
		Removed: func(id string) { bs.removed = append(bs.removed, id) },
	}, opts...)
	return bs
}

// Snapshot returns a copy of the board and the sequence it reflects.
func (bs *BoardState) Snapshot() (*document.Board, int64) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.editor.Board().Clone(), bs.serverSeq
}

// Dirty reports whether the board changed since the last MarkSaved.
func (bs *BoardState) Dirty() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.dirty
}

// MarkSaved clears the dirty flag if nothing was applied after seq.
func (bs *BoardState) MarkSaved(seq int64) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if seq == bs.serverSeq {
		bs.dirty = false
	}
}

// OpLog returns the committed operations.
func (bs *BoardState) OpLog() []Operation {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return slices.Clone(bs.opLog)
}

// Owner returns the client dragging elementID, or "".
func (bs *BoardState) Owner(elementID string) string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.owners[elementID]
}

// Apply handles one message from a client. It returns the messages for the
// whole room and an optional reply for the sender.
func (bs *BoardState) Apply(from Actor, msg *Message) ([]*Message, *Message) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	opID, out, err := bs.apply(from, msg)
	out = append(out, bs.drainRemoved(from)...)
	bs.syncOwners()

	if err != nil {
		return out, newMessage(TypeOpNack, OperationNackPayload{OperationID: opID, Reason: err.Error()})
	}
	if opID == "" {
		return out, nil
	}
	return out, newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     opID,
		ServerSeq:       bs.serverSeq,
		ServerTimestamp: time.Now().UnixMilli(),
	})
}

// ReleaseClient cancels every drag owned by clientID.
func (bs *BoardState) ReleaseClient(clientID string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	for id, owner := range bs.owners {
		if owner != clientID {
			continue
		}
		_, _ = bs.editor.Dispatch(id, engine.Event{Kind: engine.EventCancel})
		delete(bs.owners, id)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return v, nil
}

func (bs *BoardState) apply(from Actor, msg *Message) (string, []*Message, error) {
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp, TypePointerCancel:
		p, err := decode[PointerPayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		out, err := bs.pointer(from, msg.Type, p)
		return p.OpID, out, err

	case TypeKeyDown:
		p, err := decode[KeyPayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		out, err := bs.key(from, p)
		return p.OpID, out, err

	case TypeElementPlace:
		p, err := decode[PlacePayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		out, err := bs.place(from, p)
		return p.OpID, out, err

	case TypeElementPaste:
		p, err := decode[PastePayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		els, err := bs.editor.Paste(p.ElementIDs, p.PasteCount)
		var out []*Message
		for _, el := range els {
			out = append(out, bs.broadcast(from, TypeElementCreated, el.ID, ElementCreatedPayload{Element: el}))
		}
		return p.OpID, out, err

	case TypeElementEdit:
		p, err := decode[EditPayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		if owner, ok := bs.owners[p.ElementID]; ok && owner != from.ClientID {
			return p.OpID, nil, ErrDragOwned
		}
		return p.OpID, nil, bs.editor.SetEditing(p.ElementID, p.Editing)

	case TypeElementText:
		p, err := decode[TextPayload](msg.Payload)
		if err != nil {
			return "", nil, err
		}
		if err := bs.editor.SetText(p.ElementID, p.Text); err != nil {
			return p.OpID, nil, err
		}
		return p.OpID, []*Message{bs.broadcast(from, TypeElementText, p.ElementID, TextPayload{ElementID: p.ElementID, Text: p.Text})}, nil
	}
	return "", nil, fmt.Errorf("unknown message type %q", msg.Type)
}

func (bs *BoardState) pointer(from Actor, typ string, p PointerPayload) ([]*Message, error) {
	id := p.ElementID
	owner, owned := bs.owners[id]
	mine := owned && owner == from.ClientID

	switch typ {
	case TypePointerDown:
		if owned && !mine {
			return nil, ErrDragOwned
		}
		if err := bs.editor.SetSelected(id, from.selects(id)); err != nil {
			return nil, err
		}
		if _, err := bs.editor.Dispatch(id, engine.Event{Kind: engine.EventPointerDown, Position: p.Position, Handle: p.Handle}); err != nil {
			return nil, err
		}
		bs.owners[id] = from.ClientID
		return nil, nil

	case TypePointerMove:
		if !mine {
			return nil, nil
		}
		out, err := bs.editor.Dispatch(id, engine.Event{Kind: engine.EventPointerMove, Position: p.Position, Modifiers: p.Modifiers})
		if err != nil || !out.Changed {
			return nil, err
		}
		return []*Message{bs.transformMessage(from, id, out)}, nil

	default:
		if !mine {
			return nil, nil
		}
		kind := engine.EventPointerUp
		if typ == TypePointerCancel {
			kind = engine.EventCancel
		}
		_, err := bs.editor.Dispatch(id, engine.Event{Kind: kind})
		delete(bs.owners, id)
		return nil, err
	}
}

func (bs *BoardState) key(from Actor, p KeyPayload) ([]*Message, error) {
	if owner, ok := bs.owners[p.ElementID]; ok && owner != from.ClientID {
		return nil, ErrDragOwned
	}
	if err := bs.editor.SetSelected(p.ElementID, from.selects(p.ElementID)); err != nil {
		return nil, err
	}
	out, err := bs.editor.Dispatch(p.ElementID, engine.Event{
		Kind:      engine.EventKeyDown,
		Key:       p.Key,
		Fine:      p.Fine,
		Magnitude: p.Magnitude,
	})
	if err != nil || !out.Changed {
		return nil, err
	}
	return []*Message{bs.transformMessage(from, p.ElementID, out)}, nil
}

func (bs *BoardState) place(from Actor, p PlacePayload) ([]*Message, error) {
	el, err := bs.editor.Place(p.Kind, p.Position)
	if err != nil {
		return nil, err
	}
	placing := false
	if c, ok := bs.editor.Controller(el.ID); ok && c.Dragging() {
		bs.owners[el.ID] = from.ClientID
		placing = true
	}
	return []*Message{bs.broadcast(from, TypeElementCreated, el.ID, ElementCreatedPayload{Element: el, Placing: placing})}, nil
}

func (bs *BoardState) transformMessage(from Actor, id string, out engine.Outcome) *Message {
	return bs.broadcast(from, TypeElementTransform, id, ElementTransformPayload{
		ElementID: id,
		Transform: out.Transform,
		Handle:    out.Handle,
		Cursors:   out.Cursors,
	})
}

// broadcast commits an operation and builds the room message announcing it.
func (bs *BoardState) broadcast(from Actor, typ, elementID string, payload any) *Message {
	bs.serverSeq++
	bs.dirty = true
	bs.opLog = append(bs.opLog, Operation{
		ID:        typeid.NewOpID(),
		Type:      typ,
		Timestamp: time.Now().UnixMilli(),
		ServerSeq: bs.serverSeq,
		UserID:    from.UserID,
		ElementID: elementID,
	})
	if n := len(bs.opLog) - maxOpLog; n > 0 {
		bs.opLog = slices.Delete(bs.opLog, 0, n)
	}

	msg := newMessage(typ, payload)
	msg.BoardID = bs.boardID
	msg.UserID = from.UserID
	msg.ClientID = from.ClientID
	msg.Seq = bs.serverSeq
	return msg
}

func (bs *BoardState) drainRemoved(from Actor) []*Message {
	var out []*Message
	for _, id := range bs.removed {
		delete(bs.owners, id)
		out = append(out, bs.broadcast(from, TypeElementRemoved, id, ElementRemovedPayload{ElementID: id}))
	}
	bs.removed = nil
	return out
}

// syncOwners forgets owners whose drag ended inside the engine, e.g. after
// Escape or a deselection.
func (bs *BoardState) syncOwners() {
	for id := range bs.owners {
		c, ok := bs.editor.Controller(id)
		if !ok || !c.Dragging() {
			delete(bs.owners, id)
		}
	}
}
