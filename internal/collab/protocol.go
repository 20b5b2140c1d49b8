package collab

import (
	"encoding/json"

	"github.com/inamate/canvasedit/internal/document"
	"github.com/inamate/canvasedit/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Board sync
	TypeDocSync = "doc.sync"

	// Engine input
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypePointerCancel = "pointer.cancel"
	TypeKeyDown       = "key.down"

	// Element commands
	TypeElementPlace = "element.place"
	TypeElementPaste = "element.paste"
	TypeElementEdit  = "element.edit"
	TypeElementText  = "element.text"

	// Element broadcasts
	TypeElementCreated   = "element.created"
	TypeElementTransform = "element.transform"
	TypeElementRemoved   = "element.removed"

	TypeOpAck  = "op.ack"
	TypeOpNack = "op.nack"
)

// --- Incoming payloads ---

// PointerPayload carries pointer.* messages.
type PointerPayload struct {
	OpID      string            `json:"opId,omitempty"`
	ElementID string            `json:"elementId"`
	Position  engine.Vec2       `json:"position"`
	Handle    engine.HandleRole `json:"handle,omitempty"`
	Modifiers engine.Modifiers  `json:"modifiers"`
}

// KeyPayload carries key.down messages.
type KeyPayload struct {
	OpID      string `json:"opId,omitempty"`
	ElementID string `json:"elementId"`
	Key       string `json:"key"`
	Fine      bool   `json:"fine,omitempty"`
	Magnitude bool   `json:"magnitude,omitempty"`
}

type PlacePayload struct {
	OpID     string        `json:"opId,omitempty"`
	Kind     document.Kind `json:"kind"`
	Position engine.Vec2   `json:"position"`
}

type PastePayload struct {
	OpID       string   `json:"opId,omitempty"`
	ElementIDs []string `json:"elementIds"`
	PasteCount int      `json:"pasteCount"`
}

type EditPayload struct {
	OpID      string `json:"opId,omitempty"`
	ElementID string `json:"elementId"`
	Editing   bool   `json:"editing"`
}

// TextPayload is both the element.text command and its broadcast.
type TextPayload struct {
	OpID      string `json:"opId,omitempty"`
	ElementID string `json:"elementId"`
	Text      string `json:"text"`
}

// --- Outgoing payloads ---

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	BoardID  string `json:"boardId"`
}

type DocSyncPayload struct {
	Board     *document.Board `json:"board"`
	ServerSeq int64           `json:"serverSeq"`
}

type ElementCreatedPayload struct {
	Element *document.Element `json:"element"`
	// Placing is set when the creator is now sizing the element.
	Placing bool `json:"placing,omitempty"`
}

type ElementTransformPayload struct {
	ElementID string            `json:"elementId"`
	Transform engine.Transform  `json:"transform"`
	Handle    engine.HandleRole `json:"handle"`
	Cursors   engine.CursorSet  `json:"cursors"`
}

type ElementRemovedPayload struct {
	ElementID string `json:"elementId"`
}

// ErrorPayload is sent before the server drops a client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeBoardClosed = "board_closed"
	CodeRemoved     = "removed"
)

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// Operation is one committed board change, kept in the room's log.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ServerSeq int64  `json:"serverSeq"`
	UserID    string `json:"userId"`
	ElementID string `json:"elementId,omitempty"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
