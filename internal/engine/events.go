package engine

import "fmt"

// EventKind is the kind of input event fed to a Controller.
type EventKind string

const (
	EventPointerDown EventKind = "pointer.down"
	EventPointerMove EventKind = "pointer.move"
	EventPointerUp   EventKind = "pointer.up"
	EventCancel      EventKind = "pointer.cancel"
	EventKeyDown     EventKind = "key.down"
)

// Event is the serializable form of every input the engine consumes.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Position  Vec2       `json:"position"`
	Handle    HandleRole `json:"handle,omitempty"`
	Modifiers Modifiers  `json:"modifiers"`
	Key       string     `json:"key,omitempty"`
	Fine      bool       `json:"fine,omitempty"`
	Magnitude bool       `json:"magnitude,omitempty"`
}

// Outcome describes what a handled event did.
type Outcome struct {
	Changed   bool        `json:"changed"`
	Transform Transform   `json:"transform"`
	Handle    HandleRole  `json:"handle"`
	Cursors   CursorSet   `json:"cursors"`
	Nudge     NudgeResult `json:"-"`
}

// Handle dispatches ev and reports the resulting state.
func (c *Controller) Handle(ev Event) (Outcome, error) {
	before := c.transform
	var nudge NudgeResult
	var err error

	switch ev.Kind {
	case EventPointerDown:
		err = c.PointerDown(ev.Position, ev.Handle)
	case EventPointerMove:
		_, err = c.PointerMove(ev.Position, ev.Modifiers)
	case EventPointerUp:
		c.PointerUp()
	case EventCancel:
		c.Cancel()
	case EventKeyDown:
		nudge, err = c.Key(KeyEvent{Key: ParseKey(ev.Key), Fine: ev.Fine, Magnitude: ev.Magnitude})
	default:
		err = fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	return Outcome{
		Changed:   c.transform != before,
		Transform: c.transform,
		Handle:    c.session.Active(),
		Cursors:   c.cursors,
		Nudge:     nudge,
	}, err
}
