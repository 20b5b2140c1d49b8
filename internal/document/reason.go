package document

import "github.com/inamate/canvasedit/internal/engine"

// PasteOffset is how far each successive paste is shifted on both axes.
const PasteOffset = 10.0

// CreateReason says why an element is being created.
type CreateReason interface {
	isCreateReason()
}

// UserPlace is a fresh element placed at the pointer.
type UserPlace struct {
	Pointer engine.Vec2
}

// Paste is a copy of an existing element. PasteCount counts the pastes since
// the last copy.
type Paste struct {
	Values     engine.Transform
	Text       string
	PasteCount int
}

// Load restores a stored element.
type Load struct {
	Values engine.Transform
	Text   string
}

func (UserPlace) isCreateReason() {}
func (Paste) isCreateReason()     {}
func (Load) isCreateReason()      {}

// InitialTransform returns where a new element of kind starts.
func InitialTransform(reason CreateReason, kind Kind) engine.Transform {
	switch r := reason.(type) {
	case UserPlace:
		w, h := kind.DefaultSize()
		return engine.Transform{X: r.Pointer.X, Y: r.Pointer.Y, Width: w, Height: h}
	case Paste:
		off := PasteOffset * float64(r.PasteCount+1)
		return r.Values.Translate(engine.V(off, off))
	case Load:
		return r.Values
	}
	return engine.Transform{}
}

// InitialText returns the starting text of a new element.
func InitialText(reason CreateReason) string {
	switch r := reason.(type) {
	case Paste:
		return r.Text
	case Load:
		return r.Text
	}
	return ""
}

// NewElement builds an element for reason.
func NewElement(id string, kind Kind, reason CreateReason) *Element {
	return &Element{
		ID:        id,
		Kind:      kind,
		Transform: InitialTransform(reason, kind),
		Text:      InitialText(reason),
	}
}
