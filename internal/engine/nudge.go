package engine

// Key is a keyboard key the engine reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyDelete
	KeyBackspace
	KeyEscape
)

var keyNames = map[string]Key{
	"ArrowUp":    KeyArrowUp,
	"ArrowDown":  KeyArrowDown,
	"ArrowLeft":  KeyArrowLeft,
	"ArrowRight": KeyArrowRight,
	"Delete":     KeyDelete,
	"Backspace":  KeyBackspace,
	"Escape":     KeyEscape,
}

// ParseKey maps a DOM KeyboardEvent.key value to a Key.
func ParseKey(s string) Key {
	return keyNames[s]
}

// KeyEvent is one key press. Fine switches arrows from moving to resizing,
// Magnitude selects the coarse step.
type KeyEvent struct {
	Key       Key
	Fine      bool
	Magnitude bool
}

// NudgeResult says what a key press asks of the host.
type NudgeResult int

const (
	NudgeIgnored NudgeResult = iota
	NudgeApplied
	NudgeRemove
	NudgeCancel
)

const (
	DefaultNudgeStep       = 1.0
	DefaultNudgeCoarseStep = 10.0
)

// Nudger turns directional keys into discrete Transform changes.
type Nudger struct {
	Step       float64
	CoarseStep float64
}

// NewNudger returns a nudger; non-positive steps fall back to the defaults.
func NewNudger(step, coarse float64) Nudger {
	if step <= 0 {
		step = DefaultNudgeStep
	}
	if coarse <= 0 {
		coarse = DefaultNudgeCoarseStep
	}
	return Nudger{Step: step, CoarseStep: coarse}
}

// Apply returns the Transform after ev and what the host should do about it.
// Only NudgeApplied changes the Transform.
func (n Nudger) Apply(t Transform, ev KeyEvent) (Transform, NudgeResult) {
	amount := n.Step
	if ev.Magnitude {
		amount = n.CoarseStep
	}

	var dx, dy float64
	switch ev.Key {
	case KeyDelete, KeyBackspace:
		return t, NudgeRemove
	case KeyEscape:
		return t, NudgeCancel
	case KeyArrowUp:
		dy = -amount
	case KeyArrowDown:
		dy = amount
	case KeyArrowLeft:
		dx = -amount
	case KeyArrowRight:
		dx = amount
	default:
		return t, NudgeIgnored
	}

	if ev.Fine {
		t.Width = max(t.Width+dx, 0)
		t.Height = max(t.Height+dy, 0)
	} else {
		t.X += dx
		t.Y += dy
	}
	return t, NudgeApplied
}
