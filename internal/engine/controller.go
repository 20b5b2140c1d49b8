package engine

import "errors"

var (
	ErrNotSelected = errors.New("element not selected")
	ErrEditing     = errors.New("element is being edited")
	ErrReentrant   = errors.New("engine called from inside a host callback")
)

// Host receives the engine's output. Calls are synchronous and nothing is
// awaited; implementations must not call back into the Controller.
//
// UpdateTransform runs for every applied nudge and for every pointer move
// that produces a different Transform. A move that leaves the Transform
// unchanged is not reported.
type Host interface {
	UpdateTransform(t Transform)
	RequestRemoval()
}

// HostFuncs adapts two functions to Host. Nil fields are skipped.
type HostFuncs struct {
	Update func(Transform)
	Remove func()
}

func (h HostFuncs) UpdateTransform(t Transform) {
	if h.Update != nil {
		h.Update(t)
	}
}

func (h HostFuncs) RequestRemoval() {
	if h.Remove != nil {
		h.Remove()
	}
}

// Options tune a Controller.
type Options struct {
	// HandleReach is the width of the handle band around the box.
	// Default: DefaultHandleReach
	HandleReach float64

	// SnapDegrees is the rotation increment used with AngleSnap.
	// Default: DefaultSnapDegrees
	SnapDegrees float64

	// NudgeStep and NudgeCoarseStep are the arrow-key steps.
	// Default: DefaultNudgeStep, DefaultNudgeCoarseStep
	NudgeStep       float64
	NudgeCoarseStep float64
}

// Option configures Options.
type Option func(*Options)

func WithHandleReach(reach float64) Option {
	return func(o *Options) { o.HandleReach = reach }
}

func WithSnapDegrees(deg float64) Option {
	return func(o *Options) { o.SnapDegrees = deg }
}

func WithNudgeSteps(step, coarse float64) Option {
	return func(o *Options) {
		o.NudgeStep = step
		o.NudgeCoarseStep = coarse
	}
}

// Controller binds the engine to one element: its Transform, its selected
// and editing flags, the active DragSession and the cursor mapping. It is not
// safe for concurrent use; the host drives it from a single goroutine.
type Controller struct {
	transform Transform
	selected  bool
	editing   bool

	session *DragSession
	cursors CursorSet
	nudger  Nudger
	reach   float64
	host    Host

	inCallback bool
}

// NewController returns a controller for an element placed at t.
func NewController(t Transform, host Host, opts ...Option) *Controller {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if host == nil {
		host = HostFuncs{}
	}
	reach := o.HandleReach
	if reach <= 0 {
		reach = DefaultHandleReach
	}
	return &Controller{
		transform: t,
		session:   NewDragSession(o.SnapDegrees),
		cursors:   CursorsFor(t.Rotation),
		nudger:    NewNudger(o.NudgeStep, o.NudgeCoarseStep),
		reach:     reach,
		host:      host,
	}
}

// Transform returns the last committed Transform.
func (c *Controller) Transform() Transform { return c.transform }

// Selected reports whether the element is selected.
func (c *Controller) Selected() bool { return c.selected }

// Editing reports whether the element's content is being edited.
func (c *Controller) Editing() bool { return c.editing }

// Cursors returns the current handle cursor mapping.
func (c *Controller) Cursors() CursorSet { return c.cursors }

// Session exposes the drag session for inspection.
func (c *Controller) Session() *DragSession { return c.session }

// Dragging reports whether a drag session is active.
func (c *Controller) Dragging() bool { return c.session.State() == StateActive }

// ActiveHandle returns the handle tracking the pointer, or HandleNone.
func (c *Controller) ActiveHandle() HandleRole { return c.session.Active() }

// Handles returns the handle layout of the current Transform.
func (c *Controller) Handles() HandleSet {
	return NewHandleSet(c.transform, c.reach)
}

// HitTest maps a host-space point to the handle under it.
func (c *Controller) HitTest(p Vec2) HandleRole {
	return c.Handles().HitTest(p)
}

// CursorAt returns the cursor to show with the pointer at p.
func (c *Controller) CursorAt(p Vec2) Cursor {
	return c.cursors.For(c.HitTest(p))
}

// SetTransform replaces the Transform, e.g. after a load. It is rejected
// while a drag is in progress.
func (c *Controller) SetTransform(t Transform) error {
	if c.inCallback {
		return ErrReentrant
	}
	if c.Dragging() {
		return ErrSessionActive
	}
	c.transform = t
	c.cursors = CursorsFor(t.Rotation)
	return nil
}

// SetSelected updates the selection flag. Deselecting ends any drag.
func (c *Controller) SetSelected(selected bool) {
	c.selected = selected
	if !selected {
		c.session.Cancel()
	}
}

// SetEditing updates the editing flag. Entering editing ends any drag.
func (c *Controller) SetEditing(editing bool) {
	c.editing = editing
	if editing {
		c.session.Cancel()
	}
}

// PointerDown starts a drag of handle with the pointer at pos.
func (c *Controller) PointerDown(pos Vec2, handle HandleRole) error {
	if err := c.canStart(); err != nil {
		return err
	}
	return c.session.Begin(c.transform, handle, pos)
}

// StartPlacement starts sizing a freshly placed element from its bottom-right
// corner before any pointer position is known.
func (c *Controller) StartPlacement() error {
	if err := c.canStart(); err != nil {
		return err
	}
	return c.session.BeginUnanchored(c.transform, HandleCornerBR)
}

func (c *Controller) canStart() error {
	switch {
	case c.inCallback:
		return ErrReentrant
	case !c.selected:
		return ErrNotSelected
	case c.editing:
		return ErrEditing
	}
	return nil
}

// PointerMove feeds one pointer sample to the active drag. It reports
// whether the Transform changed; the host is notified only then.
func (c *Controller) PointerMove(pos Vec2, mods Modifiers) (bool, error) {
	if c.inCallback {
		return false, ErrReentrant
	}
	if !c.Dragging() {
		return false, nil
	}
	handle := c.session.Active()
	next := c.session.Move(c.transform, PointerEvent{Position: pos, Modifiers: mods})
	if next == c.transform {
		return false, nil
	}
	if handle == HandleRotate {
		c.cursors = CursorsFor(next.Rotation)
	}
	c.commit(next)
	return true, nil
}

// PointerUp ends the active drag.
func (c *Controller) PointerUp() {
	c.session.End()
}

// Cancel ends the active drag without reverting the Transform.
func (c *Controller) Cancel() {
	c.session.Cancel()
}

// Key applies a key press. Keys are ignored unless the element is selected
// and not being edited.
func (c *Controller) Key(ev KeyEvent) (NudgeResult, error) {
	if c.inCallback {
		return NudgeIgnored, ErrReentrant
	}
	if !c.selected || c.editing {
		return NudgeIgnored, nil
	}

	next, res := c.nudger.Apply(c.transform, ev)
	switch res {
	case NudgeApplied:
		c.commit(next)
	case NudgeRemove:
		c.session.Cancel()
		c.callback(func() { c.host.RequestRemoval() })
	case NudgeCancel:
		if !c.Dragging() {
			return NudgeIgnored, nil
		}
		c.session.Cancel()
	}
	return res, nil
}

func (c *Controller) commit(t Transform) {
	c.transform = t
	c.callback(func() { c.host.UpdateTransform(t) })
}

func (c *Controller) callback(fn func()) {
	c.inCallback = true
	defer func() { c.inCallback = false }()
	fn()
}
