package engine

import (
	"errors"
	"math"
)

var ErrSessionActive = errors.New("drag session already active")

// DefaultSnapDegrees is the rotation snap increment used with AngleSnap.
const DefaultSnapDegrees = 15.0

// Modifiers are the modifier keys held during a pointer move.
type Modifiers struct {
	AspectLock bool `json:"aspectLock,omitempty"`
	FromCenter bool `json:"fromCenter,omitempty"`
	AngleSnap  bool `json:"angleSnap,omitempty"`
}

// PointerEvent is one pointer-move sample in host space.
type PointerEvent struct {
	Position  Vec2      `json:"position"`
	Modifiers Modifiers `json:"modifiers"`
}

// SessionState is the state of a DragSession.
type SessionState int

const (
	StateIdle SessionState = iota
	StateActive
)

func (s SessionState) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// DragSession tracks one pointer drag on one box, from pointer-down to
// pointer-up. Moves must be fed in arrival order: each step resizes from the
// corners of the Transform produced by the previous step.
type DragSession struct {
	state       SessionState
	active      HandleRole
	anchor      Transform
	last        Vec2
	aspectRatio float64
	snapStep    float64
}

// NewDragSession returns an idle session that snaps rotation to snapDegrees
// increments. A non-positive value uses DefaultSnapDegrees.
func NewDragSession(snapDegrees float64) *DragSession {
	if snapDegrees <= 0 {
		snapDegrees = DefaultSnapDegrees
	}
	return &DragSession{
		last:     nanVec,
		snapStep: snapDegrees * math.Pi / 180,
	}
}

// Begin starts a drag of handle on t with the pointer at pointer.
func (s *DragSession) Begin(t Transform, handle HandleRole, pointer Vec2) error {
	if s.state == StateActive {
		return ErrSessionActive
	}
	s.state = StateActive
	s.active = handle.Normalize()
	s.anchor = t
	s.aspectRatio = aspectRatioOf(t.Width, t.Height)
	s.last = pointer
	if !pointer.IsFinite() {
		s.last = nanVec
	}
	return nil
}

// BeginUnanchored starts a drag without a known pointer position. The first
// move only records the pointer; transforms start with the second move.
func (s *DragSession) BeginUnanchored(t Transform, handle HandleRole) error {
	return s.Begin(t, handle, nanVec)
}

// End finishes the session and discards its state. The caller keeps the last
// Transform returned by Move.
func (s *DragSession) End() {
	s.state = StateIdle
	s.active = HandleNone
	s.anchor = Transform{}
	s.aspectRatio = 0
	s.last = nanVec
}

// Cancel ends the session early. The Transform is not reverted.
func (s *DragSession) Cancel() {
	s.End()
}

// State returns the current state.
func (s *DragSession) State() SessionState { return s.state }

// Active returns the handle currently tracking the pointer. It can change
// during a drag when the box flips.
func (s *DragSession) Active() HandleRole { return s.active }

// Anchor returns the Transform captured at drag start.
func (s *DragSession) Anchor() Transform { return s.anchor }

// AspectRatio returns the width/height ratio captured at drag start.
func (s *DragSession) AspectRatio() float64 { return s.aspectRatio }

// Move applies one pointer sample to current and returns the new Transform.
// An idle session, the first sample of an unanchored session, a sample equal
// to the previous one and a non-finite sample all return current unchanged.
func (s *DragSession) Move(current Transform, ev PointerEvent) Transform {
	if s.state != StateActive || !ev.Position.IsFinite() {
		return current
	}
	if !s.last.IsFinite() {
		s.last = ev.Position
		return current
	}

	delta := ev.Position.Sub(s.last)
	s.last = ev.Position
	if delta.X == 0 && delta.Y == 0 {
		return current
	}

	next := s.step(current, delta, ev)
	if !next.IsFinite() {
		return current
	}
	return next
}

func (s *DragSession) step(t Transform, delta Vec2, ev PointerEvent) Transform {
	cos := math.Cos(t.Rotation)
	sin := math.Sin(t.Rotation)
	distX, distY := ProjectOntoRotatedAxes(delta, cos, sin)
	pointer := ev.Position
	mods := ev.Modifiers

	// Offset of the pointer from a corner, in the box frame.
	pointerFrom := func(corner Vec2) (float64, float64) {
		return ProjectOntoRotatedAxes(pointer.Sub(corner), cos, sin)
	}

	var o offsets
	switch s.active {
	case HandleMove:
		return t.Translate(delta)

	case HandleRotate:
		angle := math.Atan2(pointer.Y-t.Y, pointer.X-t.X) + math.Pi/2
		if mods.AngleSnap {
			angle = math.Round(angle/s.snapStep) * s.snapStep
		}
		t.Rotation = angle
		return t

	case HandleEdgeTop:
		o.put(sideTop, distY)
	case HandleEdgeBottom:
		o.put(sideBottom, distY)
	case HandleEdgeLeft:
		o.put(sideLeft, distX)
	case HandleEdgeRight:
		o.put(sideRight, distX)

	case HandleCornerTL, HandleCornerTR, HandleCornerBL, HandleCornerBR:
		c := t.Corners()
		right, bottom := s.active.cornerSides()
		corner := c.TL
		switch {
		case right && bottom:
			corner = c.BR
		case right:
			corner = c.TR
		case bottom:
			corner = c.BL
		}
		dx, dy := pointerFrom(corner)
		if right {
			o.put(sideRight, dx)
		} else {
			o.put(sideLeft, dx)
		}
		if bottom {
			o.put(sideBottom, dy)
		} else {
			o.put(sideTop, dy)
		}

	default:
		return t
	}

	res := resize(t, o, mods, s.aspectRatio, pointer)
	s.reassign(res)
	return res.transform
}

// reassign hands the drag to the mirror handle when the box flipped, so that
// the handle under the pointer keeps tracking it.
func (s *DragSession) reassign(res resizeResult) {
	switch s.active {
	case HandleEdgeTop:
		if res.flippedY {
			s.active = HandleEdgeBottom
		}
	case HandleEdgeBottom:
		if res.flippedY {
			s.active = HandleEdgeTop
		}
	case HandleEdgeLeft:
		if res.flippedX {
			s.active = HandleEdgeRight
		}
	case HandleEdgeRight:
		if res.flippedX {
			s.active = HandleEdgeLeft
		}
	case HandleCornerTL, HandleCornerTR, HandleCornerBL, HandleCornerBR:
		right, bottom := s.active.cornerSides()
		if right {
			right = !(res.flippedX || res.pointerX == -1)
		} else {
			right = res.flippedX || res.pointerX == 1
		}
		if bottom {
			bottom = !(res.flippedY || res.pointerY == -1)
		} else {
			bottom = res.flippedY || res.pointerY == 1
		}
		s.active = cornerFor(right, bottom)
	}
}
