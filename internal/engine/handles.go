package engine

// HandleRole identifies a draggable control region of a box.
type HandleRole int

const (
	HandleNone HandleRole = iota
	HandleMove
	HandleEdgeTop
	HandleEdgeRight
	HandleEdgeBottom
	HandleEdgeLeft
	HandleCornerTL
	HandleCornerTR
	HandleCornerBL
	HandleCornerBR
	HandleRotate
)

var handleNames = [...]string{
	HandleNone:       "none",
	HandleMove:       "move",
	HandleEdgeTop:    "edge-top",
	HandleEdgeRight:  "edge-right",
	HandleEdgeBottom: "edge-bottom",
	HandleEdgeLeft:   "edge-left",
	HandleCornerTL:   "corner-tl",
	HandleCornerTR:   "corner-tr",
	HandleCornerBL:   "corner-bl",
	HandleCornerBR:   "corner-br",
	HandleRotate:     "rotate",
}

// DefaultHandleReach is the width of the handle band outside the box.
const DefaultHandleReach = 8.0

// ParseHandleRole maps a handle name to its role. Unknown names yield HandleNone.
func ParseHandleRole(s string) HandleRole {
	for i, name := range handleNames {
		if name == s {
			return HandleRole(i)
		}
	}
	return HandleNone
}

// Normalize maps out-of-range values to HandleNone.
func (h HandleRole) Normalize() HandleRole {
	if h < HandleNone || h > HandleRotate {
		return HandleNone
	}
	return h
}

func (h HandleRole) String() string {
	return handleNames[h.Normalize()]
}

// MarshalText encodes the role by name.
func (h HandleRole) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a role name; unknown names decode to HandleNone.
func (h *HandleRole) UnmarshalText(b []byte) error {
	*h = ParseHandleRole(string(b))
	return nil
}

// IsEdge reports whether h is one of the four edge handles.
func (h HandleRole) IsEdge() bool {
	return h >= HandleEdgeTop && h <= HandleEdgeLeft
}

// IsCorner reports whether h is one of the four corner handles.
func (h HandleRole) IsCorner() bool {
	return h >= HandleCornerTL && h <= HandleCornerBR
}

// cornerSides splits a corner role into its horizontal and vertical side.
func (h HandleRole) cornerSides() (right, bottom bool) {
	switch h {
	case HandleCornerTR:
		return true, false
	case HandleCornerBL:
		return false, true
	case HandleCornerBR:
		return true, true
	}
	return false, false
}

func cornerFor(right, bottom bool) HandleRole {
	switch {
	case right && bottom:
		return HandleCornerBR
	case right:
		return HandleCornerTR
	case bottom:
		return HandleCornerBL
	}
	return HandleCornerTL
}

// Region is the area a handle owns, both in the box's local frame and as a
// screen-space quad (clockwise from the local top-left vertex).
type Region struct {
	Role  HandleRole `json:"role"`
	Local Rect       `json:"local"`
	Quad  [4]Vec2    `json:"quad"`
}

// HandleSet places every handle of a box. It never mutates the box.
type HandleSet struct {
	Transform Transform
	Reach     float64
}

// NewHandleSet returns the handle layout for t. A non-positive reach uses
// DefaultHandleReach.
func NewHandleSet(t Transform, reach float64) HandleSet {
	if reach <= 0 {
		reach = DefaultHandleReach
	}
	return HandleSet{Transform: t, Reach: reach}
}

// hitOrder lists roles front to back; later siblings are stacked above earlier ones.
var hitOrder = []HandleRole{
	HandleRotate,
	HandleCornerBR,
	HandleCornerBL,
	HandleCornerTR,
	HandleCornerTL,
	HandleEdgeLeft,
	HandleEdgeBottom,
	HandleEdgeRight,
	HandleEdgeTop,
	HandleMove,
}

// Corners returns the screen-space corners of the box.
func (hs HandleSet) Corners() Corners {
	return hs.Transform.Corners()
}

// RotateGrip returns the screen-space center of the rotation grip.
func (hs HandleSet) RotateGrip() Vec2 {
	return Placement(hs.Transform).TransformPoint(hs.local(HandleRotate).Center())
}

// Region returns the area owned by role. HandleNone has an empty region.
func (hs HandleSet) Region(role HandleRole) Region {
	role = role.Normalize()
	local := hs.local(role)
	m := Placement(hs.Transform)
	return Region{
		Role:  role,
		Local: local,
		Quad: [4]Vec2{
			m.TransformPoint(Vec2{local.X, local.Y}),
			m.TransformPoint(Vec2{local.X + local.Width, local.Y}),
			m.TransformPoint(Vec2{local.X + local.Width, local.Y + local.Height}),
			m.TransformPoint(Vec2{local.X, local.Y + local.Height}),
		},
	}
}

// Regions returns every handle region in hit-test priority order.
func (hs HandleSet) Regions() []Region {
	regions := make([]Region, 0, len(hitOrder))
	for _, role := range hitOrder {
		regions = append(regions, hs.Region(role))
	}
	return regions
}

// HitTest returns the topmost handle containing p, or HandleNone.
func (hs HandleSet) HitTest(p Vec2) HandleRole {
	if !p.IsFinite() {
		return HandleNone
	}
	local := hs.Transform.ToLocal(p)
	for _, role := range hitOrder {
		if hs.local(role).Contains(local) {
			return role
		}
	}
	return HandleNone
}

func (hs HandleSet) local(role HandleRole) Rect {
	body := hs.Transform.Local()
	r := hs.Reach
	left, top := body.X, body.Y
	right, bottom := body.X+body.Width, body.Y+body.Height

	switch role {
	case HandleMove:
		return body
	case HandleEdgeTop:
		return Rect{X: left - r, Y: top - r, Width: body.Width + 2*r, Height: r}
	case HandleEdgeBottom:
		return Rect{X: left - r, Y: bottom, Width: body.Width + 2*r, Height: r}
	case HandleEdgeLeft:
		return Rect{X: left - r, Y: top - r, Width: r, Height: body.Height + 2*r}
	case HandleEdgeRight:
		return Rect{X: right, Y: top - r, Width: r, Height: body.Height + 2*r}
	case HandleCornerTL:
		return Rect{X: left - r, Y: top - r, Width: r, Height: r}
	case HandleCornerTR:
		return Rect{X: right, Y: top - r, Width: r, Height: r}
	case HandleCornerBL:
		return Rect{X: left - r, Y: bottom, Width: r, Height: r}
	case HandleCornerBR:
		return Rect{X: right, Y: bottom, Width: r, Height: r}
	case HandleRotate:
		return Rect{X: -r / 2, Y: top - 2*r, Width: r, Height: r}
	}
	return Rect{}
}
