package engine

import "math"

// Cursor is an abstract pointer icon; rendering it is up to the host.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResizeNS
	CursorResizeEW
	CursorResizeNWSE
	CursorResizeNESW
)

var cursorNames = [...]string{
	CursorDefault:    "default",
	CursorMove:       "move",
	CursorResizeNS:   "ns-resize",
	CursorResizeEW:   "ew-resize",
	CursorResizeNWSE: "nwse-resize",
	CursorResizeNESW: "nesw-resize",
}

func (c Cursor) String() string {
	if c < CursorDefault || c > CursorResizeNESW {
		return cursorNames[CursorDefault]
	}
	return cursorNames[c]
}

// MarshalText encodes the cursor by its CSS name.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// resizeBuckets are ordered by the direction a top edge faces after each
// 45° turn.
var resizeBuckets = [4]Cursor{
	CursorResizeNS,
	CursorResizeNESW,
	CursorResizeEW,
	CursorResizeNWSE,
}

// CursorSet is the resize cursor shown on each handle group.
type CursorSet struct {
	TopBottom Cursor `json:"topBottom"`
	LeftRight Cursor `json:"leftRight"`
	TLBR      Cursor `json:"tlbr"`
	TRBL      Cursor `json:"trbl"`
}

// CursorsFor returns the cursor set matching a box rotated by rotation.
func CursorsFor(rotation float64) CursorSet {
	i := 0
	if isFinite(rotation) {
		i = Mod(int(math.Round(rotation/(math.Pi/4))), 4)
	}
	return CursorSet{
		TopBottom: resizeBuckets[i],
		TRBL:      resizeBuckets[(i+1)%4],
		LeftRight: resizeBuckets[(i+2)%4],
		TLBR:      resizeBuckets[(i+3)%4],
	}
}

// For returns the cursor for a handle.
func (cs CursorSet) For(role HandleRole) Cursor {
	switch role.Normalize() {
	case HandleEdgeTop, HandleEdgeBottom:
		return cs.TopBottom
	case HandleEdgeLeft, HandleEdgeRight:
		return cs.LeftRight
	case HandleCornerTL, HandleCornerBR:
		return cs.TLBR
	case HandleCornerTR, HandleCornerBL:
		return cs.TRBL
	case HandleMove, HandleRotate:
		return CursorMove
	}
	return CursorDefault
}
