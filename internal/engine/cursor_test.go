package engine

import (
	"math"
	"testing"
)

func TestCursorsFor(t *testing.T) {
	tests := []struct {
		rotation float64
		want     CursorSet
	}{
		{0, CursorSet{TopBottom: CursorResizeNS, TRBL: CursorResizeNESW, LeftRight: CursorResizeEW, TLBR: CursorResizeNWSE}},
		{math.Pi / 4, CursorSet{TopBottom: CursorResizeNESW, TRBL: CursorResizeEW, LeftRight: CursorResizeNWSE, TLBR: CursorResizeNS}},
		{math.Pi / 2, CursorSet{TopBottom: CursorResizeEW, TRBL: CursorResizeNWSE, LeftRight: CursorResizeNS, TLBR: CursorResizeNESW}},
		{-math.Pi / 4, CursorSet{TopBottom: CursorResizeNWSE, TRBL: CursorResizeNS, LeftRight: CursorResizeNESW, TLBR: CursorResizeEW}},
		{math.Pi, CursorSet{TopBottom: CursorResizeNS, TRBL: CursorResizeNESW, LeftRight: CursorResizeEW, TLBR: CursorResizeNWSE}},
		// 0.3 rad is closer to 0 than to 45 degrees.
		{0.3, CursorSet{TopBottom: CursorResizeNS, TRBL: CursorResizeNESW, LeftRight: CursorResizeEW, TLBR: CursorResizeNWSE}},
		{math.NaN(), CursorSet{TopBottom: CursorResizeNS, TRBL: CursorResizeNESW, LeftRight: CursorResizeEW, TLBR: CursorResizeNWSE}},
	}
	for _, tt := range tests {
		if got := CursorsFor(tt.rotation); got != tt.want {
			t.Errorf("CursorsFor(%v) = %+v, want %+v", tt.rotation, got, tt.want)
		}
	}
}

func TestCursorSet_For(t *testing.T) {
	cs := CursorsFor(0)
	tests := []struct {
		role HandleRole
		want Cursor
	}{
		{HandleEdgeTop, CursorResizeNS},
		{HandleEdgeBottom, CursorResizeNS},
		{HandleEdgeLeft, CursorResizeEW},
		{HandleCornerTL, CursorResizeNWSE},
		{HandleCornerBR, CursorResizeNWSE},
		{HandleCornerTR, CursorResizeNESW},
		{HandleCornerBL, CursorResizeNESW},
		{HandleMove, CursorMove},
		{HandleRotate, CursorMove},
		{HandleNone, CursorDefault},
		{HandleRole(77), CursorDefault},
	}
	for _, tt := range tests {
		if got := cs.For(tt.role); got != tt.want {
			t.Errorf("For(%v) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestCursor_String(t *testing.T) {
	if got := CursorResizeNWSE.String(); got != "nwse-resize" {
		t.Errorf("String() = %q", got)
	}
	if got := Cursor(99).String(); got != "default" {
		t.Errorf("out of range cursor = %q, want default", got)
	}
}

func TestMod(t *testing.T) {
	tests := []struct{ n, m, want int }{
		{0, 4, 0},
		{5, 4, 1},
		{-1, 4, 3},
		{-4, 4, 0},
		{-9, 4, 3},
	}
	for _, tt := range tests {
		if got := Mod(tt.n, tt.m); got != tt.want {
			t.Errorf("Mod(%d, %d) = %d, want %d", tt.n, tt.m, got, tt.want)
		}
	}
}
