package engine

import (
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-9

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertTransform(t *testing.T, got, want Transform) {
	t.Helper()
	if !approx(got.X, want.X, tol) || !approx(got.Y, want.Y, tol) ||
		!approx(got.Width, want.Width, tol) || !approx(got.Height, want.Height, tol) ||
		!approx(got.Rotation, want.Rotation, tol) {
		t.Errorf("transform = %+v, want %+v", got, want)
	}
}

func begin(t *testing.T, tr Transform, h HandleRole, p Vec2) *DragSession {
	t.Helper()
	s := NewDragSession(0)
	if err := s.Begin(tr, h, p); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return s
}

func TestDragSession_CornerResize(t *testing.T) {
	start := Transform{X: 100, Y: 100, Width: 200, Height: 100}
	s := begin(t, start, HandleCornerBR, V(200, 150))

	got := s.Move(start, PointerEvent{Position: V(250, 170)})

	assertTransform(t, got, Transform{X: 125, Y: 110, Width: 250, Height: 120})
	if s.Active() != HandleCornerBR {
		t.Errorf("active = %v, want %v", s.Active(), HandleCornerBR)
	}
}

func TestDragSession_EdgeFlip(t *testing.T) {
	start := Transform{X: 100, Y: 100, Width: 200, Height: 100}
	s := begin(t, start, HandleEdgeRight, V(200, 100))

	got := s.Move(start, PointerEvent{Position: V(-50, 100)})
	assertTransform(t, got, Transform{X: -25, Y: 100, Width: 50, Height: 100})
	if s.Active() != HandleEdgeLeft {
		t.Fatalf("active = %v, want %v", s.Active(), HandleEdgeLeft)
	}

	// The edge under the pointer keeps following it; the far edge stays put.
	got = s.Move(got, PointerEvent{Position: V(-60, 100)})
	if left := got.X - got.Width/2; !approx(left, -60, tol) {
		t.Errorf("left edge = %v, want -60", left)
	}
	if right := got.X + got.Width/2; !approx(right, 0, tol) {
		t.Errorf("right edge = %v, want 0", right)
	}
	if s.Active() != HandleEdgeLeft {
		t.Errorf("active = %v, want %v", s.Active(), HandleEdgeLeft)
	}

	// Crossing back hands the drag to the right edge again.
	got = s.Move(got, PointerEvent{Position: V(100, 100)})
	assertTransform(t, got, Transform{X: 50, Y: 100, Width: 100, Height: 100})
	if s.Active() != HandleEdgeRight {
		t.Errorf("active = %v, want %v", s.Active(), HandleEdgeRight)
	}
}

func TestDragSession_CornerDiagonalFlip(t *testing.T) {
	start := Transform{Width: 100, Height: 100}
	s := begin(t, start, HandleCornerTL, V(-50, -50))

	got := s.Move(start, PointerEvent{Position: V(80, 90)})

	assertTransform(t, got, Transform{X: 65, Y: 70, Width: 30, Height: 40})
	if s.Active() != HandleCornerBR {
		t.Errorf("active = %v, want %v", s.Active(), HandleCornerBR)
	}
}

func TestDragSession_SingleAxisCornerFlip(t *testing.T) {
	tests := []struct {
		name   string
		handle HandleRole
		from   Vec2
		to     Vec2
		want   HandleRole
	}{
		{"tl past right", HandleCornerTL, V(-50, -50), V(80, -60), HandleCornerTR},
		{"tl past bottom", HandleCornerTL, V(-50, -50), V(-60, 80), HandleCornerBL},
		{"br past left", HandleCornerBR, V(50, 50), V(-80, 60), HandleCornerBL},
		{"br past top", HandleCornerBR, V(50, 50), V(60, -80), HandleCornerTR},
		{"tr past left", HandleCornerTR, V(50, -50), V(-80, -60), HandleCornerTL},
		{"bl past top", HandleCornerBL, V(-50, 50), V(-60, -80), HandleCornerTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := Transform{Width: 100, Height: 100}
			s := begin(t, start, tt.handle, tt.from)
			got := s.Move(start, PointerEvent{Position: tt.to})
			if s.Active() != tt.want {
				t.Errorf("active = %v, want %v", s.Active(), tt.want)
			}
			if got.Width < 0 || got.Height < 0 {
				t.Errorf("negative extents: %+v", got)
			}
		})
	}
}

func TestDragSession_RotatedCorner(t *testing.T) {
	start := Transform{Width: 200, Height: 100, Rotation: math.Pi / 2}
	br := start.Corners().BR
	s := begin(t, start, HandleCornerBR, br)

	got := s.Move(start, PointerEvent{Position: br.Add(V(-10, 20))})

	assertTransform(t, got, Transform{X: -5, Y: 10, Width: 220, Height: 110, Rotation: math.Pi / 2})
}

func TestDragSession_RotatedEdge(t *testing.T) {
	// Upside down: the top edge sits at the bottom of the screen.
	start := Transform{Width: 100, Height: 50, Rotation: math.Pi}
	s := begin(t, start, HandleEdgeTop, V(0, 25))

	got := s.Move(start, PointerEvent{Position: V(0, 35)})

	assertTransform(t, got, Transform{X: 0, Y: 5, Width: 100, Height: 60, Rotation: math.Pi})
}

func TestDragSession_MoveIgnoresRotation(t *testing.T) {
	for _, rot := range []float64{0, 0.7, math.Pi / 2, -2.5, 11} {
		start := Transform{X: 3, Y: 4, Width: 50, Height: 20, Rotation: rot}
		s := begin(t, start, HandleMove, V(0, 0))

		got := s.Move(start, PointerEvent{Position: V(13, -7)})

		want := Transform{X: 16, Y: -3, Width: 50, Height: 20, Rotation: rot}
		if got != want {
			t.Errorf("rotation %v: got %+v, want %+v", rot, got, want)
		}
	}
}

func TestDragSession_FromCenter(t *testing.T) {
	start := Transform{Width: 100, Height: 100}
	s := begin(t, start, HandleEdgeRight, V(50, 0))

	got := s.Move(start, PointerEvent{Position: V(60, 0), Modifiers: Modifiers{FromCenter: true}})

	assertTransform(t, got, Transform{Width: 120, Height: 100})
}

func TestDragSession_AspectLockEdges(t *testing.T) {
	start := Transform{Width: 200, Height: 100}
	lock := Modifiers{AspectLock: true}

	tests := []struct {
		name   string
		handle HandleRole
		from   Vec2
		to     Vec2
		mods   Modifiers
		want   Transform
	}{
		{"bottom", HandleEdgeBottom, V(0, 50), V(0, 70), lock, Transform{Y: 10, Width: 240, Height: 120}},
		{"top", HandleEdgeTop, V(0, -50), V(0, -70), lock, Transform{Y: -10, Width: 240, Height: 120}},
		{"right", HandleEdgeRight, V(100, 0), V(150, 0), lock, Transform{X: 25, Width: 250, Height: 125}},
		{"left", HandleEdgeLeft, V(-100, 0), V(-150, 0), lock, Transform{X: -25, Width: 250, Height: 125}},
		{
			"corner from center", HandleCornerBR, V(100, 50), V(130, 55),
			Modifiers{AspectLock: true, FromCenter: true},
			Transform{Width: 260, Height: 130},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := begin(t, start, tt.handle, tt.from)
			got := s.Move(start, PointerEvent{Position: tt.to, Modifiers: tt.mods})
			assertTransform(t, got, tt.want)
		})
	}
}

func TestDragSession_AspectLockCorners(t *testing.T) {
	for _, rot := range []float64{0, 0.3, -1.2, math.Pi} {
		start := Transform{X: 10, Y: 20, Width: 200, Height: 100, Rotation: rot}
		s := begin(t, start, HandleCornerBR, start.Corners().BR)
		cur := start
		path := []Vec2{V(30, 5), V(60, -40), V(-20, 90), V(-400, -300), V(-420, -280), V(500, 10)}
		for i, p := range path {
			cur = s.Move(cur, PointerEvent{Position: start.Corners().BR.Add(p), Modifiers: Modifiers{AspectLock: true}})
			if cur.Height == 0 {
				continue
			}
			if ratio := cur.Width / cur.Height; !approx(ratio, 2, 1e-6) {
				t.Errorf("rotation %v step %d: ratio = %v, want 2 (%+v)", rot, i, ratio, cur)
			}
		}
	}
}

func TestDragSession_Rotate(t *testing.T) {
	start := Transform{Width: 100, Height: 100}
	grip := NewHandleSet(start, DefaultHandleReach).RotateGrip()
	s := begin(t, start, HandleRotate, grip)

	got := s.Move(start, PointerEvent{Position: V(0, -100)})
	if !approx(got.Rotation, 0, tol) {
		t.Errorf("rotation = %v, want 0", got.Rotation)
	}

	got = s.Move(got, PointerEvent{Position: V(100, 0)})
	if !approx(got.Rotation, math.Pi/2, tol) {
		t.Errorf("rotation = %v, want pi/2", got.Rotation)
	}
	if got.Width != 100 || got.Height != 100 || got.X != 0 || got.Y != 0 {
		t.Errorf("rotate changed geometry: %+v", got)
	}
}

func TestDragSession_RotateSnap(t *testing.T) {
	start := Transform{Width: 100, Height: 100}
	s := begin(t, start, HandleRotate, V(0, -62))
	cur := start
	for _, p := range []Vec2{V(37, -80), V(91, 13), V(-12, 70), V(-64, -3)} {
		cur = s.Move(cur, PointerEvent{Position: p, Modifiers: Modifiers{AngleSnap: true}})
		if r := math.Remainder(cur.Rotation, math.Pi/12); !approx(r, 0, tol) {
			t.Errorf("rotation %v not a multiple of 15 degrees", cur.Rotation)
		}
	}
}

func TestDragSession_ZeroDelta(t *testing.T) {
	start := Transform{X: 1, Y: 2, Width: 30, Height: 40, Rotation: 0.4}
	for _, h := range []HandleRole{HandleMove, HandleEdgeRight, HandleCornerTL, HandleRotate} {
		s := begin(t, start, h, V(5, 5))
		if got := s.Move(start, PointerEvent{Position: V(5, 5)}); got != start {
			t.Errorf("%v: got %+v, want unchanged", h, got)
		}
	}
}

func TestDragSession_Unanchored(t *testing.T) {
	start := Transform{X: 100, Y: 100}
	s := NewDragSession(0)
	if err := s.BeginUnanchored(start, HandleCornerBR); err != nil {
		t.Fatal(err)
	}

	got := s.Move(start, PointerEvent{Position: V(101, 101)})
	if got != start {
		t.Fatalf("first move changed transform: %+v", got)
	}

	got = s.Move(got, PointerEvent{Position: V(150, 130)})
	assertTransform(t, got, Transform{X: 125, Y: 115, Width: 50, Height: 30})
}

func TestDragSession_States(t *testing.T) {
	start := Transform{Width: 10, Height: 0}
	s := NewDragSession(0)

	if got := s.Move(start, PointerEvent{Position: V(5, 5)}); got != start {
		t.Errorf("idle move changed transform")
	}
	if err := s.Begin(start, HandleMove, V(0, 0)); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateActive {
		t.Errorf("state = %v, want active", s.State())
	}
	if s.AspectRatio() != 1 {
		t.Errorf("aspect ratio = %v, want 1 for zero height", s.AspectRatio())
	}
	if err := s.Begin(start, HandleRotate, V(0, 0)); err != ErrSessionActive {
		t.Errorf("second Begin = %v, want ErrSessionActive", err)
	}
	s.End()
	if s.State() != StateIdle || s.Active() != HandleNone {
		t.Errorf("End left state %v / %v", s.State(), s.Active())
	}
}

func TestDragSession_IgnoresBadInput(t *testing.T) {
	start := Transform{Width: 10, Height: 10}

	s := begin(t, start, HandleRole(99), V(0, 0))
	if got := s.Move(start, PointerEvent{Position: V(5, 5)}); got != start {
		t.Errorf("unknown handle moved the box: %+v", got)
	}

	s = begin(t, start, HandleMove, V(0, 0))
	if got := s.Move(start, PointerEvent{Position: V(math.NaN(), 1)}); got != start {
		t.Errorf("NaN pointer moved the box: %+v", got)
	}
	if got := s.Move(start, PointerEvent{Position: V(1, 1)}); got.X != 1 || got.Y != 1 {
		t.Errorf("move after NaN sample = %+v", got)
	}
}

func TestDragSession_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	handles := []HandleRole{
		HandleEdgeTop, HandleEdgeRight, HandleEdgeBottom, HandleEdgeLeft,
		HandleCornerTL, HandleCornerTR, HandleCornerBL, HandleCornerBR,
		HandleMove, HandleRotate,
	}

	for run := 0; run < 200; run++ {
		cur := Transform{
			X:        rng.Float64()*400 - 200,
			Y:        rng.Float64()*400 - 200,
			Width:    rng.Float64() * 300,
			Height:   rng.Float64() * 300,
			Rotation: rng.Float64()*4*math.Pi - 2*math.Pi,
		}
		s := begin(t, cur, handles[rng.Intn(len(handles))], cur.Center())
		for step := 0; step < 25; step++ {
			p := V(rng.Float64()*800-400, rng.Float64()*800-400)
			mods := Modifiers{
				AspectLock: rng.Intn(2) == 0,
				FromCenter: rng.Intn(3) == 0,
				AngleSnap:  rng.Intn(2) == 0,
			}
			cur = s.Move(cur, PointerEvent{Position: p, Modifiers: mods})
			if cur.Width < 0 || cur.Height < 0 || !cur.IsFinite() {
				t.Fatalf("run %d step %d: invalid transform %+v", run, step, cur)
			}
		}
	}
}
