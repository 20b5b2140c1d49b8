package engine

import "math"

// side is a bit set of box edges.
type side uint8

const (
	sideTop side = 1 << iota
	sideRight
	sideBottom
	sideLeft

	sidesVertical   = sideTop | sideBottom
	sidesHorizontal = sideLeft | sideRight
)

// offsets are signed displacements of each edge along the box's rotated axes.
// Positive values move an edge right (left/right) or down (top/bottom) in the
// box frame. set records which edges were given explicitly.
type offsets struct {
	top, right, bottom, left float64
	set                      side
}

func (o offsets) has(s side) bool {
	return o.set&s != 0
}

func (o *offsets) put(s side, v float64) {
	switch s {
	case sideTop:
		o.top = v
	case sideRight:
		o.right = v
	case sideBottom:
		o.bottom = v
	case sideLeft:
		o.left = v
	}
	o.set |= s
}

// growX is the width change implied by the horizontal offsets.
func (o offsets) growX() float64 {
	if o.has(sideRight) {
		return o.right
	}
	return -o.left
}

// growY is the height change implied by the vertical offsets.
func (o offsets) growY() float64 {
	if o.has(sideBottom) {
		return o.bottom
	}
	return -o.top
}

// resizeResult is the outcome of one resize step.
type resizeResult struct {
	transform Transform
	flippedX  bool
	flippedY  bool
	// pointerX and pointerY place the pointer relative to the new box:
	// -1 beyond the left/top edge, 1 beyond the right/bottom edge, 0 within.
	pointerX int
	pointerY int
}

// resize moves the edges of t by o and re-derives center and extents from the
// adjusted corners. The returned extents are never negative; a crossed edge is
// reported through flippedX / flippedY instead.
func resize(t Transform, o offsets, mods Modifiers, aspectRatio float64, pointer Vec2) resizeResult {
	cos := math.Cos(t.Rotation)
	sin := math.Sin(t.Rotation)

	if mods.AspectLock {
		o = lockAspect(o, t.Width, t.Height, aspectRatio, mods.FromCenter)
	}

	top, right, bottom, left := o.top, o.right, o.bottom, o.left
	if mods.FromCenter && !mods.AspectLock {
		top, bottom = top-bottom, bottom-top
		left, right = left-right, right-left
	}

	ux := Vec2{cos, sin}
	uy := Vec2{-sin, cos}

	c := t.Corners()
	tl := c.TL.Add(ux.Scale(left)).Add(uy.Scale(top))
	tr := c.TR.Add(ux.Scale(right)).Add(uy.Scale(top))
	br := c.BR.Add(ux.Scale(right)).Add(uy.Scale(bottom))
	bl := c.BL.Add(ux.Scale(left)).Add(uy.Scale(bottom))

	// Un-rotate the edges.
	l := tl.Dot(ux)
	tp := tl.Dot(uy)
	r := tr.Dot(ux)
	b := bl.Dot(uy)

	res := resizeResult{
		flippedX: l > r,
		flippedY: tp > b,
	}

	center := tl.Add(tr).Add(br).Add(bl).Scale(0.25)
	res.transform = Transform{
		X:        center.X,
		Y:        center.Y,
		Width:    tr.Sub(tl).Length(),
		Height:   tr.Sub(br).Length(),
		Rotation: t.Rotation,
	}

	px, py := ProjectOntoRotatedAxes(pointer.Sub(center), cos, sin)
	res.pointerX = outside(px, res.transform.Width/2)
	res.pointerY = outside(py, res.transform.Height/2)

	return res
}

func outside(v, half float64) int {
	switch {
	case v < -half:
		return -1
	case v > half:
		return 1
	}
	return 0
}

// lockAspect fills in the offsets that keep width/height equal to ratio.
func lockAspect(o offsets, width, height, ratio float64, fromCenter bool) offsets {
	if ratio <= 0 || !isFinite(ratio) {
		ratio = 1
	}

	switch {
	case fromCenter:
		// Symmetric about the center: each side moves by half the size change.
		dx, dy := o.growX(), o.growY()
		if math.Abs(dx) >= math.Abs(dy) {
			dy = ((width+2*dx)/ratio - height) / 2
		} else {
			dx = ((height+2*dy)*ratio - width) / 2
		}
		return offsets{top: -dy, right: dx, bottom: dy, left: -dx, set: sidesVertical | sidesHorizontal}

	case o.set&sidesHorizontal == 0 && o.set&sidesVertical != 0:
		// Edge on the vertical axis: widen both sides evenly.
		newHeight := height + o.bottom - o.top
		dx := newHeight*ratio - width
		o.put(sideLeft, -dx/2)
		o.put(sideRight, dx/2)
		return o

	case o.set&sidesVertical == 0 && o.set&sidesHorizontal != 0:
		newWidth := width + o.right - o.left
		dy := newWidth/ratio - height
		o.put(sideTop, -dy/2)
		o.put(sideBottom, dy/2)
		return o

	case o.set&sidesVertical != 0 && o.set&sidesHorizontal != 0:
		// Corner: the axis dragged further drives, the other follows on the
		// side the active corner already owns.
		dx, dy := o.growX(), o.growY()
		if math.Abs(dx) >= math.Abs(dy) {
			dy = (width+dx)/ratio - height
			if o.has(sideTop) {
				o.put(sideTop, -dy)
			} else {
				o.put(sideBottom, dy)
			}
		} else {
			dx = (height+dy)*ratio - width
			if o.has(sideLeft) {
				o.put(sideLeft, -dx)
			} else {
				o.put(sideRight, dx)
			}
		}
		return o
	}
	return o
}
