package engine

import "math"

// Transform is the placement of one element.
// X and Y are the box center (not the top-left corner), Width and Height are
// extents along the box's own rotated axes, and Rotation is in radians. The
// engine never wraps Rotation; display wrapping is a host concern.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Corners holds the four screen-space corners of a rotated box.
type Corners struct {
	TL Vec2 `json:"tl"`
	TR Vec2 `json:"tr"`
	BR Vec2 `json:"br"`
	BL Vec2 `json:"bl"`
}

// Center returns the box center.
func (t Transform) Center() Vec2 {
	return Vec2{X: t.X, Y: t.Y}
}

// Corners rotates the half-extents by Rotation and translates them by the center.
func (t Transform) Corners() Corners {
	m := Placement(t)
	hw, hh := t.Width/2, t.Height/2
	return Corners{
		TL: m.TransformPoint(Vec2{-hw, -hh}),
		TR: m.TransformPoint(Vec2{hw, -hh}),
		BR: m.TransformPoint(Vec2{hw, hh}),
		BL: m.TransformPoint(Vec2{-hw, hh}),
	}
}

// Local returns the box body in its own frame, centered on the origin.
func (t Transform) Local() Rect {
	w, h := math.Abs(t.Width), math.Abs(t.Height)
	return Rect{X: -w / 2, Y: -h / 2, Width: w, Height: h}
}

// Bounds returns the axis-aligned bounding rect of the rotated box.
func (t Transform) Bounds() Rect {
	return Placement(t).TransformRect(t.Local())
}

// Contains reports whether p lies inside the rotated box body.
func (t Transform) Contains(p Vec2) bool {
	return t.Local().Contains(t.ToLocal(p))
}

// ToLocal maps a host-space point into the box's local frame.
func (t Transform) ToLocal(p Vec2) Vec2 {
	return Placement(t).Invert().TransformPoint(p)
}

// Translate returns t moved by d.
func (t Transform) Translate(d Vec2) Transform {
	t.X += d.X
	t.Y += d.Y
	return t
}

// IsFinite reports whether every field is a finite number.
func (t Transform) IsFinite() bool {
	return isFinite(t.X) && isFinite(t.Y) &&
		isFinite(t.Width) && isFinite(t.Height) &&
		isFinite(t.Rotation)
}

// aspectRatioOf returns width/height, or 1 when either extent is close to zero.
func aspectRatioOf(width, height float64) float64 {
	const eps = 1e-9
	if math.Abs(height) < eps || math.Abs(width) < eps {
		return 1
	}
	return math.Abs(width / height)
}
