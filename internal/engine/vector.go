package engine

import "math"

// Vec2 is a point or displacement in host coordinate space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale multiplies both components by f.
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rotate rotates v around the origin by angle radians.
// Positive angles turn clockwise on screen (y grows downward).
func (v Vec2) Rotate(angle float64) Vec2 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// ProjectOntoRotatedAxes expresses v in a frame rotated by the angle whose
// cosine and sine are given. alongX is the component along the rotated x axis
// and alongY along the rotated y axis.
func ProjectOntoRotatedAxes(v Vec2, cos, sin float64) (alongX, alongY float64) {
	return v.X*cos + v.Y*sin, v.Y*cos - v.X*sin
}

// Mod returns n modulo m in the range [0, m), also for negative n.
func Mod(n, m int) int {
	return ((n % m) + m) % m
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// nanVec is the "no pointer seen yet" sentinel.
var nanVec = Vec2{X: math.NaN(), Y: math.NaN()}
