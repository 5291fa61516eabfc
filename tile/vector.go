package tile

import "math"

// Vector2 is a 2D vector in cell or pixel space depending on context
type Vector2 struct {
	X, Y float32
}

// Vec returns a Vector2 from two floats
func Vec(x, y float32) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns v + o
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s on both axes
func (v Vector2) Scale(s float32) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Cell floors both components to integer cell coordinates
// Flooring keeps negative fractional positions out of cell 0
func (v Vector2) Cell() (int, int) {
	return int(math.Floor(float64(v.X))), int(math.Floor(float64(v.Y)))
}

// Rect is an axis-aligned rectangle in pixel space
type Rect struct {
	X, Y, Width, Height float32
}

// Translate returns r moved by v
func (r Rect) Translate(v Vector2) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}
