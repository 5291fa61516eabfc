package render

import "github.com/lixenwraith/tilegrid/tile"

// Camera is the world-to-screen transform in pixel space
// Screen = (world - Target) * Zoom + Offset, rotated about Offset
type Camera struct {
	Target   tile.Vector2
	Offset   tile.Vector2
	Zoom     float32
	Rotation float32 // degrees
}

// NewCamera returns an identity camera
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// SetTarget places the target at a cell-space position
func (c *Camera) SetTarget(cell tile.Vector2, tileSize float32) {
	c.Target = cell.Scale(tileSize)
}

// SetOffset places the offset at a cell-space position
func (c *Camera) SetOffset(cell tile.Vector2, tileSize float32) {
	c.Offset = cell.Scale(tileSize)
}

// ShiftTarget moves the target by a cell-space delta
func (c *Camera) ShiftTarget(delta tile.Vector2, tileSize float32) {
	c.Target = c.Target.Add(delta.Scale(tileSize))
}

// ShiftOffset moves the offset by a cell-space delta
func (c *Camera) ShiftOffset(delta tile.Vector2, tileSize float32) {
	c.Offset = c.Offset.Add(delta.Scale(tileSize))
}

// Apply maps a world pixel position to screen pixels, ignoring rotation
// Backends without a rotation primitive use this directly
func (c Camera) Apply(p tile.Vector2) tile.Vector2 {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return p.Sub(c.Target).Scale(zoom).Add(c.Offset)
}

// Scale returns the effective zoom, treating 0 as 1
func (c Camera) Scale() float32 {
	if c.Zoom == 0 {
		return 1
	}
	return c.Zoom
}
