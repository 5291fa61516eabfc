package layer

import "image"

// Target selects which draw passes a mask applies to
// Masks are bitfields so one mask can cover grid cells and entities at once
type Target uint8

const (
	TargetNone   Target = 0
	TargetGrid   Target = 1 << 0
	TargetEntity Target = 1 << 1
	TargetAll    Target = TargetGrid | TargetEntity
)

// Opaque is the mask value that leaves a cell untouched
const Opaque uint8 = 255

// Unlimited extends a Reach to the bound of the stack
const Unlimited = -1

// Reach is the cross-layer extent of a mask
// Above counts layers with a higher stack index (drawn later), Below counts
// layers with a lower index. Zero keeps the mask on its own layer
type Reach struct {
	Above int
	Below int
}

// covers reports whether a layer at signed distance d from the owner is hit
func (r Reach) covers(d int) bool {
	switch {
	case d > 0:
		return r.Above == Unlimited || d <= r.Above
	case d < 0:
		return r.Below == Unlimited || -d <= r.Below
	default:
		return true
	}
}

// Mask is a per-cell opacity grid attached to one or more layers
// 0 hides the cell, 255 leaves it untouched
type Mask struct {
	cells  []uint8
	width  int
	height int

	// Offset is added to a layer-local cell to address the mask
	Offset image.Point
	// Targets selects grid and/or entity passes
	Targets Target
	// Reach extends the mask to neighbouring layers in the owner's stack
	Reach Reach
}

// NewMask allocates a fully opaque mask
func NewMask(width, height int, targets Target, offset image.Point) *Mask {
	width, height = max(width, 0), max(height, 0)
	m := &Mask{
		cells:   make([]uint8, width*height),
		width:   width,
		height:  height,
		Offset:  offset,
		Targets: targets,
	}
	m.Fill(Opaque)
	return m
}

// Width returns the mask width in cells
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in cells
func (m *Mask) Height() int { return m.height }

// Resize reallocates the mask, keeping the overlapping cells
// Cells gained by growing start opaque
func (m *Mask) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	old, ow := m.cells, m.width
	m.cells = make([]uint8, width*height)
	m.width, m.height = width, height
	m.Fill(Opaque)
	for y := 0; y < min(height, len(old)/max(ow, 1)); y++ {
		copy(m.cells[y*width:y*width+min(width, ow)], old[y*ow:])
	}
}

// Contains reports whether (x,y) is a mask cell
func (m *Mask) Contains(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// At returns the opacity at (x,y) in mask space
func (m *Mask) At(x, y int) (uint8, bool) {
	if !m.Contains(x, y) {
		return 0, false
	}
	return m.cells[y*m.width+x], true
}

// Set writes the opacity at (x,y) in mask space
func (m *Mask) Set(x, y int, v uint8) error {
	if !m.Contains(x, y) {
		return cellError("mask", x, y, m.width, m.height)
	}
	m.cells[y*m.width+x] = v
	return nil
}

// Fill sets every cell to v using exponential copy
func (m *Mask) Fill(v uint8) {
	if len(m.cells) == 0 {
		return
	}
	m.cells[0] = v
	for filled := 1; filled < len(m.cells); filled *= 2 {
		copy(m.cells[filled:], m.cells[:filled])
	}
}

// FillRect sets the cells of r (mask space) to v, clipped to the mask
func (m *Mask) FillRect(r image.Rectangle, v uint8) {
	r = r.Intersect(image.Rect(0, 0, m.width, m.height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.cells[y*m.width : (y+1)*m.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}
