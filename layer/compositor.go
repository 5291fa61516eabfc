package layer

import "github.com/lixenwraith/tilegrid/tile"

// Policy reduces every mask applying to a cell into one visibility byte
// index addresses the queried layer in s; x,y are layer-local cells
type Policy interface {
	Visibility(s *Stack, index int, x, y int, query Target) uint8
}

// Compositor is the attached-mask policy
// Masks on the queried layer always apply; masks on other layers of the same
// stack apply when their Reach covers the distance to the queried layer.
// Opacity loss accumulates by subtraction: each mask removes 255-value from a
// running 255, and the first mask to reach 0 ends the scan
type Compositor struct {
	// MaskEmptyCells lifts the short-circuit that reports empty grid cells,
	// and entities above them, as fully opaque
	MaskEmptyCells bool
}

var _ Policy = Compositor{}

// Layer computes visibility from the masks attached to l only
func (c Compositor) Layer(l *Layer, x, y int, query Target) uint8 {
	if !c.applies(l, x, y) {
		return Opaque
	}
	rest, hidden := applyMasks(l.masks, x, y, query, int(Opaque))
	if hidden {
		return 0
	}
	return uint8(rest)
}

// Visibility computes visibility for layer index of s, including masks
// propagated from neighbouring layers
func (c Compositor) Visibility(s *Stack, index int, x, y int, query Target) uint8 {
	l, err := s.Layer(index)
	if err != nil {
		return Opaque
	}
	if !c.applies(l, x, y) {
		return Opaque
	}

	value, hidden := applyMasks(l.masks, x, y, query, int(Opaque))
	if hidden {
		return 0
	}

	ox, oy := l.Position.Cell()
	wx, wy := x+ox, y+oy
	for d := 1; index-d >= 0 || index+d < len(s.layers); d++ {
		// Owner below the queried layer reaches up by d, owner above reaches down
		if j := index - d; j >= 0 {
			if value, hidden = applyOwner(s.layers[j], d, wx, wy, query, value); hidden {
				return 0
			}
		}
		if j := index + d; j < len(s.layers) {
			if value, hidden = applyOwner(s.layers[j], -d, wx, wy, query, value); hidden {
				return 0
			}
		}
	}
	return uint8(value)
}

// applies reports whether masks can affect (x,y) at all
func (c Compositor) applies(l *Layer, x, y int) bool {
	if !l.InBounds(x, y) {
		return false
	}
	return c.MaskEmptyCells || !l.cell(x, y).Empty()
}

// applyOwner applies the reaching masks of owner to world cell (wx,wy)
// d is the signed distance from owner to the queried layer
func applyOwner(owner *Layer, d, wx, wy int, query Target, value int) (int, bool) {
	if owner == nil || len(owner.masks) == 0 {
		return value, false
	}
	ox, oy := owner.Position.Cell()
	x, y := wx-ox, wy-oy
	if !owner.InBounds(x, y) {
		return value, false
	}
	for _, m := range owner.masks {
		if !m.Reach.covers(d) {
			continue
		}
		if value = applyMask(m, x, y, query, value); value <= 0 {
			return 0, true
		}
	}
	return value, false
}

// applyMasks folds masks over value, reporting full transparency
func applyMasks(masks []*Mask, x, y int, query Target, value int) (int, bool) {
	for _, m := range masks {
		if value = applyMask(m, x, y, query, value); value <= 0 {
			return 0, true
		}
	}
	return value, false
}

// applyMask subtracts the opacity lost to m at layer cell (x,y)
func applyMask(m *Mask, x, y int, query Target, value int) int {
	if m.Targets&query == 0 {
		return value
	}
	mv, ok := m.At(x+m.Offset.X, y+m.Offset.Y)
	if !ok {
		return value
	}
	return value - (int(Opaque) - int(mv))
}

// EntityCell converts an absolute entity position to a layer-local cell
func EntityCell(l *Layer, pos tile.Vector2) (int, int) {
	return pos.Sub(l.Position).Cell()
}
