// Package layer implements stacked tile grids, their floating entities and
// the masks that dim or hide them.
//
// Coordinates passed to a Layer are layer-local cells. A layer's Position
// places its cell (0,0) in world (or UI) cell space.
package layer

import (
	"slices"

	"github.com/lixenwraith/tilegrid/tile"
)

// Mode selects how tile payloads on a layer are read
type Mode uint8

const (
	// ModeGlyph draws payloads as text with the layer's font
	ModeGlyph Mode = 0
	// ModeTilemap draws payloads as 1-based tilemap indices
	ModeTilemap Mode = 1 << 0
	// ModeAssoc, with ModeTilemap, reads payloads as glyphs and resolves
	// them through the association table
	ModeAssoc Mode = 1 << 1
)

// MaxMasks bounds the masks attached to one layer
const MaxMasks = 16

// Layer is a rectangular grid of tiles plus entities and attached masks
type Layer struct {
	grid     []tile.Tile
	width    int
	height   int
	entities EntityList
	masks    []*Mask

	// Position is the world/UI cell of the layer's (0,0)
	Position tile.Vector2
	// Mode selects glyph or tilemap drawing
	Mode Mode
	// Resource is the font slot (glyph mode) or tilemap slot (tilemap mode)
	Resource int
	// Defaults stamp tiles built by SetChar, SetIndex and WriteString
	Defaults tile.Defaults
}

// New allocates a layer whose cells all hold the empty sentinel
func New(width, height int) *Layer {
	l := &Layer{
		Defaults: tile.StandardDefaults,
	}
	l.Resize(width, height)
	return l
}

// Width returns the layer width in cells
func (l *Layer) Width() int { return l.width }

// Height returns the layer height in cells
func (l *Layer) Height() int { return l.height }

// Resize reallocates the grid and zeroes every cell
// Existing contents are not preserved; callers repopulate after a resize
func (l *Layer) Resize(width, height int) {
	l.width, l.height = max(width, 0), max(height, 0)
	l.grid = make([]tile.Tile, l.width*l.height)
}

// InBounds reports whether (x,y) addresses a cell
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.height
}

// cell returns the tile at (x,y) without bounds checks
func (l *Layer) cell(x, y int) *tile.Tile {
	return &l.grid[y*l.width+x]
}

// Tile returns the tile at (x,y)
func (l *Layer) Tile(x, y int) (tile.Tile, error) {
	if !l.InBounds(x, y) {
		return tile.Tile{}, cellError("cell", x, y, l.width, l.height)
	}
	return *l.cell(x, y), nil
}

// SetTile writes t at (x,y)
func (l *Layer) SetTile(x, y int, t tile.Tile) error {
	if !l.InBounds(x, y) {
		return cellError("cell", x, y, l.width, l.height)
	}
	*l.cell(x, y) = t
	return nil
}

// SetChar writes a glyph tile built from the layer defaults
func (l *Layer) SetChar(x, y int, s string) error {
	return l.SetTile(x, y, l.Defaults.Char(s))
}

// SetIndex writes a tilemap index tile built from the layer defaults
func (l *Layer) SetIndex(x, y int, n int32) error {
	return l.SetTile(x, y, l.Defaults.Indexed(n))
}

// Fill writes t to every cell
func (l *Layer) Fill(t tile.Tile) {
	for i := range l.grid {
		l.grid[i] = t
	}
}

// Clear empties every cell
func (l *Layer) Clear() {
	clear(l.grid)
}

// Masks returns the attached masks in attachment order
// The slice is owned by the layer
func (l *Layer) Masks() []*Mask {
	return l.masks
}

// AttachMask appends m to the layer's masks
func (l *Layer) AttachMask(m *Mask) error {
	if len(l.masks) >= MaxMasks {
		return ErrCapacityExceeded
	}
	l.masks = append(l.masks, m)
	return nil
}

// DetachMask removes m, reporting whether it was attached
func (l *Layer) DetachMask(m *Mask) bool {
	i := slices.Index(l.masks, m)
	if i < 0 {
		return false
	}
	l.masks = slices.Delete(l.masks, i, i+1)
	return true
}

// Entities returns the layer's entity list
func (l *Layer) Entities() *EntityList {
	return &l.entities
}

// AddEntity moves id to the top of this layer's entity list
func (l *Layer) AddEntity(pool *EntityPool, id EntityID) error {
	return pool.Append(&l.entities, id)
}

// Release drops the grid, masks and entity links
// Entities stay allocated in their pool
func (l *Layer) Release(pool *EntityPool) {
	if pool != nil {
		for id := l.entities.head; id != 0; {
			e := pool.Get(id)
			if e == nil || e.list != &l.entities {
				break
			}
			next := e.next
			pool.unlink(e, id)
			id = next
		}
	}
	l.entities = EntityList{}
	l.grid = nil
	l.masks = nil
	l.width, l.height = 0, 0
}
