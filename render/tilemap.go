package render

import "github.com/lixenwraith/tilegrid/tile"

// Tilemap slices a texture into equally sized tiles addressed from 1
type Tilemap struct {
	Texture    Texture
	TileWidth  int
	TileHeight int
	Count      int
}

// NewTilemap derives the tile count from the texture size
// Partial tiles at the right and bottom edges are not addressable
func NewTilemap(tex Texture, tileWidth, tileHeight int) *Tilemap {
	tm := &Tilemap{
		Texture:    tex,
		TileWidth:  max(tileWidth, 1),
		TileHeight: max(tileHeight, 1),
	}
	if tex != nil {
		w, h := tex.Size()
		tm.Count = (w / tm.TileWidth) * (h / tm.TileHeight)
	}
	return tm
}

// PerRow returns the number of tiles in one texture row
func (tm *Tilemap) PerRow() int {
	if tm.Texture == nil {
		return 0
	}
	w, _ := tm.Texture.Size()
	return w / tm.TileWidth
}

// Rect returns the source rectangle of a 1-based tile index
// Index 0 and indices past Count resolve to the tile-sized rectangle at the
// origin
func (tm *Tilemap) Rect(index int32) tile.Rect {
	tw, th := float32(tm.TileWidth), float32(tm.TileHeight)
	perRow := tm.PerRow()
	if index <= 0 || int(index) > tm.Count || perRow == 0 {
		return tile.Rect{Width: tw, Height: th}
	}
	i := int(index) - 1
	return tile.Rect{
		X:      float32(i%perRow) * tw,
		Y:      float32(i/perRow) * th,
		Width:  tw,
		Height: th,
	}
}
