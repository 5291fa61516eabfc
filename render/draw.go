package render

import (
	"fmt"

	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/tile"
)

// DrawStack draws every layer of s from index 0 upward
func (c *Context) DrawStack(s *layer.Stack) error {
	var first error
	for i := range s.Len() {
		if err := c.DrawLayer(s, i); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DrawLayer draws layer index of s: the grid in row-major order, then its
// entities in list order
// Draw problems never abort the pass; the first one is returned in strict
// mode and logged otherwise
func (c *Context) DrawLayer(s *layer.Stack, index int) error {
	l, err := s.Layer(index)
	if err != nil {
		return c.check("draw layer", err)
	}

	p := c.painter(l)
	var first error
	if p.missing {
		if c.strict || c.firstMissing(l) {
			first = c.check("draw layer", fmt.Errorf("%w: layer %d slot %d", ErrNoTilemap, index, l.Resource))
		}
	} else {
		delete(c.missing, l)
	}

	ts := c.cfg.TileSize
	for y := 0; y < l.Height(); y++ {
		for x := 0; x < l.Width(); x++ {
			c.stats.CellsVisited++
			t, _ := l.Tile(x, y)
			if t.Empty() {
				continue
			}
			vis := c.policy.Visibility(s, index, x, y, layer.TargetGrid)
			pos := l.Position.Add(tile.Vec(float32(x), float32(y))).Scale(ts)
			if p.draw(t, pos, vis) {
				c.stats.CellsDrawn++
			} else {
				c.stats.CellsMasked++
			}
		}
	}

	err = c.Entities.Each(l.Entities(), func(_ layer.EntityID, e *layer.Entity) {
		if e.Tile.Empty() {
			return
		}
		ex, ey := layer.EntityCell(l, e.Position)
		vis := c.policy.Visibility(s, index, ex, ey, layer.TargetEntity)
		if p.draw(e.Tile, e.Position.Scale(ts), vis) {
			c.stats.EntitiesDrawn++
		} else {
			c.stats.CellsMasked++
		}
	})
	if err = c.check("draw entities", err); err != nil && first == nil {
		first = err
	}
	return first
}

// painter holds the per-layer resources resolved once before the cell loop
type painter struct {
	c       *Context
	mode    layer.Mode
	font    Font
	tilemap *Tilemap
	missing bool
}

// firstMissing reports whether l's empty slot is new since the last log
// A lenient context logs a missing tilemap once, not every frame
func (c *Context) firstMissing(l *layer.Layer) bool {
	if slot, ok := c.missing[l]; ok && slot == l.Resource {
		return false
	}
	c.missing[l] = l.Resource
	return true
}

func (c *Context) painter(l *layer.Layer) painter {
	p := painter{c: c, mode: l.Mode}
	if l.Mode&layer.ModeTilemap != 0 {
		p.tilemap = c.Tilemap(l.Resource)
		p.missing = p.tilemap == nil
	} else {
		p.font = c.Font(l.Resource)
	}
	return p
}

// draw issues the primitives for one tile at pixel position pos
// Returns false when visibility leaves nothing to draw
func (p painter) draw(t tile.Tile, pos tile.Vector2, vis uint8) bool {
	bg := ScaleAlpha(t.Background, vis)
	fg := ScaleAlpha(t.Foreground, vis)
	if bg.A == 0 && fg.A == 0 {
		return false
	}

	c := p.c
	b := c.backend
	ts := c.cfg.TileSize
	cell := tile.Rect{X: pos.X, Y: pos.Y, Width: ts, Height: ts}

	if bg.A != 0 {
		b.FillRect(cell, bg)
		c.stats.DrawCalls++
	}
	if c.cfg.GridOutline {
		b.StrokeRect(cell, c.cfg.OutlineColor)
		c.stats.DrawCalls++
	}
	if fg.A == 0 {
		return true
	}

	if p.mode&layer.ModeTilemap != 0 {
		if p.tilemap == nil {
			return true
		}
		index := t.Index.Int()
		if p.mode&layer.ModeAssoc != 0 {
			index = c.Assoc.Resolve(t.Index)
		}
		b.DrawTexture(p.tilemap.Texture, p.tilemap.Rect(index), cell.Translate(t.Shift), fg)
		c.stats.DrawCalls++
		return true
	}

	s := t.Index.String()
	size := b.MeasureText(s, p.font, c.cfg.FontSize)
	at := tile.Vector2{
		X: pos.X + (ts-size.X)/2,
		Y: pos.Y + (ts-size.Y)/2,
	}.Add(t.Shift)
	b.DrawText(s, p.font, at, c.cfg.FontSize, fg)
	c.stats.DrawCalls++
	return true
}
