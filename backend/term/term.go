// Package term renders tile stacks to a terminal through tcell.
//
// One terminal cell is one tile: contexts driving this backend use a tile
// size of 1, so pixel rectangles from the renderer are already in cells.
// Colours with partial alpha are blended over the cell background since
// terminals have no alpha channel.
package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

// Backend draws to a tcell.Screen
type Backend struct {
	screen tcell.Screen
	buf    buffer
	clear  color.RGBA
	cam    render.Camera
	camera bool
}

var _ render.Backend = (*Backend)(nil)

// New wraps an initialized screen
func New(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Screen returns the wrapped screen
func (b *Backend) Screen() tcell.Screen { return b.screen }

// Size returns the current frame size in cells
func (b *Backend) Size() (int, int) { return b.buf.width, b.buf.height }

// Cell returns the composited cell at (x,y) of the last frame
func (b *Backend) Cell(x, y int) (Cell, bool) {
	if !b.buf.inBounds(x, y) {
		return Cell{}, false
	}
	c := *b.buf.at(x, y)
	if !b.buf.touched[y*b.buf.width+x] {
		c.Bg = b.clear
	}
	return c, true
}

func (b *Backend) BeginFrame(c color.RGBA) {
	w, h := b.screen.Size()
	b.buf.resize(w, h)
	b.buf.clear(c)
	b.clear = c
}

func (b *Backend) EndFrame() error {
	b.buf.flush(b.screen, b.clear)
	b.screen.Show()
	return nil
}

func (b *Backend) BeginCamera(cam render.Camera) {
	b.cam = cam
	b.camera = true
}

func (b *Backend) EndCamera() {
	b.camera = false
}

// cellAt maps a position to the cell containing it, through the camera if
// active. Flooring matches layer.EntityCell, so an entity is masked by the
// cell it is drawn in
func (b *Backend) cellAt(p tile.Vector2) (int, int) {
	if b.camera {
		p = b.cam.Apply(p)
	}
	return int(math.Floor(float64(p.X))), int(math.Floor(float64(p.Y)))
}

// cells maps r to a cell range [x0,x1) x [y0,y1), at least one cell wide
func (b *Backend) cells(r tile.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = b.cellAt(tile.Vec(r.X, r.Y))
	scale := float32(1)
	if b.camera {
		scale = b.cam.Scale()
	}
	w := max(int(math.Round(float64(r.Width*scale))), 1)
	h := max(int(math.Round(float64(r.Height*scale))), 1)
	return x0, y0, x0 + w, y0 + h
}

func (b *Backend) FillRect(r tile.Rect, c color.RGBA) {
	x0, y0, x1, y1 := b.cells(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.buf.setBg(x, y, c)
		}
	}
}

// StrokeRect underlines the rectangle's edge cells in c
func (b *Backend) StrokeRect(r tile.Rect, c color.RGBA) {
	x0, y0, x1, y1 := b.cells(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if y == y0 || y == y1-1 || x == x0 || x == x1-1 {
				b.buf.setAttr(x, y, tcell.AttrUnderline, c)
			}
		}
	}
}

// MeasureText returns the display width of s in cells and a height of one
func (b *Backend) MeasureText(s string, _ render.Font, _ float32) tile.Vector2 {
	return tile.Vector2{X: float32(runewidth.StringWidth(s)), Y: 1}
}

func (b *Backend) DrawText(s string, _ render.Font, pos tile.Vector2, _ float32, c color.RGBA) {
	if c.A == 0 {
		return
	}
	// A glyph wider than its tile arrives centred up to half a cell left of
	// it; anchoring on the middle column keeps it starting in that tile
	lead := float32(max(runewidth.StringWidth(s)-1, 0)) / 2
	x, y := b.cellAt(pos.Add(tile.Vec(lead, 0)))
	x -= int(lead)
	prev := -1
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			if prev >= 0 {
				b.buf.combine(prev, y, r)
			}
			continue
		}
		b.buf.setRune(x, y, r, w, c)
		prev = x
		x += w
	}
}

// DrawTexture fills the destination cells with the tint
// Terminals cannot sample textures; tilemap layers show as coloured blocks
func (b *Backend) DrawTexture(_ render.Texture, _, dst tile.Rect, tint color.RGBA) {
	b.FillRect(dst, tint)
}
