package term

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tilegrid/render"
)

// Cell is one composited terminal cell
type Cell struct {
	Rune  rune
	Comb  []rune
	Fg    color.RGBA
	Bg    color.RGBA
	Attrs tcell.AttrMask
	// cont marks the right half of a wide rune
	cont bool
}

// buffer composites a frame before it is flushed to the screen
// Untouched cells take the frame's clear colour at flush
type buffer struct {
	cells   []Cell
	touched []bool
	width   int
	height  int
}

// resize adjusts dimensions, reallocating only when capacity is short
func (b *buffer) resize(width, height int) {
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
		b.touched = make([]bool, size)
	} else {
		b.cells = b.cells[:size]
		b.touched = b.touched[:size]
	}
	b.width = width
	b.height = height
}

// clear resets every cell to bg using exponential copy
func (b *buffer) clear(bg color.RGBA) {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Fg: bg, Bg: bg}
	b.touched[0] = false
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
	for filled := 1; filled < len(b.touched); filled *= 2 {
		copy(b.touched[filled:], b.touched[:filled])
	}
}

func (b *buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *buffer) at(x, y int) *Cell {
	return &b.cells[y*b.width+x]
}

// setBg blends c over the background of (x,y)
func (b *buffer) setBg(x, y int, c color.RGBA) {
	if !b.inBounds(x, y) || c.A == 0 {
		return
	}
	idx := y*b.width + x
	b.cells[idx].Bg = render.Blend(b.cells[idx].Bg, c)
	b.touched[idx] = true
}

// setRune writes r with fg blended against the cell background
// A wide rune claims the next cell as its continuation
func (b *buffer) setRune(x, y int, r rune, width int, fg color.RGBA) {
	if !b.inBounds(x, y) {
		return
	}
	dst := b.at(x, y)
	dst.Rune = r
	dst.Comb = nil
	dst.Fg = render.Blend(dst.Bg, fg)
	dst.cont = false
	if width == 2 && b.inBounds(x+1, y) {
		next := b.at(x+1, y)
		next.Rune = 0
		next.Comb = nil
		next.cont = true
	}
}

// combine attaches a zero-width rune to the cell at (x,y)
func (b *buffer) combine(x, y int, r rune) {
	if !b.inBounds(x, y) {
		return
	}
	dst := b.at(x, y)
	dst.Comb = append(dst.Comb, r)
}

// setAttr ORs attrs into (x,y) and recolours its foreground
func (b *buffer) setAttr(x, y int, attrs tcell.AttrMask, fg color.RGBA) {
	if !b.inBounds(x, y) {
		return
	}
	dst := b.at(x, y)
	dst.Attrs |= attrs
	if dst.Rune == 0 {
		dst.Rune = ' '
	}
	dst.Fg = render.Blend(dst.Bg, fg)
}

// flush writes the buffer to screen
func (b *buffer) flush(screen tcell.Screen, clear color.RGBA) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			idx := y*b.width + x
			c := &b.cells[idx]
			if c.cont {
				continue
			}
			bg := c.Bg
			if !b.touched[idx] {
				bg = clear
			}
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.
				Foreground(toColor(c.Fg)).
				Background(toColor(bg)).
				Attributes(c.Attrs)
			screen.SetContent(x, y, r, c.Comb, style)
		}
	}
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
