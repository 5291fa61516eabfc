package layer

import (
	"image"

	"github.com/lixenwraith/tilegrid/tile"
)

// Border holds the tiles of a framed rectangle
// An empty Fill leaves the interior untouched
type Border struct {
	TopLeft, Top, TopRight          tile.Tile
	Left, Fill, Right               tile.Tile
	BottomLeft, Bottom, BottomRight tile.Tile
}

// CharBorder is a Border described by glyphs
type CharBorder struct {
	TopLeft, Top, TopRight          string
	Left, Fill, Right               string
	BottomLeft, Bottom, BottomRight string
}

// Box drawing presets
var (
	BoxLight  = CharBorder{"┌", "─", "┐", "│", "", "│", "└", "─", "┘"}
	BoxDouble = CharBorder{"╔", "═", "╗", "║", "", "║", "╚", "═", "╝"}
	BoxASCII  = CharBorder{"+", "-", "+", "|", "", "|", "+", "-", "+"}
)

// Tiles converts glyphs to tiles using d
func (c CharBorder) Tiles(d tile.Defaults) Border {
	return Border{
		TopLeft: d.Char(c.TopLeft), Top: d.Char(c.Top), TopRight: d.Char(c.TopRight),
		Left: d.Char(c.Left), Fill: d.Char(c.Fill), Right: d.Char(c.Right),
		BottomLeft: d.Char(c.BottomLeft), Bottom: d.Char(c.Bottom), BottomRight: d.Char(c.BottomRight),
	}
}

// DrawBorder frames the inclusive cell rectangle r.Min..r.Max
// Cells outside the layer are dropped; the first drop is reported after the
// in-bounds cells are written
func (l *Layer) DrawBorder(r image.Rectangle, b Border) error {
	r = r.Canon()
	width := r.Dx() + 1
	height := r.Dy() + 1

	var first error
	put := func(x, y int, t tile.Tile) {
		if err := l.SetTile(x, y, t); err != nil && first == nil {
			first = err
		}
	}

	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			x, y := r.Min.X+j, r.Min.Y+i
			switch {
			case i == 0 && j == 0:
				put(x, y, b.TopLeft)
			case i == 0 && j == width-1:
				put(x, y, b.TopRight)
			case i == height-1 && j == 0:
				put(x, y, b.BottomLeft)
			case i == height-1 && j == width-1:
				put(x, y, b.BottomRight)
			case i == 0:
				put(x, y, b.Top)
			case i == height-1:
				put(x, y, b.Bottom)
			case j == 0:
				put(x, y, b.Left)
			case j == width-1:
				put(x, y, b.Right)
			case !b.Fill.Empty():
				put(x, y, b.Fill)
			}
		}
	}
	return first
}

// DrawCharBorder frames r with glyphs stamped by the layer defaults
func (l *Layer) DrawCharBorder(r image.Rectangle, c CharBorder) error {
	return l.DrawBorder(r, c.Tiles(l.Defaults))
}
