package layer

import (
	"image/color"

	"github.com/rivo/uniseg"
)

// WriteString writes s one grapheme cluster per cell starting at (x,y)
// Clusters longer than a tile payload are truncated; writing stops at the
// layer's right edge. Returns the number of cells written
func (l *Layer) WriteString(x, y int, s string, fg, bg color.RGBA) (int, error) {
	if !l.InBounds(x, y) {
		return 0, cellError("cell", x, y, l.width, l.height)
	}
	n := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() && x+n < l.width {
		t := l.Defaults.Char(g.Str())
		t.Foreground = fg
		t.Background = bg
		*l.cell(x+n, y) = t
		n++
	}
	return n, nil
}
