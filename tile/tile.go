// Package tile defines the renderable state of a single grid cell and the
// character to tilemap index association table.
//
// A cell stores a 4-byte payload that is read either as UTF-8 glyph bytes or
// as a signed 32-bit tilemap index. The payload carries no tag: the owning
// layer's mode decides the interpretation. An all-zero payload is the empty
// cell in both readings.
package tile

import (
	"encoding/binary"
	"image/color"
)

// IndexSize is the payload width shared by glyph and index readings
const IndexSize = 4

// Index is the untagged glyph-or-index payload of a tile
type Index [IndexSize]byte

// Glyph builds a payload from up to 4 bytes of s, stopping at the first NUL
// Longer strings are truncated; callers pass a single UTF-8 code point
func Glyph(s string) Index {
	var ix Index
	for i := 0; i < IndexSize && i < len(s); i++ {
		if s[i] == 0 {
			break
		}
		ix[i] = s[i]
	}
	return ix
}

// Number builds a payload holding a tilemap index
func Number(n int32) Index {
	var ix Index
	binary.LittleEndian.PutUint32(ix[:], uint32(n))
	return ix
}

// Int reads the payload as a tilemap index
func (ix Index) Int() int32 {
	return int32(binary.LittleEndian.Uint32(ix[:]))
}

// String reads the payload as glyph bytes up to the first NUL
func (ix Index) String() string {
	n := 0
	for n < IndexSize && ix[n] != 0 {
		n++
	}
	return string(ix[:n])
}

// Empty reports whether the payload is the skip-drawing sentinel
func (ix Index) Empty() bool {
	return ix == Index{}
}

// Tile is the renderable state of one cell or entity
type Tile struct {
	Index      Index
	Shift      Vector2 // pixel offset applied to the glyph or tilemap blit
	Foreground color.RGBA
	Background color.RGBA
	Visibility uint8
}

// Empty reports whether the tile is skipped by the renderer
func (t Tile) Empty() bool {
	return t.Index.Empty()
}

// Defaults holds the colours and visibility stamped on newly built tiles
type Defaults struct {
	Foreground color.RGBA
	Background color.RGBA
	Visibility uint8
}

// StandardDefaults is white on black with visibility 0
var StandardDefaults = Defaults{
	Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	Background: color.RGBA{A: 255},
}

// New builds a tile from a payload using the given defaults
func (d Defaults) New(ix Index) Tile {
	return Tile{
		Index:      ix,
		Foreground: d.Foreground,
		Background: d.Background,
		Visibility: d.Visibility,
	}
}

// Char builds a glyph tile
func (d Defaults) Char(s string) Tile {
	return d.New(Glyph(s))
}

// Indexed builds a tilemap index tile
func (d Defaults) Indexed(n int32) Tile {
	return d.New(Number(n))
}

// Char builds a glyph tile with StandardDefaults
func Char(s string) Tile {
	return StandardDefaults.Char(s)
}

// Indexed builds a tilemap index tile with StandardDefaults
func Indexed(n int32) Tile {
	return StandardDefaults.Indexed(n)
}
