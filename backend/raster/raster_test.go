package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

func rgbaAt(b *Backend, x, y int) color.RGBA {
	return b.Image().RGBAAt(x, y)
}

// brightest returns the highest red channel inside r
func brightest(b *Backend, r image.Rectangle) uint8 {
	var best uint8
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			best = max(best, rgbaAt(b, x, y).R)
		}
	}
	return best
}

func TestClearAndFill(t *testing.T) {
	b := New(8, 8)
	b.BeginFrame(red)
	assert.Equal(t, red, rgbaAt(b, 7, 7))

	b.FillRect(tile.Rect{X: 2, Y: 2, Width: 2, Height: 2}, color.RGBA{G: 255, A: 255})
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgbaAt(b, 3, 3))
	assert.Equal(t, red, rgbaAt(b, 4, 4))

	// half-transparent black over red halves the red channel
	b.FillRect(tile.Rect{X: 0, Y: 0, Width: 1, Height: 1}, color.RGBA{A: 128})
	got := rgbaAt(b, 0, 0)
	assert.InDelta(t, 127, int(got.R), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestStrokeRect(t *testing.T) {
	b := New(6, 6)
	b.BeginFrame(black)
	b.StrokeRect(tile.Rect{X: 1, Y: 1, Width: 4, Height: 4}, red)

	assert.Equal(t, red, rgbaAt(b, 1, 1))
	assert.Equal(t, red, rgbaAt(b, 4, 4))
	assert.Equal(t, red, rgbaAt(b, 1, 3))
	assert.Equal(t, black, rgbaAt(b, 2, 2), "interior stays untouched")
	assert.Equal(t, black, rgbaAt(b, 5, 5))
}

func TestDrawTextUsesDefaultFace(t *testing.T) {
	b := New(32, 32)
	size := b.MeasureText("AB", nil, 24)
	assert.Equal(t, float32(16), size.X, "inconsolata 8x16 advances 8px per glyph")
	assert.Equal(t, float32(16), size.Y)

	b.BeginFrame(black)
	b.DrawText("A", nil, tile.Vec(0, 0), 24, white)
	assert.Greater(t, brightest(b, image.Rect(0, 0, 8, 16)), uint8(200))
	assert.Equal(t, uint8(0), brightest(b, image.Rect(8, 0, 32, 32)))
}

func TestDrawTextWithLoadedFont(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goregular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

	f, err := Loader{}.LoadFont(path, 20)
	require.NoError(t, err)
	defer f.Close()

	b := New(64, 32)
	wide := b.MeasureText("WWW", f, 20)
	narrow := b.MeasureText("iii", f, 20)
	assert.Greater(t, wide.X, narrow.X, "proportional face")

	_, err = Loader{}.LoadFont(filepath.Join(dir, "missing.ttf"), 20)
	assert.Error(t, err)
	_, err = ParseFont([]byte("not a font"), 20)
	assert.Error(t, err)
}

func writeTilemap(t *testing.T, dir string) string {
	t.Helper()
	// 4x2 tiles of 2x2 pixels; tile n has red channel n*10
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := 0; i < 8; i++ {
		x0, y0 := (i%4)*2, (i/4)*2
		for y := y0; y < y0+2; y++ {
			for x := x0; x < x0+2; x++ {
				img.SetRGBA(x, y, color.RGBA{R: uint8((i + 1) * 10), G: 255, A: 255})
			}
		}
	}
	path := filepath.Join(dir, "tiles.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestDrawTextureScalesAndTints(t *testing.T) {
	tex, err := Loader{}.LoadTexture(writeTilemap(t, t.TempDir()))
	require.NoError(t, err)
	w, h := tex.Size()
	require.Equal(t, 8, w)
	require.Equal(t, 4, h)

	tm := render.NewTilemap(tex, 2, 2)
	require.Equal(t, 8, tm.Count)

	b := New(16, 8)
	b.BeginFrame(black)
	b.DrawTexture(tex, tm.Rect(6), tile.Rect{X: 0, Y: 0, Width: 8, Height: 8}, white)
	assert.Equal(t, color.RGBA{R: 60, G: 255, A: 255}, rgbaAt(b, 7, 7), "tile 6 scaled to 8x8")

	b.DrawTexture(tex, tm.Rect(1), tile.Rect{X: 8, Y: 0, Width: 8, Height: 8}, color.RGBA{R: 255, A: 255})
	assert.Equal(t, color.RGBA{R: 10, A: 255}, rgbaAt(b, 12, 4), "red tint drops green")
}

func TestContextSnapshot(t *testing.T) {
	cfg := render.DefaultConfig()
	cfg.LayerWidth, cfg.LayerHeight = 10, 10
	cfg.FontSize = 16
	b := New(200, 200)
	c := render.NewContext(b, cfg)

	require.NoError(t, c.SetWorldTileChar(0, 0, "A"))
	require.NoError(t, c.SetWorldTileChar(1, 0, "A"))
	require.NoError(t, c.SetWorldMask(1, 0, 100))
	require.NoError(t, c.Frame())

	full := brightest(b, image.Rect(0, 0, 20, 20))
	dim := brightest(b, image.Rect(20, 0, 40, 20))
	assert.Greater(t, full, uint8(200))
	assert.Less(t, dim, full)
	assert.Greater(t, dim, uint8(0))
	assert.Equal(t, uint8(0), brightest(b, image.Rect(40, 0, 200, 200)))

	var buf bytes.Buffer
	require.NoError(t, b.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), decoded.Bounds())
}

func TestCameraZoom(t *testing.T) {
	b := New(40, 40)
	b.BeginFrame(black)
	b.BeginCamera(render.Camera{Target: tile.Vec(10, 10), Zoom: 2})
	b.FillRect(tile.Rect{X: 10, Y: 10, Width: 5, Height: 5}, red)
	b.EndCamera()

	assert.Equal(t, red, rgbaAt(b, 9, 9))
	assert.Equal(t, black, rgbaAt(b, 10, 10))

	b.FillRect(tile.Rect{X: 30, Y: 30, Width: 1, Height: 1}, red)
	assert.Equal(t, red, rgbaAt(b, 30, 30), "camera no longer applied")
}

func TestTilemapLayerThroughContext(t *testing.T) {
	tex, err := Loader{}.LoadTexture(writeTilemap(t, t.TempDir()))
	require.NoError(t, err)

	cfg := render.DefaultConfig()
	cfg.TileSize = 4
	cfg.LayerWidth, cfg.LayerHeight = 2, 1
	b := New(8, 4)
	c := render.NewContext(b, cfg, render.WithStrict(true))
	slot, err := c.AddTilemap(render.NewTilemap(tex, 2, 2))
	require.NoError(t, err)

	world, err := c.World.Layer(0)
	require.NoError(t, err)
	world.Mode = layer.ModeTilemap | layer.ModeAssoc
	world.Resource = slot
	c.Associate("#", 3)
	require.NoError(t, c.SetWorldTileChar(1, 0, "#"))
	require.NoError(t, c.Frame())

	assert.Equal(t, color.RGBA{R: 30, G: 255, A: 255}, rgbaAt(b, 5, 1))
	assert.Equal(t, black, rgbaAt(b, 1, 1))
}
