// Package raster renders tile stacks into an in-memory image.RGBA.
//
// Text is drawn with golang.org/x/image/font faces (inconsolata by default),
// tilemaps are scaled with nearest-neighbour sampling so pixel art stays
// crisp. Colours from tiles are straight alpha and are converted to
// premultiplied form at the draw call. Camera rotation is not supported.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

// Backend draws into an RGBA image
type Backend struct {
	img    *image.RGBA
	face   font.Face
	cam    render.Camera
	camera bool
}

var _ render.Backend = (*Backend)(nil)

// New allocates a width x height surface
func New(width, height int) *Backend {
	return &Backend{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: inconsolata.Regular8x16,
	}
}

// Image returns the surface; it is redrawn in place every frame
func (b *Backend) Image() *image.RGBA { return b.img }

// WritePNG encodes the current surface
func (b *Backend) WritePNG(w io.Writer) error {
	return png.Encode(w, b.img)
}

// nrgba reinterprets a straight-alpha tile colour for image/draw
func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (b *Backend) BeginFrame(c color.RGBA) {
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(nrgba(c)), image.Point{}, draw.Src)
}

func (b *Backend) EndFrame() error { return nil }

func (b *Backend) BeginCamera(cam render.Camera) {
	b.cam = cam
	b.camera = true
}

func (b *Backend) EndCamera() {
	b.camera = false
}

func (b *Backend) point(p tile.Vector2) tile.Vector2 {
	if b.camera {
		return b.cam.Apply(p)
	}
	return p
}

// rect maps r to integer pixels through the camera
func (b *Backend) rect(r tile.Rect) image.Rectangle {
	p := b.point(tile.Vec(r.X, r.Y))
	scale := float32(1)
	if b.camera {
		scale = b.cam.Scale()
	}
	x0, y0 := round(p.X), round(p.Y)
	return image.Rect(x0, y0, x0+round(r.Width*scale), y0+round(r.Height*scale))
}

func round(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}

func (b *Backend) FillRect(r tile.Rect, c color.RGBA) {
	if c.A == 0 {
		return
	}
	draw.Draw(b.img, b.rect(r), image.NewUniform(nrgba(c)), image.Point{}, draw.Over)
}

// StrokeRect draws a one pixel outline inside r
func (b *Backend) StrokeRect(r tile.Rect, c color.RGBA) {
	if c.A == 0 {
		return
	}
	px := b.rect(r)
	if px.Empty() {
		return
	}
	src := image.NewUniform(nrgba(c))
	edges := []image.Rectangle{
		image.Rect(px.Min.X, px.Min.Y, px.Max.X, px.Min.Y+1),
		image.Rect(px.Min.X, px.Max.Y-1, px.Max.X, px.Max.Y),
		image.Rect(px.Min.X, px.Min.Y+1, px.Min.X+1, px.Max.Y-1),
		image.Rect(px.Max.X-1, px.Min.Y+1, px.Max.X, px.Max.Y-1),
	}
	for _, e := range edges {
		draw.Draw(b.img, e, src, image.Point{}, draw.Over)
	}
}

func (b *Backend) faceFor(f render.Font) font.Face {
	if ff, ok := f.(*Font); ok && ff != nil && ff.face != nil {
		return ff.face
	}
	return b.face
}

// MeasureText returns the advance width and line height of s
// Faces are sized at load time; size is ignored
func (b *Backend) MeasureText(s string, f render.Font, _ float32) tile.Vector2 {
	face := b.faceFor(f)
	m := face.Metrics()
	return tile.Vector2{
		X: float32(font.MeasureString(face, s).Ceil()),
		Y: float32(m.Height.Ceil()),
	}
}

// DrawText draws s with the top of its line box at pos
func (b *Backend) DrawText(s string, f render.Font, pos tile.Vector2, _ float32, c color.RGBA) {
	if c.A == 0 {
		return
	}
	face := b.faceFor(f)
	p := b.point(pos)
	d := font.Drawer{
		Dst:  b.img,
		Src:  image.NewUniform(nrgba(c)),
		Face: face,
		Dot:  fixed.P(round(p.X), round(p.Y)).Add(fixed.Point26_6{Y: face.Metrics().Ascent}),
	}
	d.DrawString(s)
}

// DrawTexture scales src of tex into dst and multiplies it by tint
func (b *Backend) DrawTexture(tex render.Texture, src, dst tile.Rect, tint color.RGBA) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || tint.A == 0 {
		return
	}
	to := b.rect(dst)
	if to.Empty() {
		return
	}
	from := image.Rect(round(src.X), round(src.Y), round(src.X+src.Width), round(src.Y+src.Height)).
		Add(t.img.Bounds().Min)

	scaled := image.NewRGBA(image.Rect(0, 0, to.Dx(), to.Dy()))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), t.img, from, draw.Src, nil)
	tintPremultiplied(scaled, tint)
	draw.Draw(b.img, to, scaled, image.Point{}, draw.Over)
}

// tintPremultiplied multiplies every pixel of img by a straight-alpha tint
func tintPremultiplied(img *image.RGBA, tint color.RGBA) {
	if tint == (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		return
	}
	// premultiply the tint colour by its own alpha once
	tr := uint32(tint.R) * uint32(tint.A) / 255
	tg := uint32(tint.G) * uint32(tint.A) / 255
	tb := uint32(tint.B) * uint32(tint.A) / 255
	ta := uint32(tint.A)
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = uint8(uint32(pix[i+0]) * tr / 255)
		pix[i+1] = uint8(uint32(pix[i+1]) * tg / 255)
		pix[i+2] = uint8(uint32(pix[i+2]) * tb / 255)
		pix[i+3] = uint8(uint32(pix[i+3]) * ta / 255)
	}
}
