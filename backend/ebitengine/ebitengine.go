// Package ebitengine renders tile stacks in a window through Ebitengine.
//
// Every primitive is a DrawImage call so the camera, including rotation,
// applies uniformly through one GeoM. Text uses text/v2 faces built from a
// shared source per font, sized per call.
package ebitengine

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

// Backend draws onto the screen image handed to Game.Draw
type Backend struct {
	target  *ebiten.Image
	pixel   *ebiten.Image
	source  *text.GoTextFaceSource
	camera  ebiten.GeoM
	inCam   bool
	measure map[measureKey]tile.Vector2
}

type measureKey struct {
	s    string
	src  *text.GoTextFaceSource
	size float32
}

var _ render.Backend = (*Backend)(nil)

// New builds a backend with goregular as the default face
func New() (*Backend, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &Backend{
		pixel:   pixel,
		source:  src,
		measure: make(map[measureKey]tile.Vector2),
	}, nil
}

// SetTarget selects the image the next frame draws to
func (b *Backend) SetTarget(img *ebiten.Image) { b.target = img }

// nrgba reinterprets a straight-alpha tile colour
func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (b *Backend) BeginFrame(c color.RGBA) {
	if b.target != nil {
		b.target.Fill(nrgba(c))
	}
}

func (b *Backend) EndFrame() error { return nil }

// BeginCamera builds the world transform: translate by -target, zoom,
// rotate, then translate by offset
func (b *Backend) BeginCamera(cam render.Camera) {
	var g ebiten.GeoM
	g.Translate(float64(-cam.Target.X), float64(-cam.Target.Y))
	z := float64(cam.Scale())
	g.Scale(z, z)
	g.Rotate(float64(cam.Rotation) * math.Pi / 180)
	g.Translate(float64(cam.Offset.X), float64(cam.Offset.Y))
	b.camera = g
	b.inCam = true
}

func (b *Backend) EndCamera() {
	b.inCam = false
}

// place appends the camera to a local transform
func (b *Backend) place(g *ebiten.GeoM) {
	if b.inCam {
		g.Concat(b.camera)
	}
}

func (b *Backend) FillRect(r tile.Rect, c color.RGBA) {
	if b.target == nil || c.A == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Width), float64(r.Height))
	op.GeoM.Translate(float64(r.X), float64(r.Y))
	b.place(&op.GeoM)
	op.ColorScale.ScaleWithColor(nrgba(c))
	b.target.DrawImage(b.pixel, op)
}

// StrokeRect draws a one pixel outline inside r
func (b *Backend) StrokeRect(r tile.Rect, c color.RGBA) {
	const w = 1
	b.FillRect(tile.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: w}, c)
	b.FillRect(tile.Rect{X: r.X, Y: r.Y + r.Height - w, Width: r.Width, Height: w}, c)
	b.FillRect(tile.Rect{X: r.X, Y: r.Y + w, Width: w, Height: r.Height - 2*w}, c)
	b.FillRect(tile.Rect{X: r.X + r.Width - w, Y: r.Y + w, Width: w, Height: r.Height - 2*w}, c)
}

func (b *Backend) face(f render.Font, size float32) *text.GoTextFace {
	src := b.source
	if ff, ok := f.(*Font); ok && ff != nil && ff.source != nil {
		src = ff.source
	}
	return &text.GoTextFace{Source: src, Size: float64(size)}
}

// MeasureText returns the advance and line height of s at size
// Results are memoized per string, source and size
func (b *Backend) MeasureText(s string, f render.Font, size float32) tile.Vector2 {
	face := b.face(f, size)
	key := measureKey{s: s, src: face.Source, size: size}
	if v, ok := b.measure[key]; ok {
		return v
	}
	w, h := text.Measure(s, face, 0)
	v := tile.Vector2{X: float32(w), Y: float32(h)}
	b.measure[key] = v
	return v
}

func (b *Backend) DrawText(s string, f render.Font, pos tile.Vector2, size float32, c color.RGBA) {
	if b.target == nil || c.A == 0 {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(pos.X), float64(pos.Y))
	b.place(&op.GeoM)
	op.ColorScale.ScaleWithColor(nrgba(c))
	text.Draw(b.target, s, b.face(f, size), op)
}

// DrawTexture blits src of tex into dst, multiplied by tint
func (b *Backend) DrawTexture(tex render.Texture, src, dst tile.Rect, tint color.RGBA) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || b.target == nil || tint.A == 0 || src.Width <= 0 || src.Height <= 0 {
		return
	}
	rect := image.Rect(int(src.X), int(src.Y), int(src.X+src.Width), int(src.Y+src.Height))
	sub, ok := t.img.SubImage(rect).(*ebiten.Image)
	if !ok {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(dst.Width/src.Width), float64(dst.Height/src.Height))
	op.GeoM.Translate(float64(dst.X), float64(dst.Y))
	b.place(&op.GeoM)
	op.ColorScale.ScaleWithColor(nrgba(tint))
	b.target.DrawImage(sub, op)
}
