package ebitengine

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/lixenwraith/tilegrid/render"
)

// Font is a parsed face source; size is chosen per draw
type Font struct {
	source *text.GoTextFaceSource
}

func (f *Font) Close() error { return nil }

// Texture wraps a GPU image
type Texture struct {
	img *ebiten.Image
}

// NewTexture wraps an existing image
func NewTexture(img *ebiten.Image) *Texture {
	return &Texture{img: img}
}

func (t *Texture) Size() (int, int) {
	r := t.img.Bounds()
	return r.Dx(), r.Dy()
}

func (t *Texture) Close() error {
	t.img.Deallocate()
	return nil
}

// Loader reads fonts and images from the filesystem
type Loader struct{}

var _ render.Loader = Loader{}

func (Loader) LoadFont(path string, _ float32) (render.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &Font{source: src}, nil
}

func (Loader) LoadTexture(path string) (render.Texture, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewTexture(img), nil
}

// Game adapts a render.Context to ebiten's game loop
type Game struct {
	Context *render.Context
	Backend *Backend
	Width   int
	Height  int
	// OnUpdate runs once per tick before drawing; a non-nil error ends the loop
	OnUpdate func() error

	err error
}

func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.Backend.SetTarget(screen)
	if err := g.Context.Frame(); err != nil {
		g.err = err
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.Width, g.Height
}

// Run opens a window and drives g until it is closed
func Run(g *Game, title string, fps int) error {
	ebiten.SetWindowSize(g.Width, g.Height)
	ebiten.SetWindowTitle(title)
	if fps > 0 {
		ebiten.SetTPS(fps)
	}
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}
