//go:build !headless

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lixenwraith/tilegrid/backend/ebitengine"
	"github.com/lixenwraith/tilegrid/config"
	"github.com/lixenwraith/tilegrid/render"
)

var windowKeys = []struct {
	key    ebiten.Key
	dx, dy int
}{
	{ebiten.KeyW, 0, -1}, {ebiten.KeyArrowUp, 0, -1},
	{ebiten.KeyS, 0, 1}, {ebiten.KeyArrowDown, 0, 1},
	{ebiten.KeyA, -1, 0}, {ebiten.KeyArrowLeft, -1, 0},
	{ebiten.KeyD, 1, 0}, {ebiten.KeyArrowRight, 1, 0},
}

// runWindow opens an ebiten window and blocks until it is closed or Esc
func runWindow(cfg config.Config, build builder) error {
	b, err := ebitengine.New()
	if err != nil {
		return err
	}
	c, s, err := build(b, render.WithLoader(ebitengine.Loader{}))
	if err != nil {
		return err
	}
	defer c.Close()

	ts := cfg.Grid.TileSize
	s.follow(int(float32(cfg.Window.Width)/ts), int(float32(cfg.Window.Height)/ts))

	game := &ebitengine.Game{
		Context: c,
		Backend: b,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		OnUpdate: func() error {
			if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
				return ebiten.Termination
			}
			for _, k := range windowKeys {
				if inpututil.IsKeyJustPressed(k.key) {
					s.move(k.dx, k.dy)
				}
			}
			return nil
		},
	}
	return ebitengine.Run(game, cfg.Window.Title, cfg.Window.FPS)
}
