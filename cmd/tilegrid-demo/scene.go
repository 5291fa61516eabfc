package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

var (
	floorFg  = color.RGBA{R: 70, G: 70, B: 80, A: 255}
	floorBg  = color.RGBA{R: 12, G: 12, B: 18, A: 255}
	wallFg   = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	pillarFg = color.RGBA{R: 90, G: 200, B: 255, A: 255}
	playerFg = color.RGBA{R: 255, G: 220, B: 60, A: 255}
	statusFg = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	statusBg = color.RGBA{R: 30, G: 30, B: 60, A: 255}
)

// fogLevel dims the right third of the map on every world layer
const fogLevel = 90

// scene is the demo world: a walled floor with a few glyphs, a pillar
// layer above it, fog over the far side and a player entity
type scene struct {
	c      *render.Context
	width  int
	height int
	player layer.EntityID
	pos    tile.Vector2
	status *layer.Layer
}

func buildScene(c *render.Context) (*scene, error) {
	cfg := c.Config()
	s := &scene{c: c, width: cfg.LayerWidth, height: cfg.LayerHeight}
	if s.width < 8 || s.height < 6 {
		return nil, fmt.Errorf("layer %dx%d too small for the demo", s.width, s.height)
	}

	ground, err := c.World.Layer(0)
	if err != nil {
		return nil, err
	}
	ground.Defaults = tile.Defaults{Foreground: floorFg, Background: floorBg}
	ground.Fill(ground.Defaults.Char("."))
	walls := layer.BoxLight.Tiles(tile.Defaults{Foreground: wallFg, Background: floorBg})
	walls.Fill = tile.Tile{}
	if err := ground.DrawBorder(image.Rect(0, 0, s.width-1, s.height-2), walls); err != nil {
		return nil, err
	}

	// glyphs under the shared mask
	for x, g := range []string{"A", "b", "B"} {
		if err := c.SetWorldTileChar(2+x, 2, g); err != nil {
			return nil, err
		}
	}
	if err := c.SetWorldMask(3, 2, 100); err != nil {
		return nil, err
	}

	pillars := c.NewLayer()
	pillars.Defaults = tile.Defaults{Foreground: pillarFg}
	for y := 2; y < s.height-3; y += 3 {
		for x := s.width / 4; x < s.width-2; x += s.width / 4 {
			if err := pillars.SetChar(x, y, "C"); err != nil {
				return nil, err
			}
		}
	}
	c.AppendWorldLayer(pillars)

	fog := layer.NewMask(s.width, s.height, layer.TargetAll, image.Point{})
	fog.FillRect(image.Rect(s.width*2/3, 0, s.width, s.height), fogLevel)
	fog.Reach = layer.Reach{Below: layer.Unlimited}
	if err := c.AttachMask(pillars, fog); err != nil {
		return nil, err
	}

	s.pos = tile.Vec(float32(s.width/2), float32(s.height/2))
	s.player = c.NewEntity(tile.Defaults{Foreground: playerFg}.Char("@"), s.pos)
	if err := c.AddWorldEntity(1, s.player); err != nil {
		return nil, err
	}

	s.status, err = c.UI.Layer(0)
	if err != nil {
		return nil, err
	}
	s.drawStatus(c)
	c.Observe(render.PhasePostDraw, s.drawStatus)
	return s, nil
}

// move steps the player, staying inside the walls
func (s *scene) move(dx, dy int) {
	x := min(max(int(s.pos.X)+dx, 1), s.width-2)
	y := min(max(int(s.pos.Y)+dy, 1), s.height-3)
	s.pos = tile.Vec(float32(x), float32(y))
	s.c.MoveEntity(s.player, s.pos)
	s.c.SetCameraTarget(s.pos)
}

// follow centres the camera on the player inside a viewport of cells
func (s *scene) follow(viewW, viewH int) {
	s.c.SetCameraOffset(tile.Vec(float32(viewW/2), float32(viewH/2)))
	s.c.SetCameraTarget(s.pos)
}

// drawStatus writes the finished frame's counters to the bottom UI row for the next frame
func (s *scene) drawStatus(c *render.Context) {
	st := c.Stats()
	line := fmt.Sprintf(" @ %d,%d  frame %d  cells %d  masked %d  calls %d",
		int(s.pos.X), int(s.pos.Y), st.Frame, st.CellsDrawn, st.CellsMasked, st.DrawCalls)
	s.status.WriteString(0, s.height-1, fmt.Sprintf("%-*s", s.width, line), statusFg, statusBg)
}
