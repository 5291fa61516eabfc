// Package config loads tilegrid settings from TOML.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default. Unknown keys are rejected so typos surface at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

// Backend names accepted by the backend key
const (
	BackendTerminal = "terminal"
	BackendRaster   = "raster"
	BackendWindow   = "window"
)

type Config struct {
	Backend string  `toml:"backend"`
	Strict  bool    `toml:"strict"`
	Window  Window  `toml:"window"`
	Grid    Grid    `toml:"grid"`
	Colors  Colors  `toml:"colors"`
	Tiles   Tiles   `toml:"tiles"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	FPS    int    `toml:"fps"`
	Title  string `toml:"title"`
}

// Grid sizes cells and layers; a zero layer dimension is derived from the
// window size divided by the tile size
type Grid struct {
	TileSize    float32 `toml:"tile_size"`
	FontSize    float32 `toml:"font_size"`
	LayerWidth  int     `toml:"layer_width"`
	LayerHeight int     `toml:"layer_height"`
	GridOutline bool    `toml:"grid_outline"`
}

type Colors struct {
	Foreground Color `toml:"foreground"`
	Background Color `toml:"background"`
	Clear      Color `toml:"clear"`
	Outline    Color `toml:"outline"`
}

type Tiles struct {
	DefaultVisibility uint8 `toml:"default_visibility"`
}

type Log struct {
	Debug bool `toml:"debug"`
}

// Metrics enables the prometheus endpoint when Addr is set
type Metrics struct {
	Addr string `toml:"addr"`
}

// Default returns the stock 800x450 window with 20px white-on-black cells
func Default() Config {
	return Config{
		Backend: BackendTerminal,
		Window: Window{
			Width:  800,
			Height: 450,
			FPS:    60,
			Title:  "CRGA Basic Window",
		},
		Grid: Grid{
			TileSize: 20,
			FontSize: 24,
		},
		Colors: Colors{
			Foreground: RGB(255, 255, 255),
			Background: RGB(0, 0, 0),
			Clear:      RGB(0, 0, 0),
			Outline:    RGB(230, 41, 55),
		},
	}
}

// Parse overlays TOML data onto Default and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return cfg, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load reads path; a missing file yields Default
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports every out-of-range value at once
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendTerminal, BackendRaster, BackendWindow:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown %q", c.Backend))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS < 0 {
		errs = append(errs, fmt.Errorf("window: fps %d is negative", c.Window.FPS))
	}
	if c.Grid.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("grid: tile_size %v must be positive", c.Grid.TileSize))
	}
	if c.Grid.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("grid: font_size %v must be positive", c.Grid.FontSize))
	}
	if c.Grid.LayerWidth < 0 || c.Grid.LayerHeight < 0 {
		errs = append(errs, fmt.Errorf("grid: layer size %dx%d is negative", c.Grid.LayerWidth, c.Grid.LayerHeight))
	}
	return errors.Join(errs...)
}

// LayerSize resolves the default layer dimensions in cells
func (c Config) LayerSize() (int, int) {
	w, h := c.Grid.LayerWidth, c.Grid.LayerHeight
	if c.Grid.TileSize > 0 {
		if w == 0 {
			w = int(float32(c.Window.Width) / c.Grid.TileSize)
		}
		if h == 0 {
			h = int(float32(c.Window.Height) / c.Grid.TileSize)
		}
	}
	return w, h
}

// Render converts to the render context configuration
// The terminal backend draws in cells, so its tile and font size are 1
func (c Config) Render() render.Config {
	w, h := c.LayerSize()
	rc := render.Config{
		TileSize:    c.Grid.TileSize,
		FontSize:    c.Grid.FontSize,
		LayerWidth:  w,
		LayerHeight: h,
		Clear:       c.Colors.Clear.RGBA,
		Defaults: tile.Defaults{
			Foreground: c.Colors.Foreground.RGBA,
			Background: c.Colors.Background.RGBA,
			Visibility: c.Tiles.DefaultVisibility,
		},
		GridOutline:  c.Grid.GridOutline,
		OutlineColor: c.Colors.Outline.RGBA,
		FPS:          c.Window.FPS,
	}
	if c.Backend == BackendTerminal {
		rc.TileSize, rc.FontSize = 1, 1
	}
	return rc
}

// RGB builds an opaque colour
func RGB(r, g, b uint8) Color {
	return Color{color.RGBA{R: r, G: g, B: b, A: 255}}
}
