package render

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/tilegrid/layer"
)

// errNoLoader reports LoadFont/LoadTilemap on a context built without a Loader
var errNoLoader = errors.New("no loader configured")

// AddFont registers f and returns its slot for Layer.Resource
func (c *Context) AddFont(f Font) (int, error) {
	if len(c.fonts) >= MaxResources {
		return -1, c.check("add font", fmt.Errorf("%w: %d fonts", layer.ErrCapacityExceeded, MaxResources))
	}
	c.fonts = append(c.fonts, f)
	return len(c.fonts) - 1, nil
}

// LoadFont loads a font through the context's Loader and registers it
// The registry is checked before the file is read
func (c *Context) LoadFont(path string, size float32) (int, error) {
	if len(c.fonts) >= MaxResources {
		return -1, c.check("load font", fmt.Errorf("%w: %d fonts", layer.ErrCapacityExceeded, MaxResources))
	}
	if c.loader == nil {
		return -1, fmt.Errorf("load font %s: %w", path, errNoLoader)
	}
	f, err := c.loader.LoadFont(path, size)
	if err != nil {
		return -1, fmt.Errorf("load font %s: %w", path, err)
	}
	return c.AddFont(f)
}

// Font returns the font in slot i or nil for the backend default
func (c *Context) Font(i int) Font {
	if i < 0 || i >= len(c.fonts) {
		return nil
	}
	return c.fonts[i]
}

// Fonts returns the number of registered fonts
func (c *Context) Fonts() int { return len(c.fonts) }

// AddTilemap registers tm and returns its slot for Layer.Resource
func (c *Context) AddTilemap(tm *Tilemap) (int, error) {
	if len(c.tilemaps) >= MaxResources {
		return -1, c.check("add tilemap", fmt.Errorf("%w: %d tilemaps", layer.ErrCapacityExceeded, MaxResources))
	}
	c.tilemaps = append(c.tilemaps, tm)
	return len(c.tilemaps) - 1, nil
}

// LoadTilemap loads a texture and slices it into tileWidth x tileHeight tiles
func (c *Context) LoadTilemap(path string, tileWidth, tileHeight int) (int, error) {
	if len(c.tilemaps) >= MaxResources {
		return -1, c.check("load tilemap", fmt.Errorf("%w: %d tilemaps", layer.ErrCapacityExceeded, MaxResources))
	}
	if c.loader == nil {
		return -1, fmt.Errorf("load tilemap %s: %w", path, errNoLoader)
	}
	tex, err := c.loader.LoadTexture(path)
	if err != nil {
		return -1, fmt.Errorf("load tilemap %s: %w", path, err)
	}
	return c.AddTilemap(NewTilemap(tex, tileWidth, tileHeight))
}

// Tilemap returns the tilemap in slot i or nil
func (c *Context) Tilemap(i int) *Tilemap {
	if i < 0 || i >= len(c.tilemaps) {
		return nil
	}
	return c.tilemaps[i]
}

// Tilemaps returns the number of registered tilemaps
func (c *Context) Tilemaps() int { return len(c.tilemaps) }
