package render

import (
	"image/color"

	"github.com/lixenwraith/tilegrid/tile"
)

// Font is an opaque font handle produced by a Loader
// A nil Font selects the backend's built-in face
type Font interface {
	Close() error
}

// Texture is an opaque image handle produced by a Loader
type Texture interface {
	// Size returns the texture dimensions in pixels
	Size() (width, height int)
	Close() error
}

// Backend is the drawing surface the renderer dispatches to
// All rectangles and positions are in pixel space; backends that draw in
// cells (terminals) run with a tile size of 1
type Backend interface {
	// BeginFrame starts a frame and clears the surface to c
	BeginFrame(c color.RGBA)
	// EndFrame presents the frame
	EndFrame() error

	// BeginCamera applies the camera transform to subsequent draws
	BeginCamera(cam Camera)
	// EndCamera restores the identity transform
	EndCamera()

	FillRect(r tile.Rect, c color.RGBA)
	StrokeRect(r tile.Rect, c color.RGBA)

	// MeasureText returns the extent of s rendered with font at size
	MeasureText(s string, font Font, size float32) tile.Vector2
	// DrawText draws s with its top-left corner at pos
	DrawText(s string, font Font, pos tile.Vector2, size float32, c color.RGBA)
	// DrawTexture blits src of tex into dst, multiplying by tint
	DrawTexture(tex Texture, src, dst tile.Rect, tint color.RGBA)
}

// Loader decodes fonts and textures for a Backend
type Loader interface {
	LoadFont(path string, size float32) (Font, error)
	LoadTexture(path string) (Texture, error)
}
