package config

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque colour written as "#rrggbb" or "#rgb" in TOML
type Color struct {
	color.RGBA
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := colorful.Hex(string(text))
	if err != nil {
		return fmt.Errorf("color %q: %w", text, err)
	}
	r, g, b := parsed.RGB255()
	c.RGBA = color.RGBA{R: r, G: g, B: b, A: 255}
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// Hex formats the colour as "#rrggbb"; alpha is dropped
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
