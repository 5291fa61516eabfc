package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// fastDiv255 approximates x / 255 using integer math
// Formula: (x + (x >> 8) + 1) >> 8, exact for x in [0, 255*255]
func fastDiv255(x int) int {
	return (x + (x >> 8) + 1) >> 8
}

// ScaleAlpha multiplies the alpha of c by vis/255
// Integer math keeps partial visibility deterministic across backends
func ScaleAlpha(c color.RGBA, vis uint8) color.RGBA {
	c.A = uint8(fastDiv255(int(c.A) * int(vis)))
	return c
}

// Blend composites src over dst using src alpha, returning an opaque colour
// Alpha 255 returns src and 0 returns dst without touching channels
func Blend(dst, src color.RGBA) color.RGBA {
	switch src.A {
	case 255:
		return src
	case 0:
		return color.RGBA{R: dst.R, G: dst.G, B: dst.B, A: 255}
	}
	a := int(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8(fastDiv255(int(src.R)*a + int(dst.R)*inv)),
		G: uint8(fastDiv255(int(src.G)*a + int(dst.G)*inv)),
		B: uint8(fastDiv255(int(src.B)*a + int(dst.B)*inv)),
		A: 255,
	}
}

// Multiply tints c by t per channel, alpha included
func Multiply(c, t color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(fastDiv255(int(c.R) * int(t.R))),
		G: uint8(fastDiv255(int(c.G) * int(t.G))),
		B: uint8(fastDiv255(int(c.B) * int(t.B))),
		A: uint8(fastDiv255(int(c.A) * int(t.A))),
	}
}

// Lerp interpolates a toward b in Lab space, t clamped to [0,1]
// Alpha is interpolated linearly
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendLab(cb, t).Clamped().RGB255()
	return color.RGBA{
		R: r, G: g, B: bl,
		A: uint8(float64(a.A) + t*float64(int(b.A)-int(a.A))),
	}
}

// opaque drops alpha so colorful does not see premultiplied zeros
func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}
