package raster

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/lixenwraith/tilegrid/render"
)

// Font wraps a sized x/image face
type Font struct {
	face font.Face
}

// NewFont wraps an existing face
func NewFont(face font.Face) *Font {
	return &Font{face: face}
}

// ParseFont builds a face at size points from TrueType/OpenType data
func ParseFont(data []byte, size float32) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return &Font{face: face}, nil
}

// Face returns the underlying face
func (f *Font) Face() font.Face { return f.face }

func (f *Font) Close() error {
	if f.face == nil {
		return nil
	}
	return f.face.Close()
}

// Texture is a decoded image
type Texture struct {
	img image.Image
}

// NewTexture wraps a decoded image
func NewTexture(img image.Image) *Texture {
	return &Texture{img: img}
}

// Image returns the decoded image
func (t *Texture) Image() image.Image { return t.img }

func (t *Texture) Size() (int, int) {
	r := t.img.Bounds()
	return r.Dx(), r.Dy()
}

func (t *Texture) Close() error { return nil }

// Loader reads fonts and PNG textures from the filesystem
type Loader struct{}

var _ render.Loader = Loader{}

func (Loader) LoadFont(path string, size float32) (render.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFont(data, size)
}

func (Loader) LoadTexture(path string) (render.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewTexture(img), nil
}
