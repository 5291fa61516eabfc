// Package record provides a Backend that captures draw primitives instead of
// drawing them. Tests assert on the transcript; the demo can dump it for
// debugging.
package record

import (
	"fmt"
	"image/color"
	"io"
	"unicode/utf8"

	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

// Op names a recorded primitive
type Op string

const (
	OpBeginFrame  Op = "begin_frame"
	OpEndFrame    Op = "end_frame"
	OpBeginCamera Op = "begin_camera"
	OpEndCamera   Op = "end_camera"
	OpFillRect    Op = "fill_rect"
	OpStrokeRect  Op = "stroke_rect"
	OpDrawText    Op = "draw_text"
	OpDrawTexture Op = "draw_texture"
)

// Call is one recorded primitive
// Fields not used by an Op stay zero
type Call struct {
	Op      Op
	Rect    tile.Rect
	Src     tile.Rect
	Pos     tile.Vector2
	Color   color.RGBA
	Text    string
	Size    float32
	Font    render.Font
	Texture render.Texture
	Camera  render.Camera
}

// Backend records every draw call
// Text is measured as runes x size/2 wide and size tall
type Backend struct {
	Calls  []Call
	Frames int
	// EndErr is returned from EndFrame when set
	EndErr error
}

var _ render.Backend = (*Backend)(nil)

// New returns an empty recorder
func New() *Backend {
	return &Backend{}
}

// Reset drops the transcript
func (b *Backend) Reset() {
	b.Calls = b.Calls[:0]
}

// Filter returns the calls matching op in order
func (b *Backend) Filter(op Op) []Call {
	var out []Call
	for _, c := range b.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Frame returns the calls of the last complete frame, including its
// begin/end markers
func (b *Backend) Frame() []Call {
	start := -1
	for i := len(b.Calls) - 1; i >= 0; i-- {
		if b.Calls[i].Op == OpBeginFrame {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	return b.Calls[start:]
}

func (b *Backend) BeginFrame(c color.RGBA) {
	b.Calls = append(b.Calls, Call{Op: OpBeginFrame, Color: c})
}

func (b *Backend) EndFrame() error {
	b.Frames++
	b.Calls = append(b.Calls, Call{Op: OpEndFrame})
	return b.EndErr
}

func (b *Backend) BeginCamera(cam render.Camera) {
	b.Calls = append(b.Calls, Call{Op: OpBeginCamera, Camera: cam})
}

func (b *Backend) EndCamera() {
	b.Calls = append(b.Calls, Call{Op: OpEndCamera})
}

func (b *Backend) FillRect(r tile.Rect, c color.RGBA) {
	b.Calls = append(b.Calls, Call{Op: OpFillRect, Rect: r, Color: c})
}

func (b *Backend) StrokeRect(r tile.Rect, c color.RGBA) {
	b.Calls = append(b.Calls, Call{Op: OpStrokeRect, Rect: r, Color: c})
}

func (b *Backend) MeasureText(s string, _ render.Font, size float32) tile.Vector2 {
	return tile.Vector2{X: float32(utf8.RuneCountInString(s)) * size / 2, Y: size}
}

func (b *Backend) DrawText(s string, font render.Font, pos tile.Vector2, size float32, c color.RGBA) {
	b.Calls = append(b.Calls, Call{Op: OpDrawText, Text: s, Font: font, Pos: pos, Size: size, Color: c})
}

func (b *Backend) DrawTexture(tex render.Texture, src, dst tile.Rect, tint color.RGBA) {
	b.Calls = append(b.Calls, Call{Op: OpDrawTexture, Texture: tex, Src: src, Rect: dst, Color: tint})
}

// Dump writes the transcript one call per line
func (b *Backend) Dump(w io.Writer) error {
	for _, c := range b.Calls {
		var err error
		switch c.Op {
		case OpFillRect, OpStrokeRect:
			_, err = fmt.Fprintf(w, "%s %v %v\n", c.Op, c.Rect, c.Color)
		case OpDrawText:
			_, err = fmt.Fprintf(w, "%s %q %v %v\n", c.Op, c.Text, c.Pos, c.Color)
		case OpDrawTexture:
			_, err = fmt.Fprintf(w, "%s %v -> %v %v\n", c.Op, c.Src, c.Rect, c.Color)
		default:
			_, err = fmt.Fprintf(w, "%s\n", c.Op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Loader hands out fixed-size fake resources without touching the filesystem
type Loader struct {
	TextureWidth  int
	TextureHeight int
	// Err is returned from every load when set
	Err error
}

var _ render.Loader = (*Loader)(nil)

func (l *Loader) LoadFont(path string, size float32) (render.Font, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return &Font{Path: path, Size: size}, nil
}

func (l *Loader) LoadTexture(path string) (render.Texture, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return &Texture{Path: path, Width: l.TextureWidth, Height: l.TextureHeight}, nil
}

// Font is a recorded font handle
type Font struct {
	Path   string
	Size   float32
	Closed bool
}

func (f *Font) Close() error {
	f.Closed = true
	return nil
}

// Texture is a recorded texture handle
type Texture struct {
	Path          string
	Width, Height int
	Closed        bool
}

func (t *Texture) Size() (int, int) { return t.Width, t.Height }

func (t *Texture) Close() error {
	t.Closed = true
	return nil
}
