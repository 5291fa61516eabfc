// Package render draws layer stacks through a pluggable Backend.
//
// A Context owns everything a frame needs: the world and UI stacks, the
// entity pool, the association table, registered fonts and tilemaps, the
// camera and the masking policy. Applications build one Context at startup,
// mutate it between frames and call Frame (or Run) on the same goroutine.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"slices"

	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/tile"
)

// MaxResources bounds the font and tilemap registries
const MaxResources = 255

// ErrNoTilemap reports a tilemap layer whose resource slot is empty
var ErrNoTilemap = errors.New("no tilemap")

// Config holds the per-context drawing parameters
type Config struct {
	TileSize     float32 // pixels per cell, 1 for terminals
	FontSize     float32
	LayerWidth   int // size of layers created by NewLayer
	LayerHeight  int
	Clear        color.RGBA
	Defaults     tile.Defaults
	GridOutline  bool
	OutlineColor color.RGBA
	FPS          int // Run pacing, 0 runs unthrottled
}

// DefaultConfig returns an 800x450 window's worth of 20px cells
func DefaultConfig() Config {
	return Config{
		TileSize:     20,
		FontSize:     24,
		LayerWidth:   800 / 20,
		LayerHeight:  450 / 20,
		Clear:        color.RGBA{A: 255},
		Defaults:     tile.StandardDefaults,
		OutlineColor: color.RGBA{R: 230, G: 41, B: 55, A: 255},
		FPS:          60,
	}
}

// Option configures a Context
type Option func(*Context)

// WithLogger routes lenient-mode diagnostics to l
func WithLogger(l *log.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrict makes mutators return errors instead of logging them
func WithStrict(strict bool) Option {
	return func(c *Context) { c.strict = strict }
}

// WithPolicy replaces the masking policy
func WithPolicy(p layer.Policy) Option {
	return func(c *Context) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithLoader sets the loader used by LoadFont and LoadTilemap
func WithLoader(l Loader) Option {
	return func(c *Context) { c.loader = l }
}

// Context is the explicit render state passed to every drawing call
type Context struct {
	cfg     Config
	backend Backend
	loader  Loader
	policy  layer.Policy
	logger  *log.Logger
	strict  bool

	World    *layer.Stack
	UI       *layer.Stack
	Entities *layer.EntityPool
	Assoc    *tile.AssocTable
	Camera   Camera

	fonts    []Font
	tilemaps []*Tilemap

	worldMask *layer.Mask
	uiMask    *layer.Mask

	// tilemap layers whose empty slot was already logged, by slot
	missing map[*layer.Layer]int

	observers [phaseCount][]func(*Context)
	stats     Stats
	closed    bool
}

// NewContext builds a context drawing to b
// The world and UI stacks start with one layer each of the configured size
func NewContext(b Backend, cfg Config, opts ...Option) *Context {
	if cfg.TileSize <= 0 {
		cfg.TileSize = 1
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = cfg.TileSize
	}
	c := &Context{
		cfg:      cfg,
		backend:  b,
		policy:   layer.Compositor{},
		logger:   log.New(io.Discard, "", 0),
		World:    layer.NewStack(),
		UI:       layer.NewStack(),
		Entities: layer.NewEntityPool(),
		Assoc:    tile.NewAssocTable(),
		Camera:   NewCamera(),
		fonts:    make([]Font, 0, 4),
		tilemaps: make([]*Tilemap, 0, 4),
		missing:  make(map[*layer.Layer]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.World.Append(c.NewLayer())
	c.UI.Append(c.NewLayer())
	return c
}

// Config returns the drawing parameters
func (c *Context) Config() Config { return c.cfg }

// TileSize returns pixels per cell
func (c *Context) TileSize() float32 { return c.cfg.TileSize }

// Backend returns the drawing backend
func (c *Context) Backend() Backend { return c.backend }

// Policy returns the masking policy
func (c *Context) Policy() layer.Policy { return c.policy }

// Strict reports whether mutators return their errors
func (c *Context) Strict() bool { return c.strict }

// check applies the strict/lenient error policy
func (c *Context) check(op string, err error) error {
	if err == nil {
		return nil
	}
	if c.strict {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Printf("%s: %v", op, err)
	return nil
}

// ===== LAYERS =====

// NewLayer allocates a detached layer of the configured size and defaults
func (c *Context) NewLayer() *layer.Layer {
	l := layer.New(c.cfg.LayerWidth, c.cfg.LayerHeight)
	l.Defaults = c.cfg.Defaults
	return l
}

// AppendWorldLayer places l on top of the world stack
func (c *Context) AppendWorldLayer(l *layer.Layer) {
	c.World.Append(l)
}

// AppendUILayer places l on top of the UI stack
func (c *Context) AppendUILayer(l *layer.Layer) {
	c.UI.Append(l)
}

// InsertWorldLayer inserts l at index i of the world stack
func (c *Context) InsertWorldLayer(i int, l *layer.Layer) error {
	return c.check("insert world layer", c.World.Insert(i, l))
}

// InsertUILayer inserts l at index i of the UI stack
func (c *Context) InsertUILayer(i int, l *layer.Layer) error {
	return c.check("insert ui layer", c.UI.Insert(i, l))
}

// SetWorldLayer replaces world layer i
func (c *Context) SetWorldLayer(i int, l *layer.Layer) error {
	return c.check("set world layer", c.World.Set(i, l))
}

// SetUILayer replaces UI layer i
func (c *Context) SetUILayer(i int, l *layer.Layer) error {
	return c.check("set ui layer", c.UI.Set(i, l))
}

// ResizeLayer reallocates l, clearing every cell
// A shared world or UI mask attached to l follows the new size and keeps the
// opacity of the cells both sizes share
func (c *Context) ResizeLayer(l *layer.Layer, width, height int) {
	l.Resize(width, height)
	for _, m := range []*layer.Mask{c.worldMask, c.uiMask} {
		if m != nil && slices.Contains(l.Masks(), m) {
			m.Resize(width, height)
		}
	}
}

// ===== TILES =====

func (c *Context) setTile(s *layer.Stack, op string, i, x, y int, t tile.Tile) error {
	l, err := s.Layer(i)
	if err != nil {
		return c.check(op, err)
	}
	return c.check(op, l.SetTile(x, y, t))
}

// SetWorldLayerTile writes t to cell (x,y) of world layer i
func (c *Context) SetWorldLayerTile(i, x, y int, t tile.Tile) error {
	return c.setTile(c.World, "set world tile", i, x, y, t)
}

// SetUILayerTile writes t to cell (x,y) of UI layer i
func (c *Context) SetUILayerTile(i, x, y int, t tile.Tile) error {
	return c.setTile(c.UI, "set ui tile", i, x, y, t)
}

// SetWorldTile writes t to cell (x,y) of the bottom world layer
func (c *Context) SetWorldTile(x, y int, t tile.Tile) error {
	return c.SetWorldLayerTile(0, x, y, t)
}

// SetWorldTileChar writes a glyph tile built from the context defaults
func (c *Context) SetWorldTileChar(x, y int, s string) error {
	return c.SetWorldTile(x, y, c.cfg.Defaults.Char(s))
}

// SetWorldTileIndex writes a tilemap index tile built from the context defaults
func (c *Context) SetWorldTileIndex(x, y int, n int32) error {
	return c.SetWorldTile(x, y, c.cfg.Defaults.Indexed(n))
}

// SetUITile writes t to cell (x,y) of the bottom UI layer
func (c *Context) SetUITile(x, y int, t tile.Tile) error {
	return c.SetUILayerTile(0, x, y, t)
}

// SetUITileChar writes a glyph tile built from the context defaults
func (c *Context) SetUITileChar(x, y int, s string) error {
	return c.SetUITile(x, y, c.cfg.Defaults.Char(s))
}

// SetUITileIndex writes a tilemap index tile built from the context defaults
func (c *Context) SetUITileIndex(x, y int, n int32) error {
	return c.SetUITile(x, y, c.cfg.Defaults.Indexed(n))
}

// ===== MASKS =====

// AttachMask attaches m to l
func (c *Context) AttachMask(l *layer.Layer, m *layer.Mask) error {
	return c.check("attach mask", l.AttachMask(m))
}

// SetMaskCell writes opacity v at mask cell (x,y)
func (c *Context) SetMaskCell(m *layer.Mask, x, y int, v uint8) error {
	return c.check("set mask", m.Set(x, y, v))
}

// SetWorldMask sets opacity v at (x,y) of the bottom world layer's shared mask
// The mask is created on first use, sized to the layer, covering grid and
// entities
func (c *Context) SetWorldMask(x, y int, v uint8) error {
	m, err := c.sharedMask(c.World, &c.worldMask)
	if err != nil {
		return c.check("set world mask", err)
	}
	return c.check("set world mask", m.Set(x, y, v))
}

// SetUIMask sets opacity v at (x,y) of the bottom UI layer's shared mask
func (c *Context) SetUIMask(x, y int, v uint8) error {
	m, err := c.sharedMask(c.UI, &c.uiMask)
	if err != nil {
		return c.check("set ui mask", err)
	}
	return c.check("set ui mask", m.Set(x, y, v))
}

func (c *Context) sharedMask(s *layer.Stack, slot **layer.Mask) (*layer.Mask, error) {
	l, err := s.Layer(0)
	if err != nil {
		return nil, err
	}
	if *slot != nil && slices.Contains(l.Masks(), *slot) {
		return *slot, nil
	}
	m := layer.NewMask(l.Width(), l.Height(), layer.TargetAll, image.Point{})
	if err := l.AttachMask(m); err != nil {
		return nil, err
	}
	*slot = m
	return m, nil
}

// ===== ENTITIES =====

// NewEntity allocates an unlinked entity at an absolute cell position
func (c *Context) NewEntity(t tile.Tile, pos tile.Vector2) layer.EntityID {
	return c.Entities.New(t, pos)
}

// Entity returns the entity for id or nil
func (c *Context) Entity(id layer.EntityID) *layer.Entity {
	return c.Entities.Get(id)
}

// AddEntity moves id to the top of l's entity list
func (c *Context) AddEntity(l *layer.Layer, id layer.EntityID) error {
	return c.check("add entity", l.AddEntity(c.Entities, id))
}

// AddWorldEntity moves id onto world layer i
func (c *Context) AddWorldEntity(i int, id layer.EntityID) error {
	l, err := c.World.Layer(i)
	if err != nil {
		return c.check("add entity", err)
	}
	return c.AddEntity(l, id)
}

// MoveEntity sets the absolute position of id
func (c *Context) MoveEntity(id layer.EntityID, pos tile.Vector2) error {
	e := c.Entities.Get(id)
	if e == nil {
		return c.check("move entity", fmt.Errorf("%w: %d", layer.ErrUnknownEntity, id))
	}
	e.Position = pos
	return nil
}

// ===== ASSOCIATIONS =====

// Associate binds a glyph to a tilemap index
func (c *Context) Associate(glyph string, index int32) {
	c.Assoc.SetString(glyph, index)
}

// ===== CAMERA =====

// SetCameraTarget places the camera target at a cell position
func (c *Context) SetCameraTarget(cell tile.Vector2) {
	c.Camera.SetTarget(cell, c.cfg.TileSize)
}

// SetCameraOffset places the camera offset at a cell position
func (c *Context) SetCameraOffset(cell tile.Vector2) {
	c.Camera.SetOffset(cell, c.cfg.TileSize)
}

// ShiftCameraTarget moves the camera target by a cell delta
func (c *Context) ShiftCameraTarget(delta tile.Vector2) {
	c.Camera.ShiftTarget(delta, c.cfg.TileSize)
}

// ShiftCameraOffset moves the camera offset by a cell delta
func (c *Context) ShiftCameraOffset(delta tile.Vector2) {
	c.Camera.ShiftOffset(delta, c.cfg.TileSize)
}
