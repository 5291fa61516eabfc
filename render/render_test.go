package render_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lixenwraith/tilegrid/backend/record"
	"github.com/lixenwraith/tilegrid/layer"
	"github.com/lixenwraith/tilegrid/render"
	"github.com/lixenwraith/tilegrid/tile"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func testConfig() render.Config {
	cfg := render.DefaultConfig()
	cfg.LayerWidth, cfg.LayerHeight = 10, 10
	return cfg
}

func TestFrameEndToEnd(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())

	c.SetWorldTileChar(0, 0, "A")
	c.SetWorldTileChar(1, 0, "A")
	if err := c.SetWorldMask(1, 0, 100); err != nil {
		t.Fatalf("SetWorldMask failed: %v", err)
	}

	if err := c.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	// record measures "A" at size 24 as 12x24, centred in a 20px cell
	dim := func(c color.RGBA) color.RGBA { c.A = 100; return c }
	want := []record.Call{
		{Op: record.OpBeginFrame, Color: black},
		{Op: record.OpBeginCamera, Camera: render.NewCamera()},
		{Op: record.OpFillRect, Rect: tile.Rect{X: 0, Y: 0, Width: 20, Height: 20}, Color: black},
		{Op: record.OpDrawText, Text: "A", Pos: tile.Vec(4, -2), Size: 24, Color: white},
		{Op: record.OpFillRect, Rect: tile.Rect{X: 20, Y: 0, Width: 20, Height: 20}, Color: dim(black)},
		{Op: record.OpDrawText, Text: "A", Pos: tile.Vec(24, -2), Size: 24, Color: dim(white)},
		{Op: record.OpEndCamera},
		{Op: record.OpEndFrame},
	}
	if diff := cmp.Diff(want, b.Calls); diff != "" {
		t.Errorf("Frame transcript mismatch (-want +got):\n%s", diff)
	}

	s := c.Stats()
	if s.CellsVisited != 200 || s.CellsDrawn != 2 || s.CellsMasked != 0 || s.DrawCalls != 4 {
		t.Errorf("Unexpected stats: %+v", s)
	}
	if s.Frame != 1 {
		t.Errorf("Expected frame 1, got %d", s.Frame)
	}
}

func TestFrameSkipsFullyMaskedCells(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())
	c.SetWorldTileChar(3, 3, "#")
	c.SetWorldMask(3, 3, 0)

	c.Frame()
	if n := len(b.Filter(record.OpFillRect)) + len(b.Filter(record.OpDrawText)); n != 0 {
		t.Errorf("Expected no draws for hidden cell, got %d", n)
	}
	if c.Stats().CellsMasked != 1 {
		t.Errorf("Expected 1 masked cell, got %d", c.Stats().CellsMasked)
	}
}

func TestLayersDrawBottomUpWithPosition(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())

	top := c.NewLayer()
	top.Position = tile.Vec(2, 1)
	top.SetChar(0, 0, "T")
	c.AppendWorldLayer(top)
	c.SetWorldTileChar(0, 0, "B")

	c.Frame()
	texts := b.Filter(record.OpDrawText)
	if len(texts) != 2 {
		t.Fatalf("Expected 2 text draws, got %d", len(texts))
	}
	if texts[0].Text != "B" || texts[1].Text != "T" {
		t.Errorf("Expected B then T, got %q then %q", texts[0].Text, texts[1].Text)
	}
	fills := b.Filter(record.OpFillRect)
	if fills[1].Rect.X != 40 || fills[1].Rect.Y != 20 {
		t.Errorf("Expected shifted layer cell at (40,20), got (%v,%v)", fills[1].Rect.X, fills[1].Rect.Y)
	}
}

func TestEntitiesDrawAfterGrid(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())
	c.SetWorldTileChar(9, 9, "g")

	id := c.NewEntity(tile.Char("@"), tile.Vec(2.5, 3))
	if err := c.AddWorldEntity(0, id); err != nil {
		t.Fatalf("AddWorldEntity failed: %v", err)
	}

	c.Frame()
	texts := b.Filter(record.OpDrawText)
	if len(texts) != 2 || texts[1].Text != "@" {
		t.Fatalf("Expected entity drawn last, got %+v", texts)
	}
	fills := b.Filter(record.OpFillRect)
	if got := fills[1].Rect; got.X != 50 || got.Y != 60 {
		t.Errorf("Expected entity at absolute (50,60), got (%v,%v)", got.X, got.Y)
	}
	if c.Stats().EntitiesDrawn != 1 {
		t.Errorf("Expected 1 entity drawn, got %d", c.Stats().EntitiesDrawn)
	}
}

func TestEntityMaskedByEntityTarget(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig(), render.WithPolicy(layer.Compositor{MaskEmptyCells: true}))

	world, _ := c.World.Layer(0)
	m := layer.NewMask(10, 10, layer.TargetEntity, image.Point{})
	m.Set(2, 3, 0)
	c.AttachMask(world, m)

	id := c.NewEntity(tile.Char("@"), tile.Vec(2.5, 3))
	c.AddWorldEntity(0, id)
	c.SetWorldTileChar(2, 3, ".")

	c.Frame()
	texts := b.Filter(record.OpDrawText)
	if len(texts) != 1 || texts[0].Text != "." {
		t.Errorf("Expected grid cell drawn and entity hidden, got %+v", texts)
	}
}

func TestTilemapModeResolvesAssociations(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())

	tex := &record.Texture{Width: 64, Height: 32}
	slot, err := c.AddTilemap(render.NewTilemap(tex, 16, 16))
	if err != nil {
		t.Fatalf("AddTilemap failed: %v", err)
	}

	world, _ := c.World.Layer(0)
	world.Mode = layer.ModeTilemap | layer.ModeAssoc
	world.Resource = slot
	c.Associate("@", 6)
	c.SetWorldTileChar(0, 0, "@")

	shifted := tile.Char("@")
	shifted.Shift = tile.Vec(1, 2)
	c.SetWorldTile(1, 0, shifted)

	c.Frame()
	blits := b.Filter(record.OpDrawTexture)
	if len(blits) != 2 {
		t.Fatalf("Expected 2 blits, got %d", len(blits))
	}
	want := record.Call{
		Op:      record.OpDrawTexture,
		Texture: tex,
		Src:     tile.Rect{X: 16, Y: 16, Width: 16, Height: 16},
		Rect:    tile.Rect{X: 0, Y: 0, Width: 20, Height: 20},
		Color:   white,
	}
	if diff := cmp.Diff(want, blits[0]); diff != "" {
		t.Errorf("Blit mismatch (-want +got):\n%s", diff)
	}
	if got := blits[1].Rect; got.X != 21 || got.Y != 2 {
		t.Errorf("Expected shifted blit at (21,2), got (%v,%v)", got.X, got.Y)
	}
}

func TestTilemapModeRawIndex(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())
	c.AddTilemap(render.NewTilemap(&record.Texture{Width: 32, Height: 32}, 16, 16))

	world, _ := c.World.Layer(0)
	world.Mode = layer.ModeTilemap
	c.SetWorldTileIndex(0, 0, 3)
	c.SetWorldTileIndex(1, 0, 99)

	c.Frame()
	blits := b.Filter(record.OpDrawTexture)
	if len(blits) != 2 {
		t.Fatalf("Expected 2 blits, got %d", len(blits))
	}
	if got := blits[0].Src; got != (tile.Rect{X: 0, Y: 16, Width: 16, Height: 16}) {
		t.Errorf("Expected index 3 at (0,16), got %+v", got)
	}
	if got := blits[1].Src; got != (tile.Rect{Width: 16, Height: 16}) {
		t.Errorf("Expected out-of-range index to degrade, got %+v", got)
	}
}

func TestMissingTilemap(t *testing.T) {
	var logs bytes.Buffer
	b := record.New()
	c := render.NewContext(b, testConfig(), render.WithLogger(log.New(&logs, "", 0)))
	world, _ := c.World.Layer(0)
	world.Mode = layer.ModeTilemap
	c.SetWorldTileIndex(0, 0, 1)

	if err := c.Frame(); err != nil {
		t.Errorf("Expected lenient frame to succeed, got %v", err)
	}
	if !strings.Contains(logs.String(), "no tilemap") {
		t.Errorf("Expected missing tilemap to be logged, got %q", logs.String())
	}
	if len(b.Filter(record.OpDrawTexture)) != 0 {
		t.Error("Expected no blit without a tilemap")
	}
	if len(b.Filter(record.OpFillRect)) != 1 {
		t.Error("Expected background still filled")
	}

	strict := render.NewContext(record.New(), testConfig(), render.WithStrict(true))
	sw, _ := strict.World.Layer(0)
	sw.Mode = layer.ModeTilemap
	if err := strict.Frame(); !errors.Is(err, render.ErrNoTilemap) {
		t.Errorf("Expected ErrNoTilemap in strict mode, got %v", err)
	}
}

func TestMissingTilemapLoggedOncePerSlot(t *testing.T) {
	var logs bytes.Buffer
	tex := &record.Texture{Width: 16, Height: 16}
	c := render.NewContext(record.New(), testConfig(), render.WithLogger(log.New(&logs, "", 0)))
	world, _ := c.World.Layer(0)
	world.Mode = layer.ModeTilemap
	c.SetWorldTileIndex(0, 0, 1)

	for range 3 {
		c.Frame()
	}
	if n := strings.Count(logs.String(), "no tilemap"); n != 1 {
		t.Errorf("Expected one log line over three frames, got %d: %q", n, logs.String())
	}

	world.Resource = 2
	c.Frame()
	c.Frame()
	if n := strings.Count(logs.String(), "no tilemap"); n != 2 {
		t.Errorf("Expected a new slot to log again, got %d lines", n)
	}

	// a filled slot that empties again is a new report
	world.Resource, _ = c.AddTilemap(render.NewTilemap(tex, 16, 16))
	c.Frame()
	world.Resource = 3
	c.Frame()
	if n := strings.Count(logs.String(), "no tilemap"); n != 3 {
		t.Errorf("Expected re-emptied layer to log again, got %d lines", n)
	}
}

func TestResizeLayerGrowsSharedMask(t *testing.T) {
	c := render.NewContext(record.New(), testConfig(), render.WithStrict(true))
	if err := c.SetWorldMask(2, 2, 80); err != nil {
		t.Fatalf("SetWorldMask failed: %v", err)
	}

	world, _ := c.World.Layer(0)
	c.ResizeLayer(world, 20, 20)
	if err := c.SetWorldMask(15, 15, 50); err != nil {
		t.Fatalf("Expected SetWorldMask inside the grown layer to succeed, got %v", err)
	}
	if len(world.Masks()) != 1 {
		t.Errorf("Expected the shared mask resized in place, got %d masks", len(world.Masks()))
	}

	c.SetWorldTileChar(15, 15, "#")
	c.SetWorldTileChar(2, 2, "#")
	if v := c.Policy().Visibility(c.World, 0, 15, 15, layer.TargetGrid); v != 50 {
		t.Errorf("Expected 50 at (15,15), got %d", v)
	}
	if v := c.Policy().Visibility(c.World, 0, 2, 2, layer.TargetGrid); v != 80 {
		t.Errorf("Expected (2,2) to keep 80 across the resize, got %d", v)
	}
}

func TestLenientAndStrictErrors(t *testing.T) {
	var logs bytes.Buffer
	lenient := render.NewContext(record.New(), testConfig(), render.WithLogger(log.New(&logs, "", 0)))
	if err := lenient.SetWorldTileChar(10, 0, "x"); err != nil {
		t.Errorf("Expected lenient mode to swallow error, got %v", err)
	}
	if !strings.Contains(logs.String(), "set world tile:") {
		t.Errorf("Expected error logged, got %q", logs.String())
	}

	strict := render.NewContext(record.New(), testConfig(), render.WithStrict(true))
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"tile x == width", strict.SetWorldTileChar(10, 0, "x"), layer.ErrOutOfBounds},
		{"ui tile y == height", strict.SetUITileChar(0, 10, "x"), layer.ErrOutOfBounds},
		{"missing layer", strict.SetWorldLayerTile(3, 0, 0, tile.Char("x")), layer.ErrOutOfBounds},
		{"insert past count", strict.InsertWorldLayer(5, layer.New(1, 1)), layer.ErrOutOfBounds},
		{"mask out of range", strict.SetUIMask(-1, 0, 0), layer.ErrOutOfBounds},
		{"unknown entity", strict.MoveEntity(42, tile.Vector2{}), layer.ErrUnknownEntity},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.err)
		}
	}
}

func TestObserverPhases(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())

	var order []string
	mark := func(name string, col color.RGBA) func(*render.Context) {
		return func(ctx *render.Context) {
			order = append(order, name)
			if col.A != 0 {
				ctx.Backend().FillRect(tile.Rect{}, col)
			}
		}
	}
	worldMark := color.RGBA{R: 1, A: 1}
	uiMark := color.RGBA{G: 1, A: 1}
	c.Observe(render.PhasePostDraw, mark("post", color.RGBA{}))
	c.Observe(render.PhaseUI, mark("ui", uiMark))
	c.Observe(render.PhaseWorld, mark("world", worldMark))
	c.Observe(render.PhasePreDraw, mark("pre", color.RGBA{}))
	c.Observe(render.PhasePreDraw, nil)

	c.Frame()

	if diff := cmp.Diff([]string{"pre", "world", "ui", "post"}, order); diff != "" {
		t.Errorf("Phase order mismatch (-want +got):\n%s", diff)
	}

	var ops []string
	for _, call := range b.Calls {
		op := string(call.Op)
		switch call.Color {
		case worldMark:
			op = "world"
		case uiMark:
			op = "ui"
		}
		ops = append(ops, op)
	}
	want := []string{"begin_frame", "begin_camera", "world", "end_camera", "ui", "end_frame"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("Hook placement mismatch (-want +got):\n%s", diff)
	}
}

func TestFontRegistry(t *testing.T) {
	c := render.NewContext(record.New(), testConfig(),
		render.WithStrict(true),
		render.WithLoader(&record.Loader{TextureWidth: 32, TextureHeight: 16}))

	slot, err := c.LoadFont("fonts/mono.ttf", 24)
	if err != nil || slot != 0 {
		t.Fatalf("Expected slot 0, got %d %v", slot, err)
	}
	if c.Font(0) == nil || c.Font(1) != nil {
		t.Error("Expected only slot 0 to hold a font")
	}
	for i := 1; i < render.MaxResources; i++ {
		if _, err := c.AddFont(&record.Font{}); err != nil {
			t.Fatalf("AddFont %d failed: %v", i, err)
		}
	}
	if _, err := c.AddFont(&record.Font{}); !errors.Is(err, layer.ErrCapacityExceeded) {
		t.Errorf("Expected ErrCapacityExceeded, got %v", err)
	}
	if c.Fonts() != render.MaxResources {
		t.Errorf("Expected registry untouched at %d, got %d", render.MaxResources, c.Fonts())
	}

	tm, err := c.LoadTilemap("tiles.png", 8, 8)
	if err != nil {
		t.Fatalf("LoadTilemap failed: %v", err)
	}
	if c.Tilemap(tm).Count != 8 {
		t.Errorf("Expected 4x2 = 8 tiles, got %d", c.Tilemap(tm).Count)
	}
}

func TestGlyphLayerUsesFontSlot(t *testing.T) {
	b := record.New()
	c := render.NewContext(b, testConfig())
	f := &record.Font{Path: "a.ttf"}
	slot, _ := c.AddFont(f)

	world, _ := c.World.Layer(0)
	world.Resource = slot
	c.SetWorldTileChar(0, 0, "x")
	c.SetUITileChar(0, 0, "y")
	ui, _ := c.UI.Layer(0)
	ui.Resource = 7

	c.Frame()
	texts := b.Filter(record.OpDrawText)
	if texts[0].Font != f {
		t.Error("Expected world text drawn with registered font")
	}
	if texts[1].Font != nil {
		t.Error("Expected empty slot to fall back to the default font")
	}
}

func TestGridOutline(t *testing.T) {
	b := record.New()
	cfg := testConfig()
	cfg.GridOutline = true
	c := render.NewContext(b, cfg)
	c.SetWorldTileChar(0, 0, "x")

	c.Frame()
	strokes := b.Filter(record.OpStrokeRect)
	if len(strokes) != 1 || strokes[0].Color != cfg.OutlineColor {
		t.Errorf("Expected one outline stroke, got %+v", strokes)
	}
}

func TestCloseReleasesResources(t *testing.T) {
	c := render.NewContext(record.New(), testConfig())
	f := &record.Font{}
	tex := &record.Texture{Width: 16, Height: 16}
	c.AddFont(f)
	c.AddTilemap(render.NewTilemap(tex, 16, 16))
	id := c.NewEntity(tile.Char("@"), tile.Vector2{})
	c.AddWorldEntity(0, id)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !f.Closed || !tex.Closed {
		t.Error("Expected font and texture closed")
	}
	if c.World.Len() != 0 || c.UI.Len() != 0 {
		t.Error("Expected stacks released")
	}
	if c.Entity(id).Linked() {
		t.Error("Expected entity unlinked")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got %v", err)
	}
}

func TestEndFrameErrorSurfaces(t *testing.T) {
	b := record.New()
	b.EndErr = errors.New("present failed")
	c := render.NewContext(b, testConfig())
	if err := c.Frame(); !errors.Is(err, b.EndErr) {
		t.Errorf("Expected EndFrame error, got %v", err)
	}
}
