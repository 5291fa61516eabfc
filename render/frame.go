package render

import (
	"context"
	"errors"
	"time"
)

// Phase selects where in a frame an observer runs
type Phase uint8

const (
	// PhasePreDraw runs before the frame begins
	PhasePreDraw Phase = iota
	// PhaseWorld runs after the world layers, still under the camera
	PhaseWorld
	// PhaseUI runs after the UI layers, before the frame is presented
	PhaseUI
	// PhasePostDraw runs after the frame is presented
	PhasePostDraw
	phaseCount
)

// Stats counts the work of the last frame
type Stats struct {
	Frame         uint64 // frames drawn since NewContext
	CellsVisited  int
	CellsDrawn    int
	CellsMasked   int // non-empty cells and entities fully hidden by masks
	EntitiesDrawn int
	DrawCalls     int
	Duration      time.Duration
}

// Observe registers fn to run at phase on every frame
// Observers run in registration order
func (c *Context) Observe(phase Phase, fn func(*Context)) {
	if fn == nil || phase >= phaseCount {
		return
	}
	c.observers[phase] = append(c.observers[phase], fn)
}

func (c *Context) notify(phase Phase) {
	for _, fn := range c.observers[phase] {
		fn(c)
	}
}

// Stats returns the counters of the last completed frame
func (c *Context) Stats() Stats { return c.stats }

// Frame draws one frame: world stack under the camera, then the UI stack
// The frame always completes; the first draw error is returned in strict mode
func (c *Context) Frame() error {
	start := time.Now()
	c.stats = Stats{Frame: c.stats.Frame + 1}

	c.notify(PhasePreDraw)

	b := c.backend
	b.BeginFrame(c.cfg.Clear)

	b.BeginCamera(c.Camera)
	worldErr := c.DrawStack(c.World)
	c.notify(PhaseWorld)
	b.EndCamera()

	uiErr := c.DrawStack(c.UI)
	c.notify(PhaseUI)

	endErr := b.EndFrame()
	c.stats.Duration = time.Since(start)

	c.notify(PhasePostDraw)
	return errors.Join(worldErr, uiErr, endErr)
}

// Run draws frames until ctx is done or shouldClose reports true
// Frames are paced at Config.FPS; a nil shouldClose never closes
func (c *Context) Run(ctx context.Context, shouldClose func() bool) error {
	var tick <-chan time.Time
	if c.cfg.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(c.cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if shouldClose != nil && shouldClose() {
			return nil
		}
		if err := c.Frame(); err != nil {
			return err
		}
		if tick == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
}

// Close releases every layer, mask, entity link, font and tilemap
// The context must not be drawn after Close
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	c.World.Release(c.Entities)
	c.UI.Release(c.Entities)
	c.worldMask, c.uiMask = nil, nil
	clear(c.missing)
	c.Assoc.Reset()

	var errs []error
	for _, f := range c.fonts {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	for _, tm := range c.tilemaps {
		if tm != nil && tm.Texture != nil {
			errs = append(errs, tm.Texture.Close())
		}
	}
	c.fonts, c.tilemaps = nil, nil
	for i := range c.observers {
		c.observers[i] = nil
	}
	return errors.Join(errs...)
}
