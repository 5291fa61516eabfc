package main

import (
	"context"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tilegrid/backend/term"
)

// runTerminal drives the scene on a tcell screen until Esc, Ctrl-C or ctx
// cancellation
func runTerminal(ctx context.Context, screen tcell.Screen, fps int, build builder) error {
	b := term.New(screen)
	c, s, err := build(b)
	if err != nil {
		return err
	}
	defer c.Close()

	s.follow(screen.Size())

	interval := 16 * time.Millisecond
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !handleKey(s, ev) {
				return nil
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				s.follow(screen.Size())
			}

		case <-ticker.C:
			if err := c.Frame(); err != nil {
				log.Printf("frame: %v", err)
				return err
			}
		}
	}
}

// handleKey applies movement keys; false means quit
func handleKey(s *scene, ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		s.move(0, -1)
	case tcell.KeyDown:
		s.move(0, 1)
	case tcell.KeyLeft:
		s.move(-1, 0)
	case tcell.KeyRight:
		s.move(1, 0)
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q':
			return false
		case 'w', 'k':
			s.move(0, -1)
		case 's', 'j':
			s.move(0, 1)
		case 'a', 'h':
			s.move(-1, 0)
		case 'd', 'l':
			s.move(1, 0)
		}
	}
	return true
}
