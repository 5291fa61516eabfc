package layer

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports a cell, mask or stack index outside its grid
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrCapacityExceeded reports a fixed-size registry that is full
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUnknownEntity reports an entity id not allocated in the pool
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrListCorrupt reports an entity list that no longer terminates
	ErrListCorrupt = errors.New("entity list corrupt")
)

// BoundsError describes an out-of-bounds address
type BoundsError struct {
	What          string // "cell", "mask", "stack"
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	if e.What == "stack" {
		return fmt.Sprintf("stack index %d outside [0,%d]", e.X, e.Width)
	}
	return fmt.Sprintf("%s (%d,%d) outside %dx%d", e.What, e.X, e.Y, e.Width, e.Height)
}

// Is matches ErrOutOfBounds
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

func cellError(what string, x, y, w, h int) error {
	return &BoundsError{What: what, X: x, Y: y, Width: w, Height: h}
}

func stackError(index, count int) error {
	return &BoundsError{What: "stack", X: index, Width: count}
}
