package state

import (
	"context"
	"errors"
)

// ErrCorrupt is returned by Load when the saved views cannot be decoded.
var ErrCorrupt = errors.New("saved views are corrupt")

// Repository handles view persistence.
// Implementations persist state to disk (or other storage) atomically.
type Repository interface {
	// Load retrieves the saved views.
	// Returns an empty state and nil error if nothing was saved.
	// Returns an error only for actual read failures.
	Load(ctx context.Context) (State, error)

	// Save persists the views atomically.
	// The implementation should use atomic writes (e.g., write to temp file, then rename)
	// so an interrupted save never leaves a corrupt file behind.
	Save(ctx context.Context, state State) error
}
