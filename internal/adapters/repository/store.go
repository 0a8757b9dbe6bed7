// Package repository persists the roster and rotation history.
//
// Every backend stores the same JSON-compatible shape (model.State) and
// saves it as a whole, so one allocation run is either fully persisted or
// not at all.
package repository

import (
	"context"

	"github.com/okian/dutyrota/internal/domain/model"
)

// Store loads and saves the rotation state.
type Store interface {
	// Load returns the last saved state, or ErrNotFound if nothing was saved yet.
	Load(ctx context.Context) (model.State, error)

	// Save replaces the stored state.
	Save(ctx context.Context, s model.State) error

	// Close releases the backend.
	Close() error
}
