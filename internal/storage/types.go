package storage

import (
	"context"
	"errors"
	"time"

	"dogcare/internal/care"
)

var ErrClosed = errors.New("storage closed")

// Config configures storage.
//
// Driver values:
//   - "memory" (or empty): in-process map
//   - "sqlite": SQLite database; Path defaults to ":memory:"
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the pet profile store. One profile per owner.
//
// The stored profile's Owner always equals the key it was written under.
// The store performs no validation of profile contents.
type Store interface {
	// Upsert replaces any existing profile for owner. No merge.
	Upsert(ctx context.Context, owner care.OwnerID, p care.Profile) error
	// Get returns ok=false when owner has no profile.
	Get(ctx context.Context, owner care.OwnerID) (p care.Profile, ok bool, err error)
	// Delete reports whether a profile existed. Absent owners are not an error.
	Delete(ctx context.Context, owner care.OwnerID) (bool, error)
	// ForEach calls fn for every profile of a snapshot taken when ForEach
	// starts, ordered by owner. A non-nil error from fn stops the iteration
	// and is returned.
	ForEach(ctx context.Context, fn func(owner care.OwnerID, p care.Profile) error) error
	Close() error
}
