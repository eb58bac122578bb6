package audit

import (
	"context"
	"time"
)

// Store persists guard event entries.
type Store interface {
	// Save persists one entry.
	Save(ctx context.Context, entry *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)

	// PruneBefore deletes entries that occurred before the cutoff and
	// returns how many were deleted.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Cap deletes the oldest entries until at most maxRows remain and
	// returns how many were deleted. maxRows <= 0 is a no-op.
	Cap(ctx context.Context, maxRows int64) (int64, error)

	// Close releases the store's resources.
	Close() error
}
