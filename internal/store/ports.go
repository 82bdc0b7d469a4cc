package store

import (
	"context"
	"errors"
	"time"

	"refl/internal/core"
)

// ErrNotFound is returned when an entry with the requested ID does not exist.
var ErrNotFound = errors.New("entry not found")

// Ports for the entry stores.
type (
	EntryWriter interface {
		// Append persists the entry and returns it with the assigned ID.
		Append(ctx context.Context, e core.Entry) (core.Entry, error)
	}

	EntryReader interface {
		// ListSince returns entries with Timestamp >= cutoff, oldest first.
		ListSince(ctx context.Context, cutoff time.Time) ([]core.Entry, error)
		// ListRecent returns at most limit entries, newest first.
		ListRecent(ctx context.Context, limit int) ([]core.Entry, error)
	}

	EntryStore interface {
		EntryWriter
		EntryReader
	}
)
