package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"refl/internal/core"
)

// Store keeps entries in process memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	items  []core.Entry
}

func New() *Store {
	return &Store{nextID: 1}
}

// Append assigns the next ID and stores a copy of the entry.
func (s *Store) Append(_ context.Context, e core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	e.Timestamp = e.Timestamp.UTC()
	s.nextID++
	s.items = append(s.items, e)
	return e, nil
}

// ListSince returns entries at or after cutoff, oldest first.
func (s *Store) ListSince(_ context.Context, cutoff time.Time) ([]core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Entry, 0, len(s.items))
	for _, e := range s.items {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// ListRecent returns up to limit entries, newest first. Ties keep the later ID first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]core.Entry, error) {
	if limit <= 0 {
		return []core.Entry{}, nil
	}
	s.mu.RLock()
	out := append([]core.Entry(nil), s.items...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many entries are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
