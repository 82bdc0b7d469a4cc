package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"refl/internal/core"
	"refl/internal/log"
	"refl/internal/metrics"
	"refl/internal/store"
)

// SyncPublisher announces new entries to the sheets mirror. The AMQP client implements it.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id int64) error
}

// EntryService classifies and stores incoming messages
type EntryService struct {
	store      store.EntryStore
	publisher  SyncPublisher
	classifier *core.Classifier
	metrics    *metrics.Metrics
	now        func() time.Time
}

// EntryOption customizes an EntryService.
type EntryOption func(*EntryService)

// WithPublisher enables sync messages after each append.
func WithPublisher(p SyncPublisher) EntryOption {
	return func(s *EntryService) { s.publisher = p }
}

// WithMetrics counts logged entries by category.
func WithMetrics(m *metrics.Metrics) EntryOption {
	return func(s *EntryService) { s.metrics = m }
}

// WithClassifier replaces the default rule set.
func WithClassifier(c *core.Classifier) EntryOption {
	return func(s *EntryService) { s.classifier = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EntryOption {
	return func(s *EntryService) { s.now = now }
}

func NewEntryService(st store.EntryStore, opts ...EntryOption) *EntryService {
	s := &EntryService{
		store:      st,
		classifier: core.NewClassifier(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogMessage classifies text, stores it and announces it for syncing.
// Blank text is stored as a general entry. Publishing is best effort: a failure
// is logged and the stored entry is still returned.
func (s *EntryService) LogMessage(ctx context.Context, text string) (core.Entry, error) {
	c := s.classifier.Classify(text)
	entry, err := s.store.Append(ctx, core.NewEntry(c, s.now()))
	if err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	s.metrics.RecordEntry(entry.Category.String())

	slog.InfoContext(ctx, "Entry logged",
		log.NewFields().WithEntry(entry.ID, entry.Category.String(), entry.Quantity, entry.Unit).ToSlice()...)

	if s.publisher != nil {
		if err := s.publisher.PublishEntrySync(ctx, entry.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", log.FieldEntryID, entry.ID, log.FieldError, err)
		}
	}

	return entry, nil
}

// Recent returns the newest entries first
func (s *EntryService) Recent(ctx context.Context, limit int) ([]core.Entry, error) {
	entries, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return entries, nil
}
