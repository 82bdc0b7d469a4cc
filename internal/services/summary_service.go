package services

import (
	"context"
	"fmt"
	"time"

	"refl/internal/core"
	"refl/internal/store"
)

// SummaryService aggregates stored entries over a window
type SummaryService struct {
	reader store.EntryReader
	now    func() time.Time
}

func NewSummaryService(reader store.EntryReader) *SummaryService {
	return &SummaryService{reader: reader, now: time.Now}
}

// Summary counts entries logged within the window ending now
func (s *SummaryService) Summary(ctx context.Context, w core.Window) (core.Summary, error) {
	now := s.now().UTC()
	entries, err := s.reader.ListSince(ctx, core.Cutoff(now, w.Duration))
	if err != nil {
		return core.Summary{}, fmt.Errorf("list entries for %s summary: %w", w.Name, err)
	}
	return core.SummarizeAt(entries, w.Duration, now), nil
}
