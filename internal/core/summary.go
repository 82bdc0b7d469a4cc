package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrInvalidWindow = errors.New("invalid summary window")

// Window is a named look-back duration used to select entries for a summary.
type Window struct {
	Name     string
	Title    string
	Duration time.Duration
}

var (
	Daily   = Window{Name: "daily", Title: "Daily", Duration: 24 * time.Hour}
	Weekly  = Window{Name: "weekly", Title: "Weekly", Duration: 7 * 24 * time.Hour}
	Monthly = Window{Name: "monthly", Title: "Monthly", Duration: 30 * 24 * time.Hour}
)

// Windows returns the standing summary windows, shortest first.
func Windows() []Window {
	return []Window{Daily, Weekly, Monthly}
}

// ParseWindow resolves a window by name (case-insensitive).
func ParseWindow(name string) (Window, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, w := range Windows() {
		if w.Name == name {
			return w, nil
		}
	}
	return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, name)
}

// Summary counts entries per category since a cutoff.
// CountsByType only has keys for categories that were observed.
type Summary struct {
	Since        time.Time        `json:"since"`
	TotalEntries int              `json:"total_entries"`
	CountsByType map[Category]int `json:"counts_by_type"`
}

// Cutoff returns now minus window, the inclusive lower bound for selection.
func Cutoff(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}

// Summarize counts entries with a timestamp at or after time.Now() minus window.
func Summarize(entries []Entry, window time.Duration) Summary {
	return SummarizeAt(entries, window, time.Now().UTC())
}

// SummarizeAt is Summarize with an explicit clock.
func SummarizeAt(entries []Entry, window time.Duration, now time.Time) Summary {
	cutoff := Cutoff(now, window)
	s := Summary{
		Since:        cutoff,
		CountsByType: make(map[Category]int),
	}
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		s.CountsByType[e.Category]++
		s.TotalEntries++
	}
	return s
}

// SortedCategories returns the observed categories ordered by name.
func (s Summary) SortedCategories() []Category {
	out := make([]Category, 0, len(s.CountsByType))
	for c := range s.CountsByType {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormatSummary renders a summary as the plain-text notification body.
func FormatSummary(title string, s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s summary for %s", title, s.Since.Format("2006-01-02"))
	for _, c := range s.SortedCategories() {
		fmt.Fprintf(&b, "\n• %s: %d", capitalize(string(c)), s.CountsByType[c])
	}
	fmt.Fprintf(&b, "\nTotal entries: %d", s.TotalEntries)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
