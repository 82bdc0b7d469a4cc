package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"refl/internal/core"
	"refl/internal/log"
	"refl/internal/store"

	_ "modernc.org/sqlite"
)

// timestampLayout is fixed width and always UTC, so string order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements store.EntryWriter
func (r *SQLiteRepository) Append(ctx context.Context, e core.Entry) (core.Entry, error) {
	row, err := r.queries.CreateLogEntry(ctx, CreateLogEntryParams{
		Message:   e.Message,
		LogType:   e.Category.String(),
		Quantity:  nullFloat(e.Quantity),
		Unit:      nullString(e.Unit),
		Timestamp: formatTimestamp(e.Timestamp),
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("create log entry: %w", err)
	}

	saved, err := toEntry(row)
	if err != nil {
		return core.Entry{}, err
	}

	slog.DebugContext(ctx, "Entry saved to SQLite",
		log.FieldEntryID, saved.ID,
		log.FieldCategory, saved.Category,
		"timestamp", row.Timestamp)

	return saved, nil
}

// ListSince implements store.EntryReader
func (r *SQLiteRepository) ListSince(ctx context.Context, cutoff time.Time) ([]core.Entry, error) {
	rows, err := r.queries.ListLogEntriesSince(ctx, formatTimestamp(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list entries since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return toEntries(rows)
}

// ListRecent implements store.EntryReader
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Entry, error) {
	if limit <= 0 {
		return []core.Entry{}, nil
	}
	rows, err := r.queries.ListRecentLogEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return toEntries(rows)
}

// GetEntry retrieves a single entry by ID
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	row, err := r.queries.GetLogEntry(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Entry{}, fmt.Errorf("get entry %d: %w", id, store.ErrNotFound)
		}
		return core.Entry{}, fmt.Errorf("get entry by id: %w", err)
	}
	return toEntry(row)
}

// PendingSyncEntry represents minimal data needed for sync queue messages
type PendingSyncEntry struct {
	ID        int64
	Timestamp time.Time
	Status    string
}

// GetPendingSyncEntries returns entries not yet mirrored to Google Sheets, oldest first
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.queries.GetPendingSyncLogEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}

	pending := make([]PendingSyncEntry, 0, len(rows))
	for _, row := range rows {
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", row.ID, err)
		}
		pending = append(pending, PendingSyncEntry{ID: row.ID, Timestamp: ts, Status: row.SyncStatus})
	}
	return pending, nil
}

// MarkSynced marks an entry as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	n, err := r.queries.MarkLogEntrySynced(ctx, formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark entry %d synced: %w", id, store.ErrNotFound)
	}

	slog.InfoContext(ctx, "Entry marked as synced", log.FieldEntryID, id)
	return nil
}

// MarkSyncError marks an entry as having sync errors so the backstop retries it
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	n, err := r.queries.MarkLogEntrySyncError(ctx, id)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark entry %d sync error: %w", id, store.ErrNotFound)
	}

	slog.WarnContext(ctx, "Entry marked with sync error", log.FieldEntryID, id)
	return nil
}

func toEntries(rows []LogEntry) ([]core.Entry, error) {
	entries := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := toEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toEntry(row LogEntry) (core.Entry, error) {
	ts, err := parseTimestamp(row.Timestamp)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d: %w", row.ID, err)
	}
	e := core.Entry{
		ID:        row.ID,
		Message:   row.Message,
		Category:  core.Category(row.LogType),
		Timestamp: ts,
	}
	if row.Quantity.Valid {
		q := row.Quantity.Float64
		e.Quantity = &q
	}
	if row.Unit.Valid {
		u := row.Unit.String
		e.Unit = &u
	}
	return e, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
