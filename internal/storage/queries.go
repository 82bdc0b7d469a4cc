package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// LogEntry is a row of log_entries.
type LogEntry struct {
	ID         int64
	Message    string
	LogType    string
	Quantity   sql.NullFloat64
	Unit       sql.NullString
	Timestamp  string
	SyncStatus string
	SyncedAt   sql.NullString
}

const logEntryColumns = `id, message, log_type, quantity, unit, timestamp, sync_status, synced_at`

func scanLogEntry(row interface{ Scan(...interface{}) error }) (LogEntry, error) {
	var i LogEntry
	err := row.Scan(
		&i.ID,
		&i.Message,
		&i.LogType,
		&i.Quantity,
		&i.Unit,
		&i.Timestamp,
		&i.SyncStatus,
		&i.SyncedAt,
	)
	return i, err
}

const createLogEntry = `-- name: CreateLogEntry :one
INSERT INTO log_entries (message, log_type, quantity, unit, timestamp)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + logEntryColumns

type CreateLogEntryParams struct {
	Message   string
	LogType   string
	Quantity  sql.NullFloat64
	Unit      sql.NullString
	Timestamp string
}

func (q *Queries) CreateLogEntry(ctx context.Context, arg CreateLogEntryParams) (LogEntry, error) {
	row := q.db.QueryRowContext(ctx, createLogEntry,
		arg.Message,
		arg.LogType,
		arg.Quantity,
		arg.Unit,
		arg.Timestamp,
	)
	return scanLogEntry(row)
}

const getLogEntry = `-- name: GetLogEntry :one
SELECT ` + logEntryColumns + ` FROM log_entries WHERE id = ?`

func (q *Queries) GetLogEntry(ctx context.Context, id int64) (LogEntry, error) {
	row := q.db.QueryRowContext(ctx, getLogEntry, id)
	return scanLogEntry(row)
}

const listLogEntriesSince = `-- name: ListLogEntriesSince :many
SELECT ` + logEntryColumns + ` FROM log_entries
WHERE timestamp >= ?
ORDER BY timestamp ASC, id ASC`

func (q *Queries) ListLogEntriesSince(ctx context.Context, cutoff string) ([]LogEntry, error) {
	return q.list(ctx, listLogEntriesSince, cutoff)
}

const listRecentLogEntries = `-- name: ListRecentLogEntries :many
SELECT ` + logEntryColumns + ` FROM log_entries
ORDER BY timestamp DESC, id DESC
LIMIT ?`

func (q *Queries) ListRecentLogEntries(ctx context.Context, limit int64) ([]LogEntry, error) {
	return q.list(ctx, listRecentLogEntries, limit)
}

const getPendingSyncLogEntries = `-- name: GetPendingSyncLogEntries :many
SELECT ` + logEntryColumns + ` FROM log_entries
WHERE sync_status IN ('pending', 'error')
ORDER BY id ASC
LIMIT ?`

func (q *Queries) GetPendingSyncLogEntries(ctx context.Context, limit int64) ([]LogEntry, error) {
	return q.list(ctx, getPendingSyncLogEntries, limit)
}

const markLogEntrySynced = `-- name: MarkLogEntrySynced :execrows
UPDATE log_entries SET sync_status = 'synced', synced_at = ? WHERE id = ?`

func (q *Queries) MarkLogEntrySynced(ctx context.Context, syncedAt string, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markLogEntrySynced, syncedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markLogEntrySyncError = `-- name: MarkLogEntrySyncError :execrows
UPDATE log_entries SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkLogEntrySyncError(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markLogEntrySyncError, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]LogEntry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LogEntry{}
	for rows.Next() {
		i, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
