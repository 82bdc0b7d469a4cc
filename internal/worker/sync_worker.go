package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"refl/internal/amqp"
	"refl/internal/core"
	"refl/internal/log"
	"refl/internal/metrics"
	"refl/internal/storage"
	"refl/internal/store"
)

// SyncStore is the part of the SQLite repository the worker needs.
type SyncStore interface {
	GetEntry(ctx context.Context, id int64) (core.Entry, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// EntryMirror receives copies of stored entries, e.g. the Google Sheets client.
type EntryMirror interface {
	Append(ctx context.Context, e core.Entry) (ref string, err error)
}

// SyncWorker mirrors entries from SQLite to Google Sheets
type SyncWorker struct {
	storage   SyncStore
	mirror    EntryMirror
	metrics   *metrics.Metrics
	batchSize int
}

func NewSyncWorker(storage SyncStore, mirror EntryMirror, m *metrics.Metrics, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		mirror:    mirror,
		metrics:   m,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", log.FieldEntryID, msg.ID)

	entry, err := w.storage.GetEntry(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Requeueing cannot help; drop it
			slog.WarnContext(ctx, "Sync message for unknown entry, dropping", log.FieldEntryID, msg.ID)
			return nil
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to sheets: %w", err)
	}
	return nil
}

// ProcessPendingEntries syncs one batch of entries that were never mirrored.
// It is the backstop for lost AMQP messages.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck syncs a larger backlog once when the worker starts
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"total", synced+failed,
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}

		entry, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", log.FieldEntryID, p.ID, log.FieldError, err)
			if markErr := w.storage.MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", log.FieldEntryID, p.ID, log.FieldError, markErr)
			}
			failed++
			continue
		}

		if err := w.syncEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", log.FieldEntryID, p.ID, log.FieldError, err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncEntry(ctx context.Context, e core.Entry) error {
	ref, err := w.mirror.Append(ctx, e)
	w.metrics.RecordSync(err)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, e.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", log.FieldEntryID, e.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, e.ID); err != nil {
		// The row is already in the sheet; a later backstop pass may duplicate it
		slog.ErrorContext(ctx, "Failed to mark as synced", log.FieldEntryID, e.ID, log.FieldError, err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		log.FieldEntryID, e.ID,
		log.FieldCategory, e.Category,
		log.FieldSheetsRef, ref)
	return nil
}
