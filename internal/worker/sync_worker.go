package worker

import (
	"context"
	"fmt"
	"log/slog"

	"acconti/internal/amqp"
	"acconti/internal/sheets"
	"acconti/internal/storage"
)

// SyncWorker mirrors deposits from SQLite to the external ledger. It is
// driven by AMQP sync messages, with a startup sweep over the pending
// queue to recover from dropped messages or worker downtime.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.DepositWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger sheets.DepositWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single deposit sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DepositSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	return w.mirrorDeposit(ctx, msg.ID)
}

// StartupSyncCheck sweeps the pending queue once at worker startup.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncDeposits(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending deposits for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending deposits found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending deposits on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, item := range pending {
		if err := w.mirrorDeposit(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync deposit during startup",
				"id", item.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) mirrorDeposit(ctx context.Context, id string) error {
	deposit, err := w.storage.GetDeposit(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get deposit from storage: %w", err)
	}

	ref, err := w.ledger.Append(ctx, deposit)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The append went through, so the message must not be redelivered.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced deposit",
		"id", id,
		"ledger_ref", ref,
		"invoice_id", deposit.InvoiceID,
		"amount", deposit.Amount.String())

	return nil
}
