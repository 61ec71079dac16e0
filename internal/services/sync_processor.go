package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"acconti/internal/sheets"
	"acconti/internal/storage"
)

// SyncProcessorConfig holds configuration for the catch-up poller.
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending deposits.
	PollInterval time.Duration

	// BatchSize is the max number of deposits to mirror per poll cycle.
	BatchSize int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// SyncProcessor is the poll-based catch-up path behind the AMQP consumer:
// deposits whose sync message was lost (broker down at write time) are
// picked up from the pending queue and mirrored to the ledger.
type SyncProcessor struct {
	storage *storage.SQLiteRepository
	ledger  sheets.DepositWriter
	config  SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new catch-up poller.
func NewSyncProcessor(storage *storage.SQLiteRepository, ledger sheets.DepositWriter, config SyncProcessorConfig) *SyncProcessor {
	return &SyncProcessor{
		storage: storage,
		ledger:  ledger,
		config:  config,
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	p.processBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

// processBatch mirrors one batch of pending deposits to the ledger.
func (p *SyncProcessor) processBatch(ctx context.Context) {
	pending, err := p.storage.GetPendingSyncDeposits(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch pending deposits", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(pending))

	for _, item := range pending {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.syncDeposit(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync deposit",
				"id", item.ID, "error", err)
			if markErr := p.storage.MarkSyncError(ctx, item.ID); markErr != nil {
				slog.WarnContext(ctx, "Failed to mark sync error",
					"id", item.ID, "error", markErr)
			}
		}
	}
}

func (p *SyncProcessor) syncDeposit(ctx context.Context, id string) error {
	deposit, err := p.storage.GetDeposit(ctx, id)
	if err != nil {
		return fmt.Errorf("get deposit %s: %w", id, err)
	}

	ref, err := p.ledger.Append(ctx, deposit)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := p.storage.MarkSynced(ctx, id); err != nil {
		// The append succeeded; the deposit will be re-mirrored next
		// cycle, which the ledger tolerates.
		slog.WarnContext(ctx, "Failed to mark deposit as synced",
			"id", id, "error", err)
	}

	slog.InfoContext(ctx, "Mirrored deposit to ledger",
		"id", id, "ledger_ref", ref)
	return nil
}
