package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"acconti/internal/core"
)

// DepositStore is the persistence surface the service needs.
type DepositStore interface {
	CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error)
	ListDeposits(ctx context.Context, invoiceID string) ([]core.Deposit, error)
}

// SyncPublisher queues a deposit for mirroring to the external ledger.
type SyncPublisher interface {
	PublishDepositSync(ctx context.Context, id string, version int64) error
}

// DepositService orchestrates deposit writes: validate, persist, queue the
// ledger sync, and signal chart subscribers. Reads pass straight through
// to the store.
type DepositService struct {
	store     DepositStore
	publisher SyncPublisher
	notifier  *ChangeNotifier
}

func NewDepositService(store DepositStore, publisher SyncPublisher, notifier *ChangeNotifier) *DepositService {
	return &DepositService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
	}
}

// CreateDeposit saves a deposit and publishes its sync message. The sync
// publish is best-effort: a broker outage never fails the request, the
// poll-based catch-up picks the deposit up later.
func (s *DepositService) CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}

	saved, err := s.store.CreateDeposit(ctx, d)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("save deposit: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDepositSync(ctx, saved.ID, 1); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", saved.ID, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.Notify(saved.InvoiceID)
	}
	return saved, nil
}

// ListDeposits returns all deposits for an invoice, ordered by date.
func (s *DepositService) ListDeposits(ctx context.Context, invoiceID string) ([]core.Deposit, error) {
	return s.store.ListDeposits(ctx, invoiceID)
}
