package memory

import (
	"context"
	"fmt"
	"sync"

	"acconti/internal/core"

	ports "acconti/internal/sheets"
)

// Store is an in-memory deposit ledger, used in tests and when no
// spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []core.Deposit
}

var (
	_ ports.DepositWriter = (*Store)(nil)
	_ ports.DepositLister = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the deposit and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, d core.Deposit) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListDeposits returns the stored rows for one invoice, in append order.
func (s *Store) ListDeposits(_ context.Context, invoiceID string) ([]core.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Deposit
	for _, d := range s.items {
		if d.InvoiceID == invoiceID {
			out = append(out, d)
		}
	}
	return out, nil
}
