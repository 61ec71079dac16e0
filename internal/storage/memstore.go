package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"acconti/internal/core"
)

// MemoryStore is an in-memory deposit store for local development and
// tests. It mirrors the SQLite repository's ordering guarantees: deposits
// list by date first, insertion order second.
type MemoryStore struct {
	mu       sync.Mutex
	deposits map[string]memoryDeposit
	nextSeq  int
}

type memoryDeposit struct {
	deposit core.Deposit
	seq     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deposits: make(map[string]memoryDeposit)}
}

func (s *MemoryStore) CreateDeposit(_ context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deposits[d.ID]; exists {
		return core.Deposit{}, fmt.Errorf("deposit %s already exists", d.ID)
	}

	s.deposits[d.ID] = memoryDeposit{deposit: d, seq: s.nextSeq}
	s.nextSeq++
	return d, nil
}

func (s *MemoryStore) ListDeposits(_ context.Context, invoiceID string) ([]core.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []memoryDeposit
	for _, md := range s.deposits {
		if md.deposit.InvoiceID == invoiceID {
			matched = append(matched, md)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		di, dj := matched[i].deposit.Date, matched[j].deposit.Date
		if di.Before(dj.Time) {
			return true
		}
		if dj.Before(di.Time) {
			return false
		}
		return matched[i].seq < matched[j].seq
	})

	out := make([]core.Deposit, len(matched))
	for i, md := range matched {
		out[i] = md.deposit
	}
	return out, nil
}

func (s *MemoryStore) GetDeposit(_ context.Context, id string) (core.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	md, exists := s.deposits[id]
	if !exists {
		return core.Deposit{}, fmt.Errorf("deposit not found: %s", id)
	}
	return md.deposit, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
