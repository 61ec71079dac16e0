package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"acconti/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "acconti.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndListDeposits(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := []core.Deposit{
		{ID: "dep-2", InvoiceID: "inv-1", Amount: decimal.RequireFromString("25"), Date: core.NewDate(2024, 1, 10)},
		{ID: "dep-1", InvoiceID: "inv-1", Amount: decimal.RequireFromString("100.50"), Date: core.NewDate(2024, 1, 1)},
		{ID: "dep-3", InvoiceID: "inv-2", Amount: decimal.RequireFromString("7"), Date: core.NewDate(2024, 1, 5)},
	}
	for _, d := range in {
		if _, err := repo.CreateDeposit(ctx, d); err != nil {
			t.Fatalf("create %s: %v", d.ID, err)
		}
	}

	got, err := repo.ListDeposits(ctx, "inv-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deposits for inv-1, got %d", len(got))
	}
	// Ordered by deposit date.
	if got[0].ID != "dep-1" || got[1].ID != "dep-2" {
		t.Fatalf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("amount round trip: %s", got[0].Amount)
	}
	if got[0].Date != core.NewDate(2024, 1, 1) {
		t.Fatalf("date round trip: %v", got[0].Date)
	}
}

func TestListDepositsEmptyInvoice(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.ListDeposits(context.Background(), "no-such-invoice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no deposits, got %d", len(got))
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d := core.Deposit{ID: "dep-1", InvoiceID: "inv-1", Amount: decimal.NewFromInt(10), Date: core.NewDate(2024, 2, 2)}
	if _, err := repo.CreateDeposit(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := repo.GetPendingSyncDeposits(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "dep-1" {
		t.Fatalf("expected dep-1 pending, got %+v", pending)
	}

	if err := repo.MarkSynced(ctx, "dep-1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.GetPendingSyncDeposits(ctx, 10)
	if err != nil {
		t.Fatalf("pending after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty pending queue, got %+v", pending)
	}
}
