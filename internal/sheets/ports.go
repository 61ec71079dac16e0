package sheets

import (
	"context"

	"acconti/internal/core"
)

// Ports for the outbound deposit ledger (the mirror accountants read).
// The ledger is write-mostly and never sits on the chart read path.
type (
	DepositWriter interface {
		Append(ctx context.Context, d core.Deposit) (rowRef string, err error)
	}

	// DepositLister returns the ledger rows for one invoice. It exists
	// for tests and consistency checks against storage.
	DepositLister interface {
		ListDeposits(ctx context.Context, invoiceID string) ([]core.Deposit, error)
	}
)
