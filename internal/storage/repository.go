package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"acconti/internal/core"

	_ "modernc.org/sqlite"
)

// dateLayout is how deposit dates are stored: calendar dates, no
// time-of-day.
const dateLayout = "2006-01-02"

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

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateDeposit persists a validated deposit and returns its stored form.
func (r *SQLiteRepository) CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	row, err := r.queries.CreateDeposit(ctx, CreateDepositParams{
		ID:          d.ID,
		InvoiceID:   d.InvoiceID,
		Amount:      d.Amount.String(),
		DepositDate: d.Date.Format(dateLayout),
	})
	if err != nil {
		return core.Deposit{}, fmt.Errorf("create deposit: %w", err)
	}

	slog.InfoContext(ctx, "Deposit saved to SQLite",
		"id", row.ID,
		"invoice_id", row.InvoiceID,
		"amount", row.Amount,
		"deposit_date", row.DepositDate)

	return rowToDeposit(row)
}

// ListDeposits returns all deposits for an invoice, ordered by date.
func (r *SQLiteRepository) ListDeposits(ctx context.Context, invoiceID string) ([]core.Deposit, error) {
	rows, err := r.queries.GetDepositsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get deposits by invoice: %w", err)
	}

	deposits := make([]core.Deposit, 0, len(rows))
	for _, row := range rows {
		d, err := rowToDeposit(row)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// GetDeposit retrieves a single deposit by ID.
func (r *SQLiteRepository) GetDeposit(ctx context.Context, id string) (core.Deposit, error) {
	row, err := r.queries.GetDeposit(ctx, id)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("get deposit by id: %w", err)
	}
	return rowToDeposit(row)
}

// PendingSyncDeposit is the minimal data a ledger-sync message carries.
type PendingSyncDeposit struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncDeposits returns deposits not yet mirrored to the ledger.
func (r *SQLiteRepository) GetPendingSyncDeposits(ctx context.Context, limit int) ([]PendingSyncDeposit, error) {
	rows, err := r.queries.GetPendingSyncDeposits(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync deposits: %w", err)
	}

	pending := make([]PendingSyncDeposit, len(rows))
	for i, row := range rows {
		pending[i] = PendingSyncDeposit{
			ID:        row.ID,
			Version:   row.Version,
			CreatedAt: row.CreatedAt,
		}
	}
	return pending, nil
}

// MarkSynced marks a deposit as successfully mirrored to the ledger.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.queries.MarkDepositSynced(ctx, id); err != nil {
		return fmt.Errorf("mark deposit synced: %w", err)
	}

	slog.InfoContext(ctx, "Deposit marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a deposit as having failed ledger sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.MarkDepositSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark deposit sync error: %w", err)
	}

	slog.WarnContext(ctx, "Deposit marked with sync error", "id", id)
	return nil
}

func rowToDeposit(row DepositRow) (core.Deposit, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("parse stored amount %q: %w", row.Amount, err)
	}
	date, err := time.Parse(dateLayout, row.DepositDate)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("parse stored date %q: %w", row.DepositDate, err)
	}
	return core.Deposit{
		ID:        row.ID,
		InvoiceID: row.InvoiceID,
		Amount:    amount,
		Date:      core.DateOf(date),
	}, nil
}
