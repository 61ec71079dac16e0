package storage

import (
	"context"
	"database/sql"
	"time"
)

// Queries wraps the raw SQL statements against the deposits schema.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// DepositRow mirrors one row of the deposits table.
type DepositRow struct {
	ID          string
	InvoiceID   string
	Amount      string
	DepositDate string // YYYY-MM-DD
	CreatedAt   time.Time
	SyncStatus  string
	Version     int64
}

type CreateDepositParams struct {
	ID          string
	InvoiceID   string
	Amount      string
	DepositDate string
}

func (q *Queries) CreateDeposit(ctx context.Context, p CreateDepositParams) (DepositRow, error) {
	const stmt = `
		INSERT INTO deposits (id, invoice_id, amount, deposit_date)
		VALUES (?, ?, ?, ?)
		RETURNING id, invoice_id, amount, deposit_date, created_at, sync_status, version`
	row := q.db.QueryRowContext(ctx, stmt, p.ID, p.InvoiceID, p.Amount, p.DepositDate)
	return scanDeposit(row)
}

func (q *Queries) GetDeposit(ctx context.Context, id string) (DepositRow, error) {
	const stmt = `
		SELECT id, invoice_id, amount, deposit_date, created_at, sync_status, version
		FROM deposits WHERE id = ?`
	return scanDeposit(q.db.QueryRowContext(ctx, stmt, id))
}

func (q *Queries) GetDepositsByInvoice(ctx context.Context, invoiceID string) ([]DepositRow, error) {
	const stmt = `
		SELECT id, invoice_id, amount, deposit_date, created_at, sync_status, version
		FROM deposits WHERE invoice_id = ?
		ORDER BY deposit_date, created_at, id`
	rows, err := q.db.QueryContext(ctx, stmt, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DepositRow
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) GetPendingSyncDeposits(ctx context.Context, limit int64) ([]DepositRow, error) {
	const stmt = `
		SELECT id, invoice_id, amount, deposit_date, created_at, sync_status, version
		FROM deposits WHERE sync_status = 'pending'
		ORDER BY created_at LIMIT ?`
	rows, err := q.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DepositRow
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) MarkDepositSynced(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE deposits SET sync_status = 'synced', version = version + 1 WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkDepositSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE deposits SET sync_status = 'error', version = version + 1 WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(s rowScanner) (DepositRow, error) {
	var d DepositRow
	err := s.Scan(&d.ID, &d.InvoiceID, &d.Amount, &d.DepositDate,
		&d.CreatedAt, &d.SyncStatus, &d.Version)
	return d, err
}
