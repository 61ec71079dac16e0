package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"acconti/internal/core"
)

type fakeStore struct {
	deposits []core.Deposit
	fail     bool
}

func (f *fakeStore) CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	if f.fail {
		return core.Deposit{}, errors.New("store down")
	}
	f.deposits = append(f.deposits, d)
	return d, nil
}

func (f *fakeStore) ListDeposits(ctx context.Context, invoiceID string) ([]core.Deposit, error) {
	var out []core.Deposit
	for _, d := range f.deposits {
		if d.InvoiceID == invoiceID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishDepositSync(ctx context.Context, id string, version int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func testDeposit(t *testing.T) core.Deposit {
	t.Helper()
	date := core.NewDate(2025, 1, 5)
	return core.Deposit{
		InvoiceID: "inv-1",
		Amount:    decimal.RequireFromString("150"),
		Date:      date,
	}
}

func TestCreateDepositAssignsID(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewDepositService(store, pub, nil)

	saved, err := svc.CreateDeposit(context.Background(), testDeposit(t))
	if err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated ID")
	}
	if len(pub.published) != 1 || pub.published[0] != saved.ID {
		t.Errorf("published = %v, want [%s]", pub.published, saved.ID)
	}
}

func TestCreateDepositKeepsProvidedID(t *testing.T) {
	store := &fakeStore{}
	svc := NewDepositService(store, nil, nil)

	d := testDeposit(t)
	d.ID = "fixed-id"
	saved, err := svc.CreateDeposit(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}
	if saved.ID != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", saved.ID)
	}
}

func TestCreateDepositRejectsInvalid(t *testing.T) {
	store := &fakeStore{}
	svc := NewDepositService(store, nil, nil)

	d := testDeposit(t)
	d.InvoiceID = ""
	if _, err := svc.CreateDeposit(context.Background(), d); !errors.Is(err, core.ErrEmptyInvoiceID) {
		t.Errorf("err = %v, want ErrEmptyInvoiceID", err)
	}
	if len(store.deposits) != 0 {
		t.Error("invalid deposit must not reach the store")
	}
}

func TestCreateDepositSurvivesPublishFailure(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewDepositService(store, pub, nil)

	if _, err := svc.CreateDeposit(context.Background(), testDeposit(t)); err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}
	if len(store.deposits) != 1 {
		t.Error("deposit must persist even when publish fails")
	}
}

func TestCreateDepositNotifiesSubscribers(t *testing.T) {
	store := &fakeStore{}
	notifier := NewChangeNotifier()
	svc := NewDepositService(store, nil, notifier)

	ch, cancel := notifier.Subscribe("inv-1")
	defer cancel()

	if _, err := svc.CreateDeposit(context.Background(), testDeposit(t)); err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}

	select {
	case <-ch:
	default:
		t.Error("expected change signal for inv-1")
	}
}

func TestListDepositsFiltersByInvoice(t *testing.T) {
	store := &fakeStore{}
	svc := NewDepositService(store, nil, nil)

	a := testDeposit(t)
	b := testDeposit(t)
	b.InvoiceID = "inv-2"
	if _, err := svc.CreateDeposit(context.Background(), a); err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}
	if _, err := svc.CreateDeposit(context.Background(), b); err != nil {
		t.Fatalf("CreateDeposit: %v", err)
	}

	got, err := svc.ListDeposits(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("ListDeposits: %v", err)
	}
	if len(got) != 1 || got[0].InvoiceID != "inv-1" {
		t.Errorf("got %v, want one deposit for inv-1", got)
	}
}
