package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	deposits := []Deposit{
		{InvoiceID: "inv-1", Amount: decimal.NewFromInt(25), Date: NewDate(2025, 1, 10)},
		{InvoiceID: "inv-1", Amount: decimal.NewFromInt(150), Date: NewDate(2025, 1, 1)},
		{InvoiceID: "inv-2", Amount: decimal.NewFromInt(999), Date: NewDate(2025, 1, 5)},
	}

	s := Summarize("inv-1", deposits)
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
	if got := s.Total.StringFixed(2); got != "175.00" {
		t.Errorf("Total = %s, want 175.00", got)
	}
	if s.First != NewDate(2025, 1, 1) || s.Last != NewDate(2025, 1, 10) {
		t.Errorf("range = %v..%v, want 2025-01-01..2025-01-10", s.First, s.Last)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("inv-1", nil)
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
	if !s.Total.IsZero() {
		t.Errorf("Total = %s, want 0", s.Total)
	}
}
