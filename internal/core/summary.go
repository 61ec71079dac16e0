package core

import "github.com/shopspring/decimal"

// InvoiceSummary aggregates the deposits recorded against one invoice.
type InvoiceSummary struct {
	InvoiceID string
	Count     int
	Total     decimal.Decimal
	First     Date
	Last      Date
}

// Summarize folds deposits into a per-invoice summary. Deposits for other
// invoices are ignored, so callers may pass an unfiltered slice.
func Summarize(invoiceID string, deposits []Deposit) InvoiceSummary {
	s := InvoiceSummary{InvoiceID: invoiceID, Total: decimal.Zero}
	for _, d := range deposits {
		if d.InvoiceID != invoiceID {
			continue
		}
		if s.Count == 0 || d.Date.Before(s.First.Time) {
			s.First = d.Date
		}
		if s.Count == 0 || d.Date.After(s.Last.Time) {
			s.Last = d.Date
		}
		s.Total = s.Total.Add(d.Amount)
		s.Count++
	}
	return s
}
