package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date without time-of-day, always UTC midnight.
	Date struct {
		time.Time
	}

	// Deposit is a partial payment recorded against an invoice.
	Deposit struct {
		ID        string
		InvoiceID string
		Amount    decimal.Decimal
		Date      Date
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyInvoiceID = errors.New("empty invoice id")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to a calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (dep Deposit) Validate() error {
	if strings.TrimSpace(dep.InvoiceID) == "" {
		return ErrEmptyInvoiceID
	}
	if err := dep.Date.Validate(); err != nil {
		return err
	}
	if dep.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
