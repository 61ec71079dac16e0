// Package chart computes the cumulative-deposit line chart for an invoice:
// the running-total series, the pixel scales, the step-after path string
// with its axis and tooltip labels, and the frame-stepped interpolation
// used to animate between two chart states.
//
// Everything here is pure computation over caller-supplied inputs; the
// package never touches storage, network, or request state.
package chart

import (
	"sort"

	"github.com/shopspring/decimal"

	"acconti/internal/core"
)

// Point is one entry of the cumulative series: the running total of all
// deposits dated on or before Date. One Point exists per distinct date.
type Point struct {
	Date  core.Date
	Total decimal.Decimal
}

// CumulativeSeries groups deposits by calendar date, sums same-day amounts
// and returns running totals in ascending date order.
//
// The result is identical for any permutation of the same deposits. An
// empty input yields a nil series; callers must check the length before
// reading endpoints.
func CumulativeSeries(deposits []core.Deposit) []Point {
	if len(deposits) == 0 {
		return nil
	}

	byDate := make(map[core.Date]decimal.Decimal, len(deposits))
	for _, d := range deposits {
		byDate[d.Date] = byDate[d.Date].Add(d.Amount)
	}

	dates := make([]core.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	series := make([]Point, 0, len(dates))
	running := decimal.Zero
	for _, d := range dates {
		running = running.Add(byDate[d])
		series = append(series, Point{Date: d, Total: running})
	}
	return series
}
