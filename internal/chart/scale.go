package chart

import (
	"math"
	"time"
)

// Linear maps a float64 domain onto a pixel range by linear interpolation.
// The range may be inverted (start greater than end), which is how the y
// axis maps larger amounts to smaller pixel rows.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear builds a scale from [domainMin, domainMax] onto
// [rangeStart, rangeEnd].
func NewLinear(domainMin, domainMax, rangeStart, rangeEnd float64) Linear {
	return Linear{d0: domainMin, d1: domainMax, r0: rangeStart, r1: rangeEnd}
}

// Map returns the pixel coordinate for v. A zero-width domain maps every
// value to the range start; the naive interpolation would divide by zero.
func (s Linear) Map(v float64) float64 {
	if s.d1 == s.d0 {
		return s.r0
	}
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0 + t*(s.r1-s.r0)
}

// Nice widens the domain outward to round, human-friendly bounds. The
// range is untouched, so every value of the original domain still maps
// inside the pixel range.
func (s Linear) Nice() Linear {
	if s.d1 <= s.d0 {
		return s
	}
	step := niceStep(s.d1 - s.d0)
	s.d0 = math.Floor(s.d0/step) * step
	s.d1 = math.Ceil(s.d1/step) * step
	return s
}

// niceStep picks a 1/2/5 ladder increment sized for roughly ten ticks.
func niceStep(span float64) float64 {
	raw := span / 10
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag >= 5:
		return 5 * mag
	case raw/mag >= 2:
		return 2 * mag
	default:
		return mag
	}
}

// TimeScale maps calendar time onto a pixel range, linear over Unix time.
type TimeScale struct {
	lin Linear
}

// NewTimeScale builds a scale from [domainMin, domainMax] onto
// [rangeStart, rangeEnd].
func NewTimeScale(domainMin, domainMax time.Time, rangeStart, rangeEnd float64) TimeScale {
	return TimeScale{lin: NewLinear(
		float64(domainMin.Unix()),
		float64(domainMax.Unix()),
		rangeStart, rangeEnd,
	)}
}

// Map returns the pixel coordinate for t, with the same zero-width domain
// guarantee as Linear.Map.
func (s TimeScale) Map(t time.Time) float64 {
	return s.lin.Map(float64(t.Unix()))
}
