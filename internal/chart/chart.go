package chart

import "acconti/internal/core"

// Margin is the blank border around the plot area, in drawing units.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Dimensions is the canvas geometry a chart is built for.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// LabelPoint is a positioned display string: an axis caption or a
// per-point tooltip.
type LabelPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Description is the complete drawable chart: the step-after path plus
// axis and tooltip labels. It is immutable once built and rebuilt
// wholesale on every data change, never patched in place.
type Description struct {
	Path        string        `json:"path"`
	XAxisLabels [2]LabelPoint `json:"x_axis_labels"`
	YAxisLabels [2]LabelPoint `json:"y_axis_labels"`
	Points      []LabelPoint  `json:"points"`
}

// Formatters carries the label formatters a build uses. Explicit values,
// not ambient state; callers configure locale concerns here.
type Formatters struct {
	Currency CurrencyFormatter
	Date     DateFormatter
}

// DefaultFormatters returns the dollar / abbreviated-date pair.
func DefaultFormatters() Formatters {
	return Formatters{Currency: NewCurrencyFormatter(), Date: NewDateFormatter()}
}

// MinDistinctDates is the minimum population for a drawable chart: below
// two distinct deposit dates there is no line to draw and Build reports
// absence instead of degenerate geometry.
const MinDistinctDates = 2

// Build runs Aggregator, Scale Mapper and Path Builder in sequence and
// returns the chart description, or ok=false when fewer than
// MinDistinctDates distinct deposit dates exist. Construction is
// all-or-nothing; no partial result is ever returned.
func Build(deposits []core.Deposit, dims Dimensions, f Formatters) (Description, bool) {
	series := CumulativeSeries(deposits)
	if len(series) < MinDistinctDates {
		return Description{}, false
	}

	first, last := series[0], series[len(series)-1]
	xScale := NewTimeScale(
		first.Date.Time, last.Date.Time,
		dims.Margin.Left, dims.Width-dims.Margin.Right,
	)
	// Inverted range: larger totals sit higher on the canvas.
	yScale := NewLinear(
		first.Total.InexactFloat64(), last.Total.InexactFloat64(),
		dims.Height-dims.Margin.Bottom, dims.Margin.Top,
	).Nice()

	verts := make([]vertex, len(series))
	points := make([]LabelPoint, len(series))
	for i, p := range series {
		v := vertex{x: xScale.Map(p.Date.Time), y: yScale.Map(p.Total.InexactFloat64())}
		verts[i] = v
		points[i] = LabelPoint{
			X:     v.x,
			Y:     v.y,
			Label: f.Date.Format(p.Date) + " - " + f.Currency.Format(p.Total),
		}
	}

	axisRow := dims.Height - dims.Margin.Bottom
	return Description{
		Path: stepAfterPath(verts),
		XAxisLabels: [2]LabelPoint{
			{X: verts[0].x, Y: axisRow, Label: f.Date.Format(first.Date)},
			{X: verts[len(verts)-1].x, Y: axisRow, Label: f.Date.Format(last.Date)},
		},
		YAxisLabels: [2]LabelPoint{
			{X: dims.Margin.Left, Y: verts[0].y, Label: f.Currency.Format(first.Total)},
			{X: dims.Margin.Left, Y: verts[len(verts)-1].y, Label: f.Currency.Format(last.Total)},
		},
		Points: points,
	}, true
}
