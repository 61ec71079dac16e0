package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// vertex is one absolute coordinate pair of a path string.
type vertex struct {
	x, y float64
}

// stepAfterPath connects the scaled points under the step-after rule: the
// line holds the earlier point's y across the full x-gap, then steps
// vertically at the later point's x. Panics on an empty vertex list; an
// upstream filter must have rejected the series already.
func stepAfterPath(verts []vertex) string {
	if len(verts) == 0 {
		panic("chart: step-after path requires at least one point")
	}
	var b strings.Builder
	b.WriteByte('M')
	b.WriteString(formatCoord(verts[0].x))
	b.WriteByte(',')
	b.WriteString(formatCoord(verts[0].y))
	for i := 1; i < len(verts); i++ {
		writeLine(&b, verts[i].x, verts[i-1].y)
		writeLine(&b, verts[i].x, verts[i].y)
	}
	return b.String()
}

// linePath connects vertices with plain line segments. Interpolated frames
// use it, since their vertices are no longer axis-aligned steps.
func linePath(verts []vertex) string {
	if len(verts) == 0 {
		panic("chart: line path requires at least one point")
	}
	var b strings.Builder
	b.WriteByte('M')
	b.WriteString(formatCoord(verts[0].x))
	b.WriteByte(',')
	b.WriteString(formatCoord(verts[0].y))
	for _, v := range verts[1:] {
		writeLine(&b, v.x, v.y)
	}
	return b.String()
}

func writeLine(b *strings.Builder, x, y float64) {
	b.WriteByte('L')
	b.WriteString(formatCoord(x))
	b.WriteByte(',')
	b.WriteString(formatCoord(y))
}

// formatCoord renders a pixel coordinate rounded to hundredths, with
// trailing zeros trimmed so equal coordinates always print identically.
func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// parsePath reads a path string produced by this package back into its
// vertex list. Panics on malformed input: paths only ever come from the
// builder or the interpolator, so a parse failure is a programming error.
func parsePath(path string) []vertex {
	rest := path
	if !strings.HasPrefix(rest, "M") {
		panic(fmt.Sprintf("chart: malformed path %q: missing move command", path))
	}
	rest = rest[1:]

	var verts []vertex
	for len(rest) > 0 {
		seg := rest
		if i := strings.IndexByte(rest, 'L'); i >= 0 {
			seg, rest = rest[:i], rest[i+1:]
		} else {
			rest = ""
		}
		xs, ys, ok := strings.Cut(seg, ",")
		if !ok {
			panic(fmt.Sprintf("chart: malformed path %q: segment %q", path, seg))
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			panic(fmt.Sprintf("chart: malformed path %q: segment %q", path, seg))
		}
		verts = append(verts, vertex{x: x, y: y})
	}
	return verts
}
