// Package chart turns a window of (time, metric) readings into a 2-D line
// plot. Render produces graphics-API-agnostic draw primitives; Rasterizer
// turns them into RGBA frames for the dashboard.
package chart

import (
	"fmt"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

const (
	// Padding is the fixed margin between the plot's client area and the
	// viewport edges, leaving room for axis labels.
	Padding = 40

	gridLines = 5
)

// Style tells a rasterizer what role a primitive plays, without binding the
// primitives to any concrete color scheme.
type Style int

const (
	StyleAxis Style = iota
	StyleGrid
	StyleSeries
	StyleLabel
	StyleCaption
)

// Anchor controls horizontal text placement relative to the given point.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Primitive is a single drawing instruction.
type Primitive interface {
	primitive()
}

// Line is a straight segment between two points.
type Line struct {
	X1, Y1, X2, Y2 float64
	Dashed         bool
	Style          Style
}

// Point is one vertex of a polyline.
type Point struct {
	X, Y float64
}

// Polyline connects consecutive points with segments.
type Polyline struct {
	Points []Point
	Style  Style
}

// Text places a string at a point. Y is the vertical center of the text.
// Vertical text is stacked one rune per line, used for the Y axis caption.
type Text struct {
	X, Y     float64
	S        string
	Anchor   Anchor
	Vertical bool
	Style    Style
}

func (Line) primitive()     {}
func (Polyline) primitive() {}
func (Text) primitive()     {}

// Render maps the visible window of a metric onto a line plot: axes, a
// five-line horizontal grid with interpolated value labels, the data
// polyline scaled into the padded client area, and axis captions.
//
// Scaling is linear and recomputed from scratch on every call, so the chart
// auto-fits as data evolves. With fewer than two points, or a degenerate
// viewport, Render returns nil: a live monitor simply has nothing to show
// yet, and that is not an error.
func Render(metric telemetry.Metric, times, values []float64, width, height int) []Primitive {
	n := min(len(times), len(values))
	if n < 2 {
		return nil
	}
	times = times[len(times)-n:]
	values = values[len(values)-n:]

	if width < 10 || height < 10 {
		return nil
	}

	plotWidth := float64(width - 2*Padding)
	plotHeight := float64(height - 2*Padding)
	if plotWidth <= 0 || plotHeight <= 0 {
		return nil
	}

	minX, maxX := bounds(times)
	minY, maxY := bounds(values)

	// A constant series still gets a unit range so scaling never divides by
	// zero; widening both ends keeps the flat line centered in the plot.
	if maxX == minX {
		minX, maxX = minX-0.5, maxX+0.5
	}
	if maxY == minY {
		minY, maxY = minY-0.5, maxY+0.5
	}
	rangeX := maxX - minX
	rangeY := maxY - minY

	prims := make([]Primitive, 0, 2+2*gridLines+3)

	// Axes
	prims = append(prims,
		Line{X1: Padding, Y1: float64(height - Padding), X2: float64(width - Padding), Y2: float64(height - Padding), Style: StyleAxis},
		Line{X1: Padding, Y1: Padding, X2: Padding, Y2: float64(height - Padding), Style: StyleAxis},
	)

	// Horizontal grid with value labels, top to bottom.
	for i := 0; i < gridLines; i++ {
		y := Padding + plotHeight*float64(i)/float64(gridLines-1)
		val := maxY - rangeY*float64(i)/float64(gridLines-1)

		prims = append(prims,
			Line{X1: Padding, Y1: y, X2: float64(width - Padding), Y2: y, Dashed: true, Style: StyleGrid},
			Text{X: Padding - 5, Y: y, S: fmt.Sprintf("%.0f", val), Anchor: AnchorEnd, Style: StyleLabel},
		)
	}

	// Data polyline scaled into the client area.
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{
			X: Padding + (times[i]-minX)/rangeX*plotWidth,
			Y: float64(height-Padding) - (values[i]-minY)/rangeY*plotHeight,
		}
	}
	prims = append(prims, Polyline{Points: points, Style: StyleSeries})

	// Axis captions.
	prims = append(prims,
		Text{X: float64(width) / 2, Y: float64(height - 10), S: "Flight Time (s)", Anchor: AnchorMiddle, Style: StyleCaption},
		Text{X: 15, Y: float64(height) / 2, S: metric.Caption(), Anchor: AnchorMiddle, Vertical: true, Style: StyleCaption},
	)

	return prims
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
