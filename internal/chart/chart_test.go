package chart

import (
	"fmt"
	"math"
	"testing"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

func TestRenderTooFewPoints(t *testing.T) {
	if prims := Render(telemetry.MetricAltitude, nil, nil, 640, 240); prims != nil {
		t.Error("expected nil for empty series")
	}
	if prims := Render(telemetry.MetricAltitude, []float64{1}, []float64{10}, 640, 240); prims != nil {
		t.Error("expected nil for a single point")
	}
}

func TestRenderDegenerateViewport(t *testing.T) {
	times := []float64{1, 2, 3}
	values := []float64{10, 20, 30}

	for _, dim := range [][2]int{{0, 0}, {5, 240}, {640, 5}, {80, 80}} {
		if prims := Render(telemetry.MetricAltitude, times, values, dim[0], dim[1]); prims != nil {
			t.Errorf("expected nil for viewport %dx%d", dim[0], dim[1])
		}
	}
}

func TestRenderMismatchedLengths(t *testing.T) {
	// Five timestamps, three values: only the overlapping tail plots.
	times := []float64{1, 2, 3, 4, 5}
	values := []float64{10, 20, 30}

	prims := Render(telemetry.MetricAltitude, times, values, 640, 240)
	if prims == nil {
		t.Fatal("expected primitives")
	}

	poly := findPolyline(t, prims)
	if len(poly.Points) != 3 {
		t.Errorf("expected 3 polyline points, got %d", len(poly.Points))
	}
}

func TestRenderPrimitiveInventory(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	values := []float64{0, 100, 250, 400}

	prims := Render(telemetry.MetricAltitude, times, values, 640, 240)
	if prims == nil {
		t.Fatal("expected primitives")
	}

	var axes, grids, labels, polylines, captions int
	for _, p := range prims {
		switch v := p.(type) {
		case Line:
			switch v.Style {
			case StyleAxis:
				axes++
				if v.Dashed {
					t.Error("axis lines must be solid")
				}
			case StyleGrid:
				grids++
				if !v.Dashed {
					t.Error("grid lines must be dashed")
				}
			}
		case Polyline:
			polylines++
		case Text:
			switch v.Style {
			case StyleLabel:
				labels++
			case StyleCaption:
				captions++
			}
		}
	}

	if axes != 2 {
		t.Errorf("expected 2 axis lines, got %d", axes)
	}
	if grids != 5 {
		t.Errorf("expected 5 grid lines, got %d", grids)
	}
	if labels != 5 {
		t.Errorf("expected 5 grid labels, got %d", labels)
	}
	if polylines != 1 {
		t.Errorf("expected 1 polyline, got %d", polylines)
	}
	if captions != 2 {
		t.Errorf("expected 2 axis captions, got %d", captions)
	}
}

func TestRenderGridLabels(t *testing.T) {
	times := []float64{0, 1, 2}
	values := []float64{0, 50, 100}

	prims := Render(telemetry.MetricAltitude, times, values, 640, 240)

	var labels []Text
	for _, p := range prims {
		if txt, ok := p.(Text); ok && txt.Style == StyleLabel {
			labels = append(labels, txt)
		}
	}
	if len(labels) != 5 {
		t.Fatalf("expected 5 labels, got %d", len(labels))
	}

	// Labels run top to bottom, max to min.
	want := []string{"100", "75", "50", "25", "0"}
	for i, lbl := range labels {
		if lbl.S != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], lbl.S)
		}
		if lbl.Anchor != AnchorEnd {
			t.Errorf("label %d: expected right-aligned anchor", i)
		}
		if i > 0 && labels[i].Y <= labels[i-1].Y {
			t.Errorf("label %d: expected increasing Y, got %.1f after %.1f", i, labels[i].Y, labels[i-1].Y)
		}
	}
}

func TestRenderPolylineScaling(t *testing.T) {
	const width, height = 640, 240
	times := []float64{0, 10}
	values := []float64{0, 1000}

	prims := Render(telemetry.MetricAltitude, times, values, width, height)
	poly := findPolyline(t, prims)

	// First point sits at the plot origin, last at the opposite corner.
	first, last := poly.Points[0], poly.Points[1]
	if first.X != Padding || first.Y != height-Padding {
		t.Errorf("first point: expected (%d, %d), got (%.1f, %.1f)", Padding, height-Padding, first.X, first.Y)
	}
	if last.X != width-Padding || last.Y != Padding {
		t.Errorf("last point: expected (%d, %d), got (%.1f, %.1f)", width-Padding, Padding, last.X, last.Y)
	}
}

func TestRenderConstantSeries(t *testing.T) {
	const width, height = 640, 240
	times := []float64{1, 2, 3}
	values := []float64{42, 42, 42}

	prims := Render(telemetry.MetricVelocity, times, values, width, height)
	if prims == nil {
		t.Fatal("expected primitives for a constant series")
	}

	poly := findPolyline(t, prims)
	for i, pt := range poly.Points {
		if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) || math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			t.Fatalf("point %d is not finite: (%v, %v)", i, pt.X, pt.Y)
		}
		if pt.Y != height/2 {
			t.Errorf("point %d: expected flat line centered at %d, got %.1f", i, height/2, pt.Y)
		}
	}
}

func TestRenderCaptions(t *testing.T) {
	times := []float64{0, 1}
	values := []float64{0, 1}

	prims := Render(telemetry.MetricTemperature, times, values, 640, 240)

	var captions []Text
	for _, p := range prims {
		if txt, ok := p.(Text); ok && txt.Style == StyleCaption {
			captions = append(captions, txt)
		}
	}
	if len(captions) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(captions))
	}

	if captions[0].S != "Flight Time (s)" || captions[0].Vertical {
		t.Errorf("expected horizontal time caption, got %+v", captions[0])
	}
	if captions[1].S != telemetry.MetricTemperature.Caption() || !captions[1].Vertical {
		t.Errorf("expected vertical metric caption %q, got %+v", telemetry.MetricTemperature.Caption(), captions[1])
	}
}

func findPolyline(t *testing.T, prims []Primitive) Polyline {
	t.Helper()
	for _, p := range prims {
		if poly, ok := p.(Polyline); ok {
			return poly
		}
	}
	t.Fatal("no polyline in primitives")
	return Polyline{}
}

func ExampleRender() {
	prims := Render(telemetry.MetricAltitude, []float64{0, 1, 2}, []float64{0, 50, 100}, 640, 240)
	fmt.Println(len(prims) > 0)
	// Output: true
}
