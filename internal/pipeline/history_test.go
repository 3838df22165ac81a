package pipeline

import (
	"testing"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

func fullSample(ft, altitude float64) *telemetry.Sample {
	phase := telemetry.PhasePoweredAscent
	return &telemetry.Sample{
		FlightTime:   telemetry.Float(ft),
		Phase:        &phase,
		Altitude:     telemetry.Float(altitude),
		Velocity:     telemetry.Float(ft * 9.8),
		Acceleration: telemetry.Float(9.8),
		Temperature:  telemetry.Float(20),
		Pressure:     telemetry.Float(101.3),
	}
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 4; i++ {
		h.Append(fullSample(float64(i), float64(i*100)))
	}

	if h.Len() != 3 {
		t.Fatalf("expected length 3 at capacity, got %d", h.Len())
	}

	times, values := h.Series(telemetry.MetricAltitude)
	if len(times) != 3 || len(values) != 3 {
		t.Fatalf("expected 3 points, got %d/%d", len(times), len(values))
	}

	// Oldest entry (t=1) evicted, newest (t=4) present.
	if times[0] != 2 {
		t.Errorf("expected oldest retained time 2, got %.1f", times[0])
	}
	if times[2] != 4 || values[2] != 400 {
		t.Errorf("expected newest point (4, 400), got (%.1f, %.1f)", times[2], values[2])
	}
}

func TestHistoryLockstep(t *testing.T) {
	h := NewHistory(10)

	for i := 1; i <= 5; i++ {
		h.Append(fullSample(float64(i), float64(i)))
	}

	for _, m := range telemetry.Metrics() {
		times, values := h.Series(m)
		if len(times) != 5 || len(values) != 5 {
			t.Errorf("%s: expected 5/5 points, got %d/%d", m, len(times), len(values))
		}
	}
}

func TestHistoryLenientAppend(t *testing.T) {
	h := NewHistory(10)

	for i := 1; i <= 3; i++ {
		h.Append(fullSample(float64(i), float64(i*10)))
	}

	// A frame carrying only temperature: no other ring may advance and
	// nothing gets zero-filled.
	h.Append(&telemetry.Sample{Temperature: telemetry.Float(-40)})

	times, values := h.Series(telemetry.MetricAltitude)
	if len(times) != 3 || len(values) != 3 {
		t.Fatalf("altitude: expected 3/3 points, got %d/%d", len(times), len(values))
	}
	if values[2] != 30 {
		t.Errorf("altitude: expected latest value 30, got %.1f", values[2])
	}

	times, values = h.Series(telemetry.MetricTemperature)
	if len(times) != len(values) {
		t.Fatalf("temperature: series lengths diverged: %d/%d", len(times), len(values))
	}
	if values[len(values)-1] != -40 {
		t.Errorf("temperature: expected latest value -40, got %.1f", values[len(values)-1])
	}
}

func TestHistorySeriesUnknownMetric(t *testing.T) {
	h := NewHistory(10)
	h.Append(fullSample(1, 1))

	times, values := h.Series(telemetry.Metric("bogus"))
	if times != nil || values != nil {
		t.Error("expected nil series for unknown metric")
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	if h.Capacity() != DefaultHistorySize {
		t.Errorf("expected default capacity %d, got %d", DefaultHistorySize, h.Capacity())
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(5)

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d", h.Len())
	}
	times, values := h.Series(telemetry.MetricAltitude)
	if len(times) != 0 || len(values) != 0 {
		t.Error("expected empty series from empty history")
	}
}
