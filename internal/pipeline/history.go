package pipeline

import "github.com/flightdeck/rocket-telemetry/internal/telemetry"

// DefaultHistorySize is how many recent readings each ring retains.
const DefaultHistorySize = 500

// ring is a fixed-capacity FIFO of float64 values. Once full, pushing a new
// value evicts the oldest one.
type ring struct {
	data  []float64
	head  int // next write position
	count int
}

func newRing(capacity int) *ring {
	return &ring{data: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// values returns the retained samples in chronological order, oldest first.
func (r *ring) values() []float64 {
	if r.count == 0 {
		return nil
	}

	out := make([]float64, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := range out {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// History retains the most recent readings of each metric, plus the flight
// clock, for charting. It is owned by the render loop and is not safe for
// concurrent use.
//
// Appends are lenient: a sample only advances the rings for the fields it
// actually carries, so feeds that report a subset of metrics never zero-fill
// the others. Series compensates by pairing each metric with the overlapping
// tail of the time ring.
type History struct {
	capacity int
	time     *ring
	metrics  map[telemetry.Metric]*ring
}

// NewHistory creates history rings of the given capacity.
// Non-positive capacities fall back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}

	metrics := make(map[telemetry.Metric]*ring, len(telemetry.Metrics()))
	for _, m := range telemetry.Metrics() {
		metrics[m] = newRing(capacity)
	}

	return &History{
		capacity: capacity,
		time:     newRing(capacity),
		metrics:  metrics,
	}
}

// Append records the fields present in the sample. Nil samples are ignored.
func (h *History) Append(s *telemetry.Sample) {
	if s == nil {
		return
	}

	if s.FlightTime != nil {
		h.time.push(*s.FlightTime)
	}
	for m, r := range h.metrics {
		if v, ok := s.Value(m); ok {
			r.push(v)
		}
	}
}

// Series returns parallel (time, value) slices for the metric, oldest first.
// When the rings have diverged in length, the overlapping tail is returned so
// both slices are always the same length.
func (h *History) Series(m telemetry.Metric) (times, values []float64) {
	r, ok := h.metrics[m]
	if !ok {
		return nil, nil
	}

	times = h.time.values()
	values = r.values()

	n := min(len(times), len(values))
	return times[len(times)-n:], values[len(values)-n:]
}

// Len returns the number of flight clock readings currently retained.
func (h *History) Len() int {
	return h.time.count
}

// Capacity returns the configured ring size.
func (h *History) Capacity() int {
	return h.capacity
}
