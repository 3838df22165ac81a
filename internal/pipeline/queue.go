// Package pipeline carries samples from the acquisition goroutine to the
// render loop: an unbounded thread-safe queue for the hand-off, fixed-size
// history rings for charting, and the background loop that feeds the queue.
package pipeline

import (
	"sync"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// SampleQueue is the single shared structure between the acquisition
// goroutine and the render loop. Put never blocks the producer; DrainAll
// atomically removes everything queued so far in arrival order.
type SampleQueue struct {
	mu      sync.Mutex
	samples []*telemetry.Sample
}

// NewSampleQueue creates an empty queue.
func NewSampleQueue() *SampleQueue {
	return &SampleQueue{}
}

// Put appends a sample to the queue. Nil samples are ignored.
func (q *SampleQueue) Put(s *telemetry.Sample) {
	if s == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.samples = append(q.samples, s)
}

// DrainAll removes and returns all queued samples in FIFO order.
// Returns nil without blocking if the queue is empty.
func (q *SampleQueue) DrainAll() []*telemetry.Sample {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.samples) == 0 {
		return nil
	}

	out := q.samples
	q.samples = nil
	return out
}

// Len returns the current number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

// Clear discards all queued samples.
func (q *SampleQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.samples = nil
}
