package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// stubSource hands out a scripted sequence of reads.
type stubSource struct {
	mu        sync.Mutex
	reads     []stubRead
	pos       int
	connected bool
}

type stubRead struct {
	sample *telemetry.Sample
	err    error
}

func (s *stubSource) Connect() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return "stub connected", nil
}

func (s *stubSource) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

func (s *stubSource) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *stubSource) Read() (*telemetry.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.reads) {
		return nil, nil
	}
	r := s.reads[s.pos]
	s.pos++
	return r.sample, r.err
}

func TestAcquisitionForwardsSamples(t *testing.T) {
	src := &stubSource{reads: []stubRead{
		{sample: sampleAt(1)},
		{sample: sampleAt(2)},
		{sample: sampleAt(3)},
	}}
	queue := NewSampleQueue()

	acq := NewAcquisition(src, queue, WithPollInterval(time.Millisecond))
	if err := acq.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer acq.Stop()

	var got []*telemetry.Sample
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 3 && time.Now().Before(deadline) {
		got = append(got, queue.DrainAll()...)
		time.Sleep(time.Millisecond)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	for i, s := range got {
		if *s.FlightTime != float64(i+1) {
			t.Errorf("position %d: expected flight time %d, got %.1f", i, i+1, *s.FlightTime)
		}
	}
}

func TestAcquisitionSurvivesReadErrors(t *testing.T) {
	src := &stubSource{reads: []stubRead{
		{sample: sampleAt(1)},
		{err: errors.New("bad frame")},
		{err: errors.New("bad frame")},
		{sample: sampleAt(2)},
	}}
	queue := NewSampleQueue()

	acq := NewAcquisition(src, queue, WithPollInterval(time.Millisecond))
	if err := acq.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer acq.Stop()

	var got []*telemetry.Sample
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		got = append(got, queue.DrainAll()...)
		time.Sleep(time.Millisecond)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 samples despite read errors, got %d", len(got))
	}
	if *got[1].FlightTime != 2 {
		t.Errorf("expected second sample flight time 2, got %.1f", *got[1].FlightTime)
	}
}

func TestAcquisitionStartTwice(t *testing.T) {
	acq := NewAcquisition(&stubSource{}, NewSampleQueue(), WithPollInterval(time.Millisecond))

	if err := acq.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer acq.Stop()

	if err := acq.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestAcquisitionStopLifecycle(t *testing.T) {
	acq := NewAcquisition(&stubSource{}, NewSampleQueue(), WithPollInterval(time.Millisecond))

	// Stop without Start is a no-op.
	acq.Stop()
	if acq.Running() {
		t.Fatal("expected not running before Start")
	}

	if err := acq.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !acq.Running() {
		t.Fatal("expected running after Start")
	}

	acq.Stop()
	if acq.Running() {
		t.Error("expected not running after Stop")
	}

	// Restart after Stop must work.
	if err := acq.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	acq.Stop()
}

func TestAcquisitionContextCancel(t *testing.T) {
	acq := NewAcquisition(&stubSource{}, NewSampleQueue(), WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	if err := acq.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for acq.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if acq.Running() {
		t.Error("expected loop to exit on context cancellation")
	}
}
