package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flightdeck/rocket-telemetry/internal/source"
)

// DefaultPollInterval paces the acquisition loop at 20 Hz.
const DefaultPollInterval = 50 * time.Millisecond

// ErrAlreadyRunning is returned when Start is called on a running loop.
var ErrAlreadyRunning = errors.New("acquisition loop is already running")

// Acquisition polls a source on a dedicated goroutine and forwards every
// sample into the queue. One loop runs per live connection. Read errors are
// logged and the loop keeps going; only cancellation stops it.
type Acquisition struct {
	source   source.Source
	queue    *SampleQueue
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// WithPollInterval overrides the fixed delay between reads.
func WithPollInterval(interval time.Duration) func(*Acquisition) {
	return func(a *Acquisition) {
		if interval > 0 {
			a.interval = interval
		}
	}
}

// WithLogger sets the logger for the loop.
func WithLogger(logger *slog.Logger) func(*Acquisition) {
	return func(a *Acquisition) {
		a.logger = logger.With(slog.String("component", "acquisition"))
	}
}

// NewAcquisition creates an acquisition loop over the given source and queue.
func NewAcquisition(src source.Source, queue *SampleQueue, options ...func(*Acquisition)) *Acquisition {
	a := Acquisition{
		source:   src,
		queue:    queue,
		interval: DefaultPollInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&a)
	}

	return &a
}

// Start launches the loop. It returns immediately; the loop runs until Stop
// is called or the context is cancelled.
func (a *Acquisition) Start(ctx context.Context) error {
	if a.running.Load() {
		return ErrAlreadyRunning
	}

	a.running.Store(true)
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(1)
	go a.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call when the loop
// is not running. After Stop returns it is safe to disconnect the source.
func (a *Acquisition) Stop() {
	if !a.running.Load() {
		return
	}

	a.cancel()
	a.wg.Wait()
	a.running.Store(false)
}

// Running reports whether the loop is active.
func (a *Acquisition) Running() bool {
	return a.running.Load()
}

func (a *Acquisition) loop(ctx context.Context) {
	defer a.wg.Done()

	a.logger.Info("acquisition started", slog.Duration("interval", a.interval))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("acquisition stopped")
			a.running.Store(false)
			return

		case <-ticker.C:
			sample, err := a.source.Read()
			if err != nil {
				a.logger.Warn("read failed, continuing", slog.String("error", err.Error()))
				continue
			}
			if sample != nil {
				a.queue.Put(sample)
			}
		}
	}
}
