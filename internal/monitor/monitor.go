// Package monitor is the consumer half of the telemetry pipeline: a periodic
// render loop that drains the sample queue, maintains the history rings and
// latest-value readout, renders the configured charts, and serves it all on
// a local web dashboard.
package monitor

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/flightdeck/rocket-telemetry/internal/chart"
	"github.com/flightdeck/rocket-telemetry/internal/pipeline"
	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

const (
	// DefaultRenderInterval paces the render loop at 20 Hz.
	DefaultRenderInterval = 50 * time.Millisecond

	DefaultChartWidth  = 640
	DefaultChartHeight = 240

	statsInterval = 30 * time.Second
)

// ChartSpec is one configured chart: a display name, the metric it plots and
// its frame size in pixels.
type ChartSpec struct {
	Name   string
	Metric telemetry.Metric
	Width  int
	Height int
}

// Readout is the latest-values view-model behind the dashboard cards. Fields
// a feed never reports keep their previous value, mirroring how the display
// cards behave.
type Readout struct {
	Timestamp    string  `json:"timestamp"`
	FlightTime   float64 `json:"flight_time"`
	Phase        string  `json:"phase"`
	Altitude     float64 `json:"altitude"`
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	Temperature  float64 `json:"temperature"`
	Pressure     float64 `json:"pressure"`
	Samples      uint64  `json:"samples"`
}

// Monitor drives the render loop. The queue is its only link to the
// acquisition goroutine; everything else it owns exclusively.
type Monitor struct {
	queue    *pipeline.SampleQueue
	history  *pipeline.History
	raster   *chart.Rasterizer
	charts   []ChartSpec
	interval time.Duration
	logger   *slog.Logger
	onBatch  func([]*telemetry.Sample)

	mu      sync.RWMutex
	readout Readout
	frames  map[string][]byte // latest encoded PNG per chart
	total   uint64
}

// WithRenderInterval overrides the render tick period.
func WithRenderInterval(interval time.Duration) func(*Monitor) {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// WithLogger sets the logger for the render loop.
func WithLogger(logger *slog.Logger) func(*Monitor) {
	return func(m *Monitor) {
		m.logger = logger.With(slog.String("component", "monitor"))
	}
}

// New creates a monitor over the given queue, history and charts.
func New(queue *pipeline.SampleQueue, history *pipeline.History, raster *chart.Rasterizer, charts []ChartSpec, options ...func(*Monitor)) *Monitor {
	m := Monitor{
		queue:    queue,
		history:  history,
		raster:   raster,
		charts:   charts,
		interval: DefaultRenderInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		frames:   make(map[string][]byte, len(charts)),
	}

	for _, option := range options {
		option(&m)
	}

	return &m
}

// SetBatchHook registers a callback invoked once per tick with the drained
// batch, after the readout and frames have been updated. Used by the server
// to push live samples to websocket clients. Must be set before Run.
func (m *Monitor) SetBatchHook(fn func([]*telemetry.Sample)) {
	m.onBatch = fn
}

// Run drives Tick on a fixed-period ticker until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	m.logger.Info("render loop started", slog.Duration("interval", m.interval))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("render loop stopped",
				slog.String("samples", humanize.Comma(int64(m.Total()))))
			return

		case <-stats.C:
			m.logger.Info("pipeline stats",
				slog.String("samples", humanize.Comma(int64(m.Total()))),
				slog.Int("retained", m.history.Len()),
				slog.Int("queued", m.queue.Len()))

		case <-ticker.C:
			m.Tick()
		}
	}
}

// Tick drains the queue, folds every sample into the history and readout,
// then renders each configured chart once for the whole batch. It returns
// the number of samples processed.
func (m *Monitor) Tick() int {
	batch := m.queue.DrainAll()
	if len(batch) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, s := range batch {
		m.history.Append(s)
		m.apply(s)
		m.total++
	}
	m.readout.Samples = m.total
	readout := m.readout
	m.mu.Unlock()

	m.logger.Debug("telemetry",
		slog.String("timestamp", readout.Timestamp),
		slog.String("phase", readout.Phase),
		slog.Float64("altitude", readout.Altitude),
		slog.Float64("velocity", readout.Velocity))

	// One redraw per chart per batch, not per sample.
	for _, spec := range m.charts {
		m.render(spec)
	}

	if m.onBatch != nil {
		m.onBatch(batch)
	}
	return len(batch)
}

// apply folds the fields present in a sample into the readout.
// Caller holds m.mu.
func (m *Monitor) apply(s *telemetry.Sample) {
	if s.Timestamp != "" {
		m.readout.Timestamp = s.Timestamp
	}
	if s.FlightTime != nil {
		m.readout.FlightTime = *s.FlightTime
	}
	if s.Phase != nil {
		m.readout.Phase = string(*s.Phase)
	}
	if s.Altitude != nil {
		m.readout.Altitude = *s.Altitude
	}
	if s.Velocity != nil {
		m.readout.Velocity = *s.Velocity
	}
	if s.Acceleration != nil {
		m.readout.Acceleration = *s.Acceleration
	}
	if s.Temperature != nil {
		m.readout.Temperature = *s.Temperature
	}
	if s.Pressure != nil {
		m.readout.Pressure = *s.Pressure
	}
}

func (m *Monitor) render(spec ChartSpec) {
	times, values := m.history.Series(spec.Metric)

	prims := chart.Render(spec.Metric, times, values, spec.Width, spec.Height)
	if len(prims) == 0 {
		return // not enough points yet; keep the previous frame if any
	}

	img, err := m.raster.Frame(prims, spec.Width, spec.Height)
	if err != nil {
		m.logger.Warn("rendering chart failed",
			slog.String("chart", spec.Name), slog.String("error", err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		m.logger.Warn("encoding chart failed",
			slog.String("chart", spec.Name), slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	m.frames[spec.Name] = buf.Bytes()
	m.mu.Unlock()
}

// Readout returns a copy of the latest view-model.
func (m *Monitor) Readout() Readout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readout
}

// Frame returns the latest encoded PNG for the named chart.
func (m *Monitor) Frame(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	frame, ok := m.frames[name]
	return frame, ok
}

// Charts returns the configured chart specs.
func (m *Monitor) Charts() []ChartSpec {
	return m.charts
}

// Total returns the number of samples processed since start.
func (m *Monitor) Total() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}
