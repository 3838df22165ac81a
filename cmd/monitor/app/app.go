package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdeck/rocket-telemetry/internal/chart"
	"github.com/flightdeck/rocket-telemetry/internal/monitor"
	"github.com/flightdeck/rocket-telemetry/internal/pipeline"
	"github.com/flightdeck/rocket-telemetry/internal/source"
	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// Run wires the pipeline together and blocks until the context is cancelled:
// source -> acquisition goroutine -> queue -> render loop -> dashboard.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	src, err := createSource(&config.Source, logger)
	if err != nil {
		return fmt.Errorf("creating source: %w", err)
	}

	status, err := src.Connect()
	if err != nil {
		return fmt.Errorf("connecting %s source: %w", config.Source.Type, err)
	}
	logger.Info(status, slog.String("source", string(config.Source.Type)))

	raster, err := chart.NewRasterizer()
	if err != nil {
		return fmt.Errorf("creating rasterizer: %w", err)
	}
	defer raster.Close()

	charts := make([]monitor.ChartSpec, len(config.Charts))
	for i, cc := range config.Charts {
		metric, _ := telemetry.ParseMetric(cc.Metric) // validated with the config
		charts[i] = monitor.ChartSpec{
			Name:   cc.Name,
			Metric: metric,
			Width:  cc.Width,
			Height: cc.Height,
		}
	}

	queue := pipeline.NewSampleQueue()
	history := pipeline.NewHistory(config.Settings.HistorySize)

	mon := monitor.New(queue, history, raster, charts,
		monitor.WithRenderInterval(time.Duration(config.Settings.RenderInterval)),
		monitor.WithLogger(logger))
	server := monitor.NewServer(mon, logger)

	acq := pipeline.NewAcquisition(src, queue,
		pipeline.WithPollInterval(time.Duration(config.Settings.PollInterval)),
		pipeline.WithLogger(logger))
	if err := acq.Start(ctx); err != nil {
		src.Disconnect()
		return fmt.Errorf("starting acquisition: %w", err)
	}

	// A dashboard failure (a taken port, typically) must abort startup, not
	// sit unnoticed until shutdown; the server cancels the pipeline when its
	// Run returns early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx, config.Settings.ListenAddr)
		cancel()
	}()

	mon.Run(ctx)

	// Shutdown order matters: stop polling before closing the handle.
	acq.Stop()
	src.Disconnect()
	logger.Info("disconnected", slog.String("source", string(config.Source.Type)))

	return <-serverErr
}

func createSource(config *SourceConfig, logger *slog.Logger) (source.Source, error) {
	switch config.Type {
	case SourceSimulator:
		return source.NewSimulator(), nil

	case SourceSerial:
		return source.NewSerial(config.Serial.Device, config.Serial.BaudRate, logger), nil

	case SourceTCP:
		return source.NewTCP(config.TCP.Host, config.TCP.Port, logger), nil

	default:
		return nil, fmt.Errorf("unknown source type: %q", config.Type)
	}
}
