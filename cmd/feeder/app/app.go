// Package app implements the telemetry feeder: a TCP server that streams
// simulated flight frames as newline-delimited JSON, one independent flight
// per client. It exists to exercise the monitor's TCP source without real
// hardware.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/flightdeck/rocket-telemetry/internal/source"
)

// Run serves simulated telemetry until the context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", config.ListenAddr, err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	logger.Info("feeder listening",
		slog.String("addr", config.ListenAddr),
		slog.Duration("interval", config.EmitInterval()))

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveClient(ctx, conn, config.EmitInterval(), logger)
		}()
	}

	wg.Wait()
	return nil
}

// serveClient streams one simulated flight to a single client until the
// client goes away or the feeder shuts down.
func serveClient(ctx context.Context, conn net.Conn, interval time.Duration, logger *slog.Logger) {
	defer conn.Close()

	logger = logger.With(slog.String("client", conn.RemoteAddr().String()))
	logger.Info("client connected")

	sim := source.NewSimulator()
	if _, err := sim.Connect(); err != nil {
		logger.Error(err.Error())
		return
	}
	defer sim.Disconnect()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sent int64
	for {
		select {
		case <-ctx.Done():
			logger.Info("client dropped on shutdown", slog.String("frames", humanize.Comma(sent)))
			return

		case <-ticker.C:
			sample, err := sim.Read()
			if err != nil || sample == nil {
				continue
			}

			frame, err := json.Marshal(sample)
			if err != nil {
				logger.Warn("encoding frame", slog.String("error", err.Error()))
				continue
			}

			if _, err := conn.Write(append(frame, '\n')); err != nil {
				logger.Info("client disconnected", slog.String("frames", humanize.Comma(sent)))
				return
			}
			sent++
		}
	}
}
