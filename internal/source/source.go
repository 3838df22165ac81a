// Package source provides the telemetry feeds the monitor can attach to:
// a built-in flight simulator, a serial port, or a TCP socket. Exactly one
// source is live at a time; switching sources requires a disconnect first.
package source

import (
	"errors"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// ErrAlreadyConnected is returned by Connect on a source that is still live.
var ErrAlreadyConnected = errors.New("source is already connected")

// Source is one upstream telemetry feed.
//
// Connect establishes the feed and returns a human-readable status message.
// On failure no partial state is retained and the source stays disconnected.
// Disconnect is idempotent, releases any OS handle and never fails. Read is
// non-blocking: it returns (nil, nil) when no new data is available this
// tick, and a transient error for malformed input; the caller is expected
// to log it and keep polling.
type Source interface {
	Connect() (string, error)
	Disconnect()
	Read() (*telemetry.Sample, error)
	Connected() bool
}
