package source

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// connectTimeout bounds how long a TCP dial may take, covering DNS lookup,
// refusal and unreachable hosts.
const connectTimeout = 5 * time.Second

// TCP reads newline-terminated telemetry frames from a TCP server, such as a
// ground-station relay or the bundled feeder.
type TCP struct {
	host   string
	port   int
	logger *slog.Logger

	connected bool
	conn      net.Conn
	pump      *linePump
}

// NewTCP creates a TCP client source for host:port. The logger may be nil,
// in which case pump diagnostics are discarded.
func NewTCP(host string, port int, logger *slog.Logger) *TCP {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &TCP{
		host:   host,
		port:   port,
		logger: logger.With(slog.String("source", "tcp"), slog.String("host", host), slog.Int("port", port)),
	}
}

func (t *TCP) Connect() (string, error) {
	if t.connected {
		return "", ErrAlreadyConnected
	}

	addr := net.JoinHostPort(t.host, fmt.Sprintf("%d", t.port))
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", addr, err)
	}

	t.conn = conn
	t.pump = newLinePump(conn, t.logger)
	t.connected = true
	return fmt.Sprintf("connected to %s", addr), nil
}

func (t *TCP) Disconnect() {
	if !t.connected {
		return
	}

	t.connected = false
	t.conn.Close() // unblocks the pump's pending read
	t.pump.wait()
	t.conn = nil
	t.pump = nil
}

func (t *TCP) Connected() bool {
	return t.connected
}

func (t *TCP) Read() (*telemetry.Sample, error) {
	if !t.connected {
		return nil, nil
	}

	line, ok := t.pump.next()
	if !ok {
		return nil, nil
	}

	sample, err := telemetry.ParseFrame([]byte(line))
	if err != nil {
		return nil, fmt.Errorf("tcp frame %q: %w", line, err)
	}
	return sample, nil
}
