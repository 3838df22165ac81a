package source

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

// settleDelay gives microcontroller boards that reset on port open (most
// Arduino-style flight computers do) time to come back up before we report
// the connection as live.
const settleDelay = 2 * time.Second

var validBaudRates = map[uint]struct{}{
	9600:   {},
	19200:  {},
	38400:  {},
	57600:  {},
	115200: {},
}

// ValidBaudRate reports whether the monitor supports the given baud rate.
func ValidBaudRate(baud uint) bool {
	_, ok := validBaudRates[baud]
	return ok
}

// Serial reads newline-terminated telemetry frames from a serial device.
type Serial struct {
	device string
	baud   uint
	logger *slog.Logger

	connected bool
	port      io.ReadWriteCloser
	pump      *linePump
}

// NewSerial creates a serial source for the named device. The logger may be
// nil, in which case pump diagnostics are discarded.
func NewSerial(device string, baud uint, logger *slog.Logger) *Serial {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Serial{
		device: device,
		baud:   baud,
		logger: logger.With(slog.String("source", "serial"), slog.String("device", device)),
	}
}

func (s *Serial) Connect() (string, error) {
	if s.connected {
		return "", ErrAlreadyConnected
	}
	if !ValidBaudRate(s.baud) {
		return "", fmt.Errorf("unsupported baud rate: %d", s.baud)
	}

	port, err := goserial.Open(goserial.OpenOptions{
		PortName:        s.device,
		BaudRate:        s.baud,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      goserial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", s.device, err)
	}

	time.Sleep(settleDelay)

	s.port = port
	s.pump = newLinePump(port, s.logger)
	s.connected = true
	return fmt.Sprintf("connected to %s at %d baud", s.device, s.baud), nil
}

func (s *Serial) Disconnect() {
	if !s.connected {
		return
	}

	s.connected = false
	s.port.Close() // unblocks the pump's pending read
	s.pump.wait()
	s.port = nil
	s.pump = nil
}

func (s *Serial) Connected() bool {
	return s.connected
}

func (s *Serial) Read() (*telemetry.Sample, error) {
	if !s.connected {
		return nil, nil
	}

	line, ok := s.pump.next()
	if !ok {
		return nil, nil
	}

	sample, err := telemetry.ParseFrame([]byte(line))
	if err != nil {
		return nil, fmt.Errorf("serial frame %q: %w", line, err)
	}
	return sample, nil
}
