package source

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"strings"
)

// pumpBacklog bounds how many unread frames a pump holds before it starts
// dropping. At the feeds' typical 10-20 Hz this is seconds of slack.
const pumpBacklog = 64

// linePump moves newline-terminated frames from a blocking reader onto a
// buffered channel on its own goroutine, so Read on a source never touches
// I/O. The pump exits when the underlying handle is closed; Disconnect closes
// the handle and then waits on done.
type linePump struct {
	lines  chan string
	done   chan struct{}
	logger *slog.Logger
}

func newLinePump(r io.Reader, logger *slog.Logger) *linePump {
	p := linePump{
		lines:  make(chan string, pumpBacklog),
		done:   make(chan struct{}),
		logger: logger,
	}

	go p.run(r)
	return &p
}

func (p *linePump) run(r io.Reader) {
	defer close(p.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		select {
		case p.lines <- line:
		default:
			p.logger.Warn("dropping frame: reader backlog is full")
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, fs.ErrClosed) && !errors.Is(err, io.EOF) {
		p.logger.Warn("upstream read ended", slog.String("error", err.Error()))
	}
}

// next returns the oldest buffered frame without blocking.
func (p *linePump) next() (string, bool) {
	select {
	case line := <-p.lines:
		return line, true
	default:
		return "", false
	}
}

// wait blocks until the pump goroutine has exited.
func (p *linePump) wait() {
	<-p.done
}
