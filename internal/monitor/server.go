package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flightdeck/rocket-telemetry/internal/telemetry"
)

const (
	shutdownTimeout = 5 * time.Second

	// broadcastTimeout bounds each websocket write so a client that stops
	// reading cannot stall the render loop once its buffers fill.
	broadcastTimeout = time.Second
)

// Server exposes the monitor on a local HTTP listener: latest readout as
// JSON, rendered chart frames as PNG, live samples over a websocket, and a
// minimal dashboard page. Meant for localhost use; there is no auth.
type Server struct {
	monitor  *Monitor
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a dashboard server over the monitor and registers itself
// as the monitor's batch hook.
func NewServer(m *Monitor, logger *slog.Logger) *Server {
	s := Server{
		monitor: m,
		logger:  logger.With(slog.String("component", "server")),
		upgrader: websocket.Upgrader{
			// Local dashboard; accept whatever origin the browser sends.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}

	m.SetBatchHook(s.broadcast)
	return &s
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /charts/{name}", s.handleChart)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return mux
}

// Run serves the dashboard until the context is cancelled. The listener is
// bound before anything is announced, so a taken port fails Run right away.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding dashboard listener: %w", err)
	}

	srv := http.Server{Handler: s.Handler()}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)

		s.mu.Lock()
		for conn := range s.clients {
			conn.Close()
		}
		clear(s.clients)
		s.mu.Unlock()
	}()

	s.logger.Info("dashboard listening", slog.String("addr", addr))

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	readout := s.monitor.Readout()
	if readout.Samples == 0 {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(readout); err != nil {
		s.logger.Warn("encoding readout", slog.String("error", err.Error()))
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("name"), ".png")

	frame, ok := s.monitor.Frame(name)
	if !ok {
		http.Error(w, "no frame for chart", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(frame)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("websocket client connected", slog.String("remote", conn.RemoteAddr().String()))

	// Reads are only needed to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// broadcast pushes a drained batch to every connected websocket client.
func (s *Server) broadcast(batch []*telemetry.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) == 0 {
		return
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		s.logger.Warn("encoding batch", slog.String("error", err.Error()))
		return
	}

	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(broadcastTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn.Close()
	delete(s.clients, conn)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Rocket Telemetry Monitor</title>
<style>
  body { background: #0a0e27; color: #00ff88; font-family: monospace; margin: 20px; }
  h1 { color: #00ff88; font-size: 18px; }
  .cards { display: flex; flex-wrap: wrap; gap: 10px; }
  .card { background: #1a1f3a; border: 1px solid #333; padding: 10px 20px; text-align: center; }
  .card .label { color: #888; font-size: 12px; }
  .card .value { font-size: 28px; font-weight: bold; }
  .card .unit { color: #666; font-size: 11px; }
  .phase { color: #ffaa00; margin: 10px 0; }
  img { display: block; margin: 10px 0; border: 1px solid #333; }
</style>
</head>
<body>
<h1>ROCKET TELEMETRY MONITOR</h1>
<div class="phase">Phase: <span id="phase">--</span></div>
<div class="cards">
  <div class="card"><div class="label">Altitude</div><div class="value" id="altitude">--</div><div class="unit">m</div></div>
  <div class="card"><div class="label">Velocity</div><div class="value" id="velocity">--</div><div class="unit">m/s</div></div>
  <div class="card"><div class="label">Acceleration</div><div class="value" id="acceleration">--</div><div class="unit">m/s&#178;</div></div>
  <div class="card"><div class="label">Temperature</div><div class="value" id="temperature">--</div><div class="unit">&#176;C</div></div>
  <div class="card"><div class="label">Pressure</div><div class="value" id="pressure">--</div><div class="unit">kPa</div></div>
  <div class="card"><div class="label">Flight Time</div><div class="value" id="flight_time">--</div><div class="unit">s</div></div>
</div>
{{range .}}<img id="chart-{{.Name}}" src="/charts/{{.Name}}.png" width="{{.Width}}" height="{{.Height}}" alt="{{.Metric}}">
{{end}}
<script>
const fields = ["flight_time", "altitude", "velocity", "acceleration", "temperature", "pressure"];
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const batch = JSON.parse(ev.data);
  const last = batch[batch.length - 1];
  if (!last) return;
  for (const f of fields) {
    if (last[f] !== undefined) document.getElementById(f).textContent = last[f].toFixed(1);
  }
  if (last.phase !== undefined) document.getElementById("phase").textContent = last.phase;
};
setInterval(() => {
  for (const img of document.querySelectorAll("img[id^=chart-]")) {
    img.src = img.src.split("?")[0] + "?t=" + Date.now();
  }
}, 250);
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.monitor.Charts()); err != nil {
		s.logger.Warn("rendering index", slog.String("error", err.Error()))
	}
}
