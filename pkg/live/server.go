package live

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

// Config configures a Server.
type Config struct {
	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ReadTimeout closes connections that stay silent this long.
	// Zero disables the deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// SendQueue is the number of frames buffered per connection. Frames
	// beyond it are dropped.
	SendQueue int

	// CheckOrigin is passed to the upgrader. Nil accepts all origins.
	CheckOrigin func(r *http.Request) bool

	// Gatherer backs the metrics endpoint. Nil disables it.
	Gatherer prometheus.Gatherer

	// MetricsPath is where the metrics are served. Defaults to /metrics.
	MetricsPath string

	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		WriteTimeout:    10 * time.Second,
		SendQueue:       64,
		MetricsPath:     "/metrics",
	}
}

// Server mounts one component per websocket connection.
type Server struct {
	def      *bind.Definition
	render   host.RenderFunc
	loop     *loop.Loop
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*conn
}

// New creates a server for def. Component work is dispatched onto l.
func New(def *bind.Definition, render host.RenderFunc, l *loop.Loop, config Config) *Server {
	defaults := DefaultConfig()
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.WriteBufferSize <= 0 {
		config.WriteBufferSize = defaults.WriteBufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.SendQueue <= 0 {
		config.SendQueue = defaults.SendQueue
	}
	if config.MetricsPath == "" {
		config.MetricsPath = defaults.MetricsPath
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Server{
		def:    def,
		render: render,
		loop:   l,
		config: config,
		logger: logger.With("component", def.Name),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     checkOrigin,
		},
		conns: make(map[string]*conn),
	}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.ServeWS)
	r.Get("/healthz", s.healthz)
	r.Get("/state", s.state)
	if s.config.Gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close closes every connection.
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// ServeWS upgrades the request and serves one component until the client
// disconnects.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newConn(s, ws, uuid.NewString())
	comp, err := s.mount(c)
	if err != nil {
		s.logger.Error("mount failed", "conn", c.id, "error", err)
		c.sendNow(Frame{Type: FrameError, Error: err.Error()})
		ws.Close()
		return
	}
	c.comp = comp

	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
	s.logger.Info("client connected", "conn", c.id, "remote", r.RemoteAddr)

	snap := comp.Snapshot()
	c.send(Frame{Type: FrameRender, Snapshot: &snap})

	go c.writeLoop()
	c.readLoop()

	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "conn", c.id)
}

// mount mounts the component on the loop and waits for it.
func (s *Server) mount(c *conn) (*host.Component, error) {
	type result struct {
		comp *host.Component
		err  error
	}
	done := make(chan result, 1)
	s.loop.Dispatch(func() {
		comp, err := host.Mount(s.def, s.render,
			host.WithID(c.id),
			host.WithLogger(s.logger),
			host.WithOnRender(func(snap host.Snapshot) {
				c.send(Frame{Type: FrameRender, Snapshot: &snap})
			}),
		)
		done <- result{comp, err}
	})

	select {
	case res := <-done:
		return res.comp, res.err
	case <-s.loop.Done():
		return nil, loop.ErrClosed
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"component":   s.def.Name,
		"connections": s.Connections(),
	})
}

// state reports the snapshot of every connected component.
func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snaps := make([]host.Snapshot, 0, len(s.conns))
	for _, c := range s.conns {
		snaps = append(snaps, c.comp.Snapshot())
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snaps); err != nil {
		s.logger.Warn("encode state", "error", err)
	}
}

var errQueueFull = errors.New("send queue full")
