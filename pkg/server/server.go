package server

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/floatkit/pkg/clock"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/metrics"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/render"
)

//go:embed client.js
var clientScript []byte

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Default ":8080".
	Addr string

	// Placement applies to demo tooltips that do not name one.
	Placement string

	// Delay is the explicit hover delay of every tooltip. Zero defers to the
	// delay group.
	Delay delaygroup.Delay

	// GroupDelay is the delay of each session's tooltip group. Zero uses
	// tooltip.DefaultGroupDelay.
	GroupDelay time.Duration

	// GroupTimeout is the group's grace window after its current member
	// closes.
	GroupTimeout time.Duration

	// MetricsNamespace prefixes every metric. Default "floatkit".
	MetricsNamespace string

	// Registry receives the collectors and backs /metrics. A private
	// registry is created when nil.
	Registry *prometheus.Registry

	// Metrics overrides the collectors registered on Registry.
	Metrics *metrics.Collector

	// CheckOrigin validates the WebSocket Origin header. Nil allows any
	// origin.
	CheckOrigin func(r *http.Request) bool

	// Clock replaces the wall clock in every session. Tests use a manual
	// clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Server serves the demo page and layout-sync sessions.
type Server struct {
	config   Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	resolver *position.Resolver
	renderer *render.Renderer
	router   chi.Router
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards closing together with wg.Add so no session starts once
	// Shutdown is waiting.
	mu         sync.Mutex
	closing    bool
	sessions   map[*Session]struct{}
	httpServer *http.Server
}

// New creates a server.
func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Metrics == nil {
		opts := []metrics.Option{metrics.WithRegistry(config.Registry)}
		if config.MetricsNamespace != "" {
			opts = append(opts, metrics.WithNamespace(config.MetricsNamespace))
		}
		config.Metrics = metrics.New(opts...)
	}
	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
		resolver: position.NewResolver(
			position.WithLogger(config.Logger),
			position.WithObserver(config.Metrics),
		),
		renderer: render.NewRenderer(render.RendererConfig{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[*Session]struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/mode", s.handleMode)
	r.Get("/client.js", s.handleClientScript)
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return r
}

// requestLogger logs each request at debug once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the collectors.
func (s *Server) Metrics() *metrics.Collector { return s.metrics }

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(clientScript)
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.isClosing() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(sessionOptions{
		Placement:    s.config.Placement,
		Delay:        s.config.Delay,
		GroupDelay:   s.config.GroupDelay,
		GroupTimeout: s.config.GroupTimeout,
		Resolver:     s.resolver,
		Renderer:     s.renderer,
		Metrics:      s.metrics,
		Logger:       s.logger,
		Clock:        s.config.Clock,
	})

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		sess.Close()
		conn.Close()
		return
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()
	s.metrics.SessionOpened()
	s.logger.Info("session started", "session", sess.ID(), "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		s.metrics.SessionClosed()
		s.wg.Done()
	}()

	if err := sess.Serve(s.ctx, conn); err != nil {
		s.logger.Warn("session ended", "session", sess.ID(), "error", err)
		return
	}
	s.logger.Info("session ended", "session", sess.ID())
}

// ListenAndServe serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("listening", "addr", s.config.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown ends every session, then stops the HTTP server, waiting until ctx
// is done at most.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.cancel()
	s.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
