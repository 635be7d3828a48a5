package live

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// Server serves a root component to browsers over websocket sessions.
// Every connection gets its own app instance, renderer, scheduler and
// remote host, all driven by one goroutine.
type Server struct {
	config   Config
	root     *vdom.Component
	props    vdom.Props
	provides map[any]any

	upgrader websocket.Upgrader
	metrics  *metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// New creates a server for root. Zero Config fields take their defaults.
func New(root *vdom.Component, cfg Config) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		config:   cfg,
		root:     root,
		provides: make(map[any]any),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		metrics:  newMetrics(cfg.Registry),
		tracer:   otel.Tracer(cfg.TracerName),
		logger:   cfg.Logger.With("component", "live"),
		sessions: make(map[string]*Session),
	}
}

// WithProps sets the root props every session mounts with.
func (s *Server) WithProps(props vdom.Props) *Server {
	s.props = props
	return s
}

// Provide makes value injectable under key in every session's app.
func (s *Server) Provide(key, value any) *Server {
	s.provides[key] = value
	return s
}

// Config returns the server's effective configuration.
func (s *Server) Config() Config {
	return s.config
}

// Handler returns the server's HTTP routes: the bootstrap page at "/",
// the websocket endpoint and, unless disabled, the metrics endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handlePage)
	r.Get(s.config.Path, s.handleLive)
	if !s.config.DisableMetrics {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:  s.config.Title,
		Path:   s.config.Path,
		Script: clientScript,
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.wsErrors.WithLabelValues("upgrade").Inc()
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sess := newSession(s, conn)
	s.track(sess)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.untrack(sess)
		sess.run(context.WithoutCancel(r.Context()))
	}()
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.sessionsTotal.Inc()
	s.metrics.activeSessions.Inc()
	s.logger.Info("session started", "session", sess.id)
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.metrics.activeSessions.Dec()
	s.logger.Info("session ended", "session", sess.id)
}

// Sessions returns the ids of connected sessions, sorted.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Close ends every session and waits for their goroutines to exit.
func (s *Server) Close() {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ListenAndServe serves Handler on Config.Addr until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}
