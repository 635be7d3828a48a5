package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures a Server. Zero fields take the values of DefaultConfig.
type Config struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// Title is the bootstrap page title.
	Title string

	// Path is the websocket endpoint.
	Path string

	// MetricsPath serves Prometheus metrics unless DisableMetrics is set.
	MetricsPath    string
	DisableMetrics bool

	// ReadTimeout closes a session that sends nothing, not even a pong,
	// for this long. Pings go out at half this interval.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// MaxMessageSize limits client messages in bytes.
	MaxMessageSize int64

	// MaxPayload limits the payload of patch frames.
	MaxPayload int

	// EventQueue is the per-session buffered event count.
	EventQueue int

	// CheckOrigin validates websocket upgrade origins. Nil accepts
	// same-origin requests only (gorilla's default).
	CheckOrigin func(r *http.Request) bool

	// Registry receives the server's metrics and serves MetricsPath.
	// Nil creates a private registry.
	Registry *prometheus.Registry

	// TracerName names the OpenTelemetry tracer.
	TracerName string

	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":3000",
		Title:          "reactor",
		Path:           "/live",
		MetricsPath:    "/metrics",
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 64 * 1024,
		MaxPayload:     32 * 1024,
		EventQueue:     64,
		TracerName:     "reactor",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = d.MaxPayload
	}
	if c.EventQueue == 0 {
		c.EventQueue = d.EventQueue
	}
	if c.TracerName == "" {
		c.TracerName = d.TracerName
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
