package autovhost

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config is the application configuration.
type Config struct {
	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Debug makes fallback pages name the missing module or export.
	// Applies to Bind and Scan calls that do not set it themselves.
	Debug bool

	// BindTimeout bounds each module load. Default: 10s.
	BindTimeout time.Duration

	// Concurrency limits parallel binds during a scan.
	// Default: runtime.NumCPU().
	Concurrency int

	// Loader loads domain modules. Default: the yaegi interpreter.
	Loader Loader

	// Registry receives request and autoload metrics. Nil disables metrics.
	Registry *prometheus.Registry

	// Tracing adds an OpenTelemetry server span per request. Spans go to
	// the global tracer provider.
	Tracing bool

	// NotFound answers requests for hosts nothing is mounted for.
	// Default: http.NotFoundHandler().
	NotFound http.Handler

	// Server configures Run.
	Server ServerConfig
}

// ServerConfig configures the HTTP listeners started by Run.
type ServerConfig struct {
	// Addr is the virtual host listener address. Default ":8080".
	Addr string

	// ReadHeaderTimeout is the header read timeout. Default 5s.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default 10s.
	ShutdownTimeout time.Duration

	// MetricsAddr starts a separate metrics listener when set and a
	// Registry is configured.
	MetricsAddr string

	// MetricsPath is the metrics endpoint path. Default "/metrics".
	MetricsPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BindTimeout: 10 * time.Second,
		Server:      DefaultServerConfig(),
	}
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MetricsPath:       "/metrics",
	}
}

func (c *ServerConfig) applyDefaults() {
	d := DefaultServerConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
}
