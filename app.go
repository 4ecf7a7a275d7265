package autovhost

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/autovhost/pkg/autoload"
	"github.com/vango-dev/autovhost/pkg/middleware"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

// App is a virtual host server: a host router plus the autoloader that
// fills it.
//
// Example:
//
//	app := autovhost.New(autovhost.Config{Debug: true})
//	if _, err := app.Scan(ctx, nil); err != nil {
//	    log.Fatal(err)
//	}
//	app.Run(ctx)
type App struct {
	router     *vhost.Router
	autoloader *autoload.Autoloader

	config Config
	logger *slog.Logger
}

// New creates a new App with the given configuration.
func New(cfg Config) *App {
	cfg.Server.applyDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: cfg,
		logger: logger,
	}

	var mw []func(http.Handler) http.Handler
	if cfg.Tracing {
		mw = append(mw, middleware.OpenTelemetry())
	}
	var metrics *autoload.Metrics
	if cfg.Registry != nil {
		mw = append(mw, middleware.Prometheus(
			middleware.WithRegistry(cfg.Registry),
			middleware.WithHostLabel(app.hostLabel),
		))
		metrics = autoload.NewMetrics(autoload.WithRegistry(cfg.Registry))
	}

	opts := []vhost.Option{
		vhost.WithLogger(logger),
		vhost.WithMiddleware(mw...),
	}
	if cfg.NotFound != nil {
		opts = append(opts, vhost.WithNotFound(cfg.NotFound))
	}
	app.router = vhost.New(opts...)

	app.autoloader = autoload.New(autoload.Options{
		Loader:      cfg.Loader,
		Logger:      logger,
		Metrics:     metrics,
		BindTimeout: cfg.BindTimeout,
		Concurrency: cfg.Concurrency,
	})

	return app
}

// hostLabel bounds the host metric label to mounted patterns.
func (a *App) hostLabel(r *http.Request) string {
	if p, ok := a.router.Match(r.Host); ok {
		return p
	}
	return "unmatched"
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Handler returns the App as an http.Handler.
func (a *App) Handler() http.Handler {
	return a
}

// Scan binds every domain directory under settings.BaseFolder. A nil
// settings scans the working directory. Config.Debug applies when
// settings does not enable debug itself.
func (a *App) Scan(ctx context.Context, settings *ScanSettings) (*Report, error) {
	s := ScanSettings{}
	if settings != nil {
		s = *settings
	}
	s.Debug = s.Debug || a.config.Debug
	return a.autoloader.Scan(ctx, a.router, &s)
}

// ScanSettings decodes untyped scan settings and scans.
func (a *App) ScanSettings(ctx context.Context, raw any) (*Report, error) {
	settings, err := autoload.DecodeScanSettings(raw)
	if err != nil {
		return nil, err
	}
	return a.Scan(ctx, settings)
}

// Bind binds one domain.
func (a *App) Bind(ctx context.Context, req *Request) (*Confirmation, error) {
	if req != nil && a.config.Debug && !req.Debug {
		r := *req
		r.Debug = true
		req = &r
	}
	return a.autoloader.Bind(ctx, req, a.router)
}

// BindSettings decodes untyped bind settings, such as a domains entry of
// autovhost.yaml, and binds the domain.
func (a *App) BindSettings(ctx context.Context, raw any) (*Confirmation, error) {
	req, err := autoload.DecodeRequest(raw)
	if err != nil {
		return nil, err
	}
	return a.Bind(ctx, req)
}

// Router returns the underlying host router.
func (a *App) Router() *vhost.Router {
	return a.router
}

// Autoloader returns the underlying autoloader, e.g. to bind into another
// router.
func (a *App) Autoloader() *autoload.Autoloader {
	return a.autoloader
}

// Config returns the app configuration.
func (a *App) Config() Config {
	return a.config
}

// MetricsHandler serves the configured registry, or 404 when metrics are
// disabled.
func (a *App) MetricsHandler() http.Handler {
	if a.config.Registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(a.config.Registry, promhttp.HandlerOpts{
		Registry: a.config.Registry,
	})
}
