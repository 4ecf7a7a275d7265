package autoload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
	"github.com/vango-dev/autovhost/pkg/loader"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

// DefaultBindTimeout bounds a single module load.
const DefaultBindTimeout = 10 * time.Second

const tracerName = "github.com/vango-dev/autovhost/pkg/autoload"

// Options configures an Autoloader.
type Options struct {
	// Loader loads domain modules. Default: a yaegi interpreter.
	Loader loader.Loader

	// Resolver computes module paths. Default: NewResolver().
	Resolver *Resolver

	// Logger receives one record per bind and per scan.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics is optional. Nil disables metrics.
	Metrics *Metrics

	// Tracer is used for bind and scan spans.
	// Default: the global otel tracer provider.
	Tracer trace.Tracer

	// BindTimeout bounds each module load. Default: 10s.
	BindTimeout time.Duration

	// Concurrency limits parallel binds during a scan.
	// Default: runtime.NumCPU().
	Concurrency int
}

// Autoloader binds domain modules to a vhost router.
type Autoloader struct {
	loader      loader.Loader
	resolver    *Resolver
	logger      *slog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	bindTimeout time.Duration
	concurrency int

	mu     sync.Mutex
	router vhost.Mounter
}

// New creates an Autoloader.
func New(opts Options) *Autoloader {
	a := &Autoloader{
		loader:      opts.Loader,
		resolver:    opts.Resolver,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		bindTimeout: opts.BindTimeout,
		concurrency: opts.Concurrency,
	}
	if a.loader == nil {
		a.loader = loader.NewInterpreter()
	}
	if a.resolver == nil {
		a.resolver = NewResolver()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "autoload")
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}
	if a.bindTimeout <= 0 {
		a.bindTimeout = DefaultBindTimeout
	}
	if a.concurrency <= 0 {
		a.concurrency = runtime.NumCPU()
	}
	return a
}

// Confirmation describes a successful bind.
type Confirmation struct {
	Domain   string
	Path     string
	Export   string
	FromScan bool
	Message  string
}

func confirmationMessage(domain string, fromScan bool) string {
	how := "manually"
	if fromScan {
		how = "automatically"
	}
	return fmt.Sprintf("%q module %s loaded as a virtual host handler.", domain, how)
}

func source(fromScan bool) string {
	if fromScan {
		return "scan"
	}
	return "manual"
}

// useRouter returns router when it can mount, remembering it, or the last
// remembered router otherwise.
func (a *Autoloader) useRouter(router vhost.Mounter) (vhost.Mounter, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if vhost.IsMountable(router) {
		a.router = router
		return router, true
	}
	return a.router, a.router != nil
}

// Bind resolves, loads and mounts the module of one domain.
//
// Validation errors are returned before anything is mounted. Past
// validation exactly one handler is mounted for req.Domain, either the
// module's handler or a 500 fallback, and the error then reports why the
// fallback was used. A nil router reuses the router of the previous Bind
// or Scan.
func (a *Autoloader) Bind(ctx context.Context, req *Request, router vhost.Mounter) (*Confirmation, error) {
	if req == nil {
		return nil, autoerrors.New(autoerrors.CodeInvalidSettingsType)
	}
	router, ok := a.useRouter(router)
	if !ok {
		return nil, autoerrors.New(autoerrors.CodeMissingRouter)
	}
	if req.Domain == "" {
		return nil, autoerrors.New(autoerrors.CodeMissingDomain).WithField("domainName")
	}
	if err := ValidateDomainName(req.Domain); err != nil {
		return nil, err
	}
	return a.bind(ctx, req.withDefaults(), router)
}

// BindSettings decodes raw with DecodeRequest and binds the result. The
// settings type is checked before the router, then the fields.
func (a *Autoloader) BindSettings(ctx context.Context, raw any, router vhost.Mounter) (*Confirmation, error) {
	m, err := settingsMap(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := a.useRouter(router); !ok {
		return nil, autoerrors.New(autoerrors.CodeMissingRouter)
	}
	req, err := decodeRequestMap(m)
	if err != nil {
		return nil, err
	}
	return a.Bind(ctx, req, router)
}

type loadResult struct {
	handler http.Handler
	reason  FallbackReason
	err     error
}

func (a *Autoloader) bind(ctx context.Context, req Request, router vhost.Mounter) (*Confirmation, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "autoload.Bind", trace.WithAttributes(
		attribute.String("autoload.domain", req.Domain),
		attribute.String("autoload.source", source(req.FromScan)),
	))
	defer span.End()

	resolved := a.resolver.Resolve(req.BaseFolder, req.Domain, req.MainFile, req.Export)
	span.SetAttributes(attribute.String("autoload.path", resolved.Path))

	var res loadResult
	if !resolved.Exists {
		res = loadResult{reason: FallbackModuleNotFound}
	} else {
		res = a.load(ctx, resolved)
	}

	logger := a.logger.With(
		"domain", req.Domain,
		"path", resolved.Path,
		"source", source(req.FromScan),
	)

	if res.handler != nil {
		router.Mount(req.Domain, res.handler)
		a.metrics.observeBind("bound", source(req.FromScan), time.Since(start))
		logger.Info("virtual host bound", "export", resolved.Export, "duration", time.Since(start))
		return &Confirmation{
			Domain:   req.Domain,
			Path:     resolved.Path,
			Export:   resolved.Export,
			FromScan: req.FromScan,
			Message:  confirmationMessage(req.Domain, req.FromScan),
		}, nil
	}

	page := FallbackPage{
		Reason: res.reason,
		Debug:  req.Debug,
		Path:   resolved.Path,
		Export: resolved.Export,
	}
	if res.err != nil {
		page.Cause = res.err.Error()
	}
	router.Mount(req.Domain, FallbackHandler(page))

	err := fallbackError(res, req.Domain, resolved)
	span.RecordError(err)
	span.SetStatus(codes.Error, res.reason.String())
	a.metrics.observeBind(res.reason.String(), source(req.FromScan), time.Since(start))
	logger.Warn("fallback mounted",
		"reason", res.reason.String(),
		"export", resolved.Export,
		"error", err,
	)
	return nil, err
}

// load runs the loader and export lookup under the bind timeout. The
// loader goroutine is abandoned on expiry; its result is dropped.
func (a *Autoloader) load(ctx context.Context, resolved ResolvedModule) loadResult {
	ctx, cancel := context.WithTimeout(ctx, a.bindTimeout)
	defer cancel()

	done := make(chan loadResult, 1)
	go func() {
		done <- a.loadModule(ctx, resolved)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return loadResult{reason: FallbackLoadFailed, err: ctx.Err()}
	}
}

func (a *Autoloader) loadModule(ctx context.Context, resolved ResolvedModule) (res loadResult) {
	defer func() {
		if r := recover(); r != nil {
			res = loadResult{reason: FallbackLoadFailed, err: fmt.Errorf("panic while loading module: %v", r)}
		}
	}()

	mod, err := a.loader.Load(ctx, resolved.Path)
	if err != nil {
		return loadResult{reason: FallbackLoadFailed, err: err}
	}
	v, err := mod.Export(resolved.Export)
	if err != nil {
		return loadResult{reason: FallbackExportNotFound, err: err}
	}
	h, ok := loader.AsHandler(v)
	if !ok {
		return loadResult{reason: FallbackExportNotFound, err: fmt.Errorf("export %s is not a handler (%T)", resolved.Export, v)}
	}
	return loadResult{handler: h}
}

func fallbackError(res loadResult, domain string, resolved ResolvedModule) error {
	switch res.reason {
	case FallbackModuleNotFound:
		return autoerrors.New(autoerrors.CodeModuleNotFound).
			WithDomain(domain).
			WithPath(resolved.Path)
	case FallbackExportNotFound:
		e := autoerrors.New(autoerrors.CodeExportNotFound).
			WithDomain(domain).
			WithExport(resolved.Export).
			WithPath(resolved.Path)
		if res.err != nil && !errors.Is(res.err, loader.ErrNoExport) {
			e.Wrap(res.err)
		}
		return e
	default:
		return autoerrors.New(autoerrors.CodeModuleLoadFailed).
			WithDomain(domain).
			WithPath(resolved.Path).
			WithLocationFromError(res.err).
			Wrap(res.err)
	}
}
