package vhost

import (
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Mounter is the capability the autoloader needs from a router: binding a
// handler to a virtual host.
type Mounter interface {
	Mount(host string, h http.Handler)
}

// IsMountable reports whether m can be used to mount handlers. A nil
// interface and an interface holding a nil pointer are both rejected.
func IsMountable(m Mounter) bool {
	if m == nil {
		return false
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return !v.IsNil()
	}
	return true
}

// Mount is a single entry of the router's mount table.
type Mount struct {
	Host      string
	Handler   http.Handler
	MountedAt time.Time
}

// Router dispatches requests by Host header.
type Router struct {
	mux      *chi.Mux
	notFound http.Handler
	logger   *slog.Logger

	mu     sync.RWMutex
	mounts []Mount
}

// Option configures a Router.
type Option func(*routerConfig)

type routerConfig struct {
	middleware []func(http.Handler) http.Handler
	notFound   http.Handler
	logger     *slog.Logger
}

// WithMiddleware appends middleware to the chain that runs before host
// dispatch. Middleware order is the order given.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(c *routerConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithNotFound sets the handler for requests that match no host.
func WithNotFound(h http.Handler) Option {
	return func(c *routerConfig) {
		c.notFound = h
	}
}

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *routerConfig) {
		c.logger = logger
	}
}

// New creates a Router. Panics raised by mounted handlers are recovered by
// chi's Recoverer and answered with 500.
func New(opts ...Option) *Router {
	cfg := routerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.notFound == nil {
		cfg.notFound = http.NotFoundHandler()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	r := &Router{
		mux:      chi.NewRouter(),
		notFound: cfg.notFound,
		logger:   cfg.logger.With("component", "vhost"),
	}

	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.Recoverer)
	r.mux.Use(cfg.middleware...)
	r.mux.NotFound(r.notFound.ServeHTTP)
	r.mux.Handle("/*", http.HandlerFunc(r.dispatch))

	return r
}

// Mount binds h to host. The host may be a pattern such as "*.example.com".
// An earlier mount of the same pattern is dropped, and the new entry moves
// to the end of the table.
func (r *Router) Mount(host string, h http.Handler) {
	pattern := normalizeHost(host)

	r.mu.Lock()
	replaced := false
	for i, m := range r.mounts {
		if m.Host == pattern {
			r.mounts = append(r.mounts[:i], r.mounts[i+1:]...)
			replaced = true
			break
		}
	}
	r.mounts = append(r.mounts, Mount{Host: pattern, Handler: h, MountedAt: time.Now()})
	count := len(r.mounts)
	r.mu.Unlock()

	r.logger.Debug("host mounted", "host", pattern, "replaced", replaced, "mounts", count)
}

// Mounts returns a snapshot of the mount table in mount order.
func (r *Router) Mounts() []Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Mount, len(r.mounts))
	copy(out, r.mounts)
	return out
}

// Hosts returns the mounted host patterns in mount order.
func (r *Router) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]string, len(r.mounts))
	for i, m := range r.mounts {
		hosts[i] = m.Host
	}
	return hosts
}

// Lookup returns the handler that would serve a request for host.
func (r *Router) Lookup(host string) (http.Handler, bool) {
	m, ok := r.match(host)
	return m.Handler, ok
}

// Match returns the mounted pattern that serves host, such as
// "*.example.com". Metrics use it as a bounded host label.
func (r *Router) Match(host string) (string, bool) {
	m, ok := r.match(host)
	return m.Host, ok
}

// match scans the table newest first so the latest mount wins.
func (r *Router) match(host string) (Mount, bool) {
	name := hostname(host)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.mounts) - 1; i >= 0; i-- {
		if matchHost(r.mounts[i].Host, name) {
			return r.mounts[i], true
		}
	}
	return Mount{}, false
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	h, ok := r.Lookup(req.Host)
	if !ok {
		r.notFound.ServeHTTP(w, req)
		return
	}
	h.ServeHTTP(w, req)
}

// hostname strips the port and trailing dot from a Host header value and
// lowercases it.
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return normalizeHost(host)
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// matchHost matches a normalized host against a pattern where "*" stands
// for exactly one label.
func matchHost(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	pl := strings.Split(pattern, ".")
	hl := strings.Split(host, ".")
	if len(pl) != len(hl) {
		return false
	}
	for i := range pl {
		if pl[i] == "*" {
			if hl[i] == "" {
				return false
			}
			continue
		}
		if pl[i] != hl[i] {
			return false
		}
	}
	return true
}
