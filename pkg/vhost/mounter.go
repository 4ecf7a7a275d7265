package vhost

import (
	"net/http"
	"sync"
	"time"
)

// MounterFunc adapts a function to the Mounter interface.
type MounterFunc func(host string, h http.Handler)

// Mount calls f(host, h).
func (f MounterFunc) Mount(host string, h http.Handler) {
	f(host, h)
}

// Recorder is a Mounter that only records mounts. It is used for dry-run
// scans where nothing is served. Unlike Router it keeps every mount,
// including ones shadowed by a later mount of the same host.
type Recorder struct {
	router *Router

	mu     sync.Mutex
	mounts []Mount
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{router: New()}
}

// Mount records the mount.
func (r *Recorder) Mount(host string, h http.Handler) {
	r.router.Mount(host, h)

	r.mu.Lock()
	r.mounts = append(r.mounts, Mount{Host: normalizeHost(host), Handler: h, MountedAt: time.Now()})
	r.mu.Unlock()
}

// Mounts returns the recorded mounts in order.
func (r *Recorder) Mounts() []Mount {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Mount, len(r.mounts))
	copy(out, r.mounts)
	return out
}

// Count returns how many times host was mounted.
func (r *Recorder) Count(host string) int {
	host = normalizeHost(host)
	n := 0
	for _, m := range r.Mounts() {
		if m.Host == host {
			n++
		}
	}
	return n
}

// Handler returns the handler that would serve host.
func (r *Recorder) Handler(host string) (http.Handler, bool) {
	return r.router.Lookup(host)
}
