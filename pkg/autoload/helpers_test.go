package autoload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/autovhost/pkg/loader"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeModule creates base/domain/app.go and returns its path.
func writeModule(t *testing.T, base, domain string) string {
	t.Helper()
	dir := filepath.Join(base, domain)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "app.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func textHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func newTestAutoloader(l loader.Loader) *Autoloader {
	return New(Options{Loader: l, Logger: discardLogger()})
}

func serve(t *testing.T, h http.Handler, host string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// hangingLoader blocks until its context is done.
var hangingLoader = loader.LoaderFunc(func(ctx context.Context, path string) (loader.Module, error) {
	<-ctx.Done()
	return nil, ctx.Err()
})

var _ vhost.Mounter = (*vhost.Router)(nil)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
