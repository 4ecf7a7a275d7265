package autoload

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
	"github.com/vango-dev/autovhost/pkg/loader"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

func TestBind_MountsHandler(t *testing.T) {
	base := t.TempDir()
	path := writeModule(t, base, "example.com")

	static := loader.NewStatic()
	static.Register(path, "app", textHandler("hello"))

	a := newTestAutoloader(static)
	router := vhost.New()

	conf, err := a.Bind(context.Background(), &Request{Domain: "example.com", BaseFolder: base}, router)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if conf.Domain != "example.com" || conf.Path != path || conf.Export != "app" || conf.FromScan {
		t.Errorf("confirmation = %+v", conf)
	}
	if want := `"example.com" module manually loaded as a virtual host handler.`; conf.Message != want {
		t.Errorf("Message = %q, want %q", conf.Message, want)
	}

	rec := serve(t, router, "example.com")
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(t, router, "other.com"); rec.Code != http.StatusNotFound {
		t.Errorf("unbound host: status %d, want 404", rec.Code)
	}
}

func TestBind_CustomMainFileAndExport(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a.com", "index.go")
	writeModule(t, base, "a.com")
	writeFile(t, path, "package main\n")

	static := loader.NewStatic()
	static.Register(path, "handler", textHandler("index"))

	a := newTestAutoloader(static)
	rec := vhost.NewRecorder()

	conf, err := a.Bind(context.Background(), &Request{
		Domain:     "a.com",
		MainFile:   "index.go",
		Export:     "handler",
		BaseFolder: base,
	}, rec)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if conf.Path != path || conf.Export != "handler" {
		t.Errorf("confirmation = %+v", conf)
	}
}

func TestBind_ValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		req    *Request
		router vhost.Mounter
		code   string
	}{
		{"nil request without router", nil, nil, autoerrors.CodeInvalidSettingsType},
		{"nil request", nil, vhost.NewRecorder(), autoerrors.CodeInvalidSettingsType},
		{"no router before no domain", &Request{}, nil, autoerrors.CodeMissingRouter},
		{"typed nil router", &Request{Domain: "a.com"}, (*vhost.Router)(nil), autoerrors.CodeMissingRouter},
		{"no domain", &Request{}, vhost.NewRecorder(), autoerrors.CodeMissingDomain},
		{"traversal", &Request{Domain: "../etc"}, vhost.NewRecorder(), autoerrors.CodeInvalidDomainName},
		{"dot", &Request{Domain: "."}, vhost.NewRecorder(), autoerrors.CodeInvalidDomainName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAutoloader(loader.NewStatic())
			conf, err := a.Bind(context.Background(), tt.req, tt.router)
			if conf != nil {
				t.Errorf("confirmation = %+v, want nil", conf)
			}
			if got := autoerrors.CodeOf(err); got != tt.code {
				t.Errorf("code = %q (%v), want %q", got, err, tt.code)
			}
			if r, ok := tt.router.(*vhost.Recorder); ok && len(r.Mounts()) != 0 {
				t.Errorf("validation error mounted %d handlers", len(r.Mounts()))
			}
		})
	}
}

func TestBind_ModuleNotFound(t *testing.T) {
	base := t.TempDir()
	want := filepath.Join(base, "missing.com", "app.go")

	for _, debug := range []bool{false, true} {
		a := newTestAutoloader(loader.NewStatic())
		rec := vhost.NewRecorder()

		_, err := a.Bind(context.Background(), &Request{Domain: "missing.com", BaseFolder: base, Debug: debug}, rec)
		if !errors.Is(err, autoerrors.ErrModuleNotFound) {
			t.Fatalf("debug=%v: err = %v, want %s", debug, err, autoerrors.CodeModuleNotFound)
		}
		var ae *autoerrors.Error
		if !errors.As(err, &ae) || ae.Domain != "missing.com" || ae.Path != want {
			t.Errorf("debug=%v: error subject = %+v", debug, ae)
		}
		if n := rec.Count("missing.com"); n != 1 {
			t.Fatalf("debug=%v: %d mounts, want 1", debug, n)
		}

		h, _ := rec.Handler("missing.com")
		res := serve(t, h, "missing.com")
		if res.Code != http.StatusInternalServerError {
			t.Errorf("debug=%v: status %d, want 500", debug, res.Code)
		}
		body := res.Body.String()
		if debug != strings.Contains(body, want) {
			t.Errorf("debug=%v: body naming the path = %v\n%s", debug, !debug, body)
		}
		if !debug && !strings.Contains(body, "Sorry, something went wrong.") {
			t.Errorf("generic page missing apology:\n%s", body)
		}
	}
}

func TestBind_ExportNotFound(t *testing.T) {
	tests := []struct {
		name   string
		export string
		value  any
	}{
		{"missing export", "other", textHandler("x")},
		{"not a handler", "app", 42},
		{"nil handler", "app", http.HandlerFunc(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			path := writeModule(t, base, "a.com")
			static := loader.NewStatic()
			static.Register(path, tt.export, tt.value)

			a := newTestAutoloader(static)
			rec := vhost.NewRecorder()
			_, err := a.Bind(context.Background(), &Request{Domain: "a.com", BaseFolder: base, Debug: true}, rec)

			var ae *autoerrors.Error
			if !errors.As(err, &ae) || ae.Code != autoerrors.CodeExportNotFound {
				t.Fatalf("err = %v, want %s", err, autoerrors.CodeExportNotFound)
			}
			if ae.Export != "app" || ae.Path != path {
				t.Errorf("error subject = %+v", ae)
			}

			h, ok := rec.Handler("a.com")
			if !ok {
				t.Fatal("no fallback mounted")
			}
			res := serve(t, h, "a.com")
			if res.Code != http.StatusInternalServerError {
				t.Errorf("status %d, want 500", res.Code)
			}
			if !strings.Contains(res.Body.String(), "<code>app</code>") {
				t.Errorf("debug page should name the export:\n%s", res.Body.String())
			}
		})
	}
}

func TestBind_LoadFailed(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "a.com")

	// Nothing registered: the file exists but cannot be loaded.
	a := newTestAutoloader(loader.NewStatic())
	rec := vhost.NewRecorder()
	_, err := a.Bind(context.Background(), &Request{Domain: "a.com", BaseFolder: base, Debug: true}, rec)

	if !errors.Is(err, autoerrors.ErrModuleLoadFailed) {
		t.Fatalf("err = %v, want %s", err, autoerrors.CodeModuleLoadFailed)
	}
	if errors.Unwrap(err) == nil {
		t.Error("load error should wrap its cause")
	}
	h, _ := rec.Handler("a.com")
	body := serve(t, h, "a.com").Body.String()
	if !strings.Contains(body, "failed to load") || !strings.Contains(body, "no module registered") {
		t.Errorf("debug page should show the load error:\n%s", body)
	}
}

func TestBind_LoadFailedLocation(t *testing.T) {
	base := t.TempDir()
	path := writeModule(t, base, "a.com")
	writeFile(t, path, `package main

import "net/http"

func app(w http.ResponseWriter, r *http.Request) {
	undefinedThing()
}
`)

	a := newTestAutoloader(loader.NewInterpreter())
	rec := vhost.NewRecorder()
	_, err := a.Bind(context.Background(), &Request{Domain: "a.com", BaseFolder: base}, rec)

	var ae *autoerrors.Error
	if !errors.As(err, &ae) || ae.Code != autoerrors.CodeModuleLoadFailed {
		t.Fatalf("err = %v, want %s", err, autoerrors.CodeModuleLoadFailed)
	}
	if ae.Location == nil {
		t.Fatalf("Location is nil: %v", err)
	}
	if ae.Location.File != path || ae.Location.Line != 6 {
		t.Errorf("Location = %s, want %s:6", ae.Location, path)
	}
	if len(ae.Context) == 0 {
		t.Error("Context should hold the surrounding lines")
	}
	if rec.Count("a.com") != 1 {
		t.Error("fallback not mounted")
	}
}

func TestBind_LoaderPanic(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "a.com")

	a := newTestAutoloader(loader.LoaderFunc(func(ctx context.Context, path string) (loader.Module, error) {
		panic("boom")
	}))
	rec := vhost.NewRecorder()
	_, err := a.Bind(context.Background(), &Request{Domain: "a.com", BaseFolder: base}, rec)
	if autoerrors.CodeOf(err) != autoerrors.CodeModuleLoadFailed {
		t.Fatalf("err = %v", err)
	}
	if rec.Count("a.com") != 1 {
		t.Error("fallback not mounted after panic")
	}
}

func TestBind_Timeout(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "slow.com")

	a := New(Options{Loader: hangingLoader, Logger: discardLogger(), BindTimeout: 20 * time.Millisecond})
	rec := vhost.NewRecorder()

	start := time.Now()
	_, err := a.Bind(context.Background(), &Request{Domain: "slow.com", BaseFolder: base}, rec)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Bind took %v", elapsed)
	}
	if autoerrors.CodeOf(err) != autoerrors.CodeModuleLoadFailed {
		t.Fatalf("err = %v, want %s", err, autoerrors.CodeModuleLoadFailed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped deadline", err)
	}
	if rec.Count("slow.com") != 1 {
		t.Error("fallback not mounted on timeout")
	}
}

func TestBind_RemembersRouter(t *testing.T) {
	base := t.TempDir()
	static := loader.NewStatic()
	static.Register(writeModule(t, base, "a.com"), "app", textHandler("a"))
	static.Register(writeModule(t, base, "b.com"), "app", textHandler("b"))

	a := newTestAutoloader(static)
	router := vhost.New()

	if _, err := a.Bind(context.Background(), &Request{Domain: "a.com", BaseFolder: base}, router); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Bind(context.Background(), &Request{Domain: "b.com", BaseFolder: base}, nil); err != nil {
		t.Fatalf("Bind without router: %v", err)
	}
	if body := serve(t, router, "b.com").Body.String(); body != "b" {
		t.Errorf("b.com body = %q", body)
	}
}

func TestBind_LatestMountWins(t *testing.T) {
	base := t.TempDir()
	path := writeModule(t, base, "a.com")
	static := loader.NewStatic()
	static.Register(path, "app", textHandler("v1"))

	a := newTestAutoloader(static)
	router := vhost.New()
	req := &Request{Domain: "a.com", BaseFolder: base}

	if _, err := a.Bind(context.Background(), req, router); err != nil {
		t.Fatal(err)
	}
	static.Register(path, "app", textHandler("v2"))
	if _, err := a.Bind(context.Background(), req, router); err != nil {
		t.Fatal(err)
	}

	if n := len(router.Mounts()); n != 1 {
		t.Errorf("%d mounts, want 1", n)
	}
	if body := serve(t, router, "a.com").Body.String(); body != "v2" {
		t.Errorf("body = %q, want v2", body)
	}
}

func TestBindSettings(t *testing.T) {
	base := t.TempDir()
	static := loader.NewStatic()
	static.Register(writeModule(t, base, "a.com"), "app", textHandler("a"))

	t.Run("order", func(t *testing.T) {
		a := newTestAutoloader(static)
		if _, err := a.BindSettings(context.Background(), "a.com", nil); autoerrors.CodeOf(err) != autoerrors.CodeInvalidSettingsType {
			t.Errorf("string settings: %v", err)
		}
		if _, err := a.BindSettings(context.Background(), map[string]any{"domainName": 1}, nil); autoerrors.CodeOf(err) != autoerrors.CodeMissingRouter {
			t.Errorf("no router: %v", err)
		}
		if _, err := a.BindSettings(context.Background(), map[string]any{"domainName": 1}, vhost.NewRecorder()); autoerrors.CodeOf(err) != autoerrors.CodeInvalidDomainType {
			t.Errorf("numeric domain: %v", err)
		}
	})

	t.Run("bind", func(t *testing.T) {
		a := newTestAutoloader(static)
		router := vhost.New()
		conf, err := a.BindSettings(context.Background(), map[string]any{
			"domainName": "a.com",
			"folder":     base,
		}, router)
		if err != nil {
			t.Fatal(err)
		}
		if conf.Domain != "a.com" {
			t.Errorf("confirmation = %+v", conf)
		}
		if body := serve(t, router, "a.com").Body.String(); body != "a" {
			t.Errorf("body = %q", body)
		}
	})
}
