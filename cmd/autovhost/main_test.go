package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autovhost"
	"github.com/vango-dev/autovhost/internal/config"
)

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	if err := runInit(dir, "sites", false); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if err := runInit(dir, "sites", false); err == nil {
		t.Error("second init without --force should fail")
	}
	if err := runInit(dir, "sites", true); err != nil {
		t.Errorf("init --force: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "sites"); cfg.RootPath() != want {
		t.Errorf("RootPath() = %q, want %q", cfg.RootPath(), want)
	}

	app := autovhost.New(autovhost.Config{Logger: newLogger(cfg.SlogLevel(), "text", io.Discard)})
	if _, err := app.Scan(context.Background(), &autovhost.ScanSettings{BaseFolder: cfg.RootPath()}); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost"
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	if rec.Body.String() != "It works!" {
		t.Errorf("example site body = %q", rec.Body.String())
	}
}

func TestOverrides(t *testing.T) {
	var o overrides
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd)
	cmd.Flags().StringVarP(&o.listen, "listen", "l", "", "")

	root := t.TempDir()
	if err := cmd.Flags().Parse([]string{"--root", root, "--debug", "--listen", ":9999", "--concurrency", "2"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	if err := o.apply(cmd, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.RootPath() != root || !cfg.Debug || cfg.Listen != ":9999" || cfg.Concurrency != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("--debug should raise the log level, got %q", cfg.Log.Level)
	}

	bad := &cobra.Command{Use: "bad"}
	var ob overrides
	ob.register(bad)
	if err := bad.Flags().Parse([]string{"--log-format", "xml"}); err != nil {
		t.Fatal(err)
	}
	if err := ob.apply(bad, config.New()); err == nil {
		t.Error("invalid log format accepted")
	}
}

func TestWithBaseFolder(t *testing.T) {
	got := withBaseFolder(map[string]any{"domainName": "a.com"}, "/srv")
	if m := got.(map[string]any); m["baseFolder"] != "/srv" {
		t.Errorf("baseFolder not defaulted: %v", m)
	}

	explicit := map[string]any{"domainName": "a.com", "folder": "/other"}
	if m := withBaseFolder(explicit, "/srv").(map[string]any); m["baseFolder"] != nil {
		t.Errorf("explicit folder overridden: %v", m)
	}

	if withBaseFolder("a.com", "/srv") != "a.com" {
		t.Error("non-map entries must pass through for validation")
	}
}

func TestWriteVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/vango-dev/autovhost", Version: "v1.2.3"},
		Deps: []*debug.Module{{Path: yaegiModule, Version: "v0.16.1"}},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-01-02T03:04:05Z"},
		},
	}

	var buf bytes.Buffer
	writeVersion(&buf, info)
	out := buf.String()

	for _, want := range []string{
		"Version:     v1.2.3",
		"Commit:      abc123",
		"Built:       2024-01-02T03:04:05Z",
		"Interpreter: yaegi v0.16.1",
		`<root>/<domain>/app.go exporting "app"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := buildVersion(nil); got != version {
		t.Errorf("buildVersion(nil) = %q, want %q", got, version)
	}
	if got := depVersion(&debug.BuildInfo{}, yaegiModule); got != "unknown" {
		t.Errorf("depVersion = %q, want unknown", got)
	}
}
