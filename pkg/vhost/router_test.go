package vhost

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func textHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func serve(r http.Handler, host, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_DispatchByHost(t *testing.T) {
	r := New()
	r.Mount("localhost", textHandler("It works!"))
	r.Mount("example.com", textHandler("example"))

	tests := []struct {
		name       string
		host       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"exact host", "localhost", "/", 200, "It works!"},
		{"host with port", "localhost:8080", "/", 200, "It works!"},
		{"upper case host", "EXAMPLE.com", "/about", 200, "example"},
		{"trailing dot", "example.com.", "/", 200, "example"},
		{"unmatched host", "127.0.0.1", "/", 404, ""},
		{"unmatched host with port", "127.0.0.1:8080", "/x", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.host, tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_LatestMountWins(t *testing.T) {
	r := New()
	r.Mount("localhost", textHandler("first"))
	r.Mount("localhost", textHandler("second"))

	rec := serve(r, "localhost", "/")
	if rec.Body.String() != "second" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "second")
	}
	if got := len(r.Mounts()); got != 1 {
		t.Errorf("len(Mounts()) = %d, want 1", got)
	}
	if hosts := r.Hosts(); len(hosts) != 1 || hosts[0] != "localhost" {
		t.Errorf("Hosts() = %v, want [localhost]", hosts)
	}
}

func TestRouter_RemountDropsShadowedEntry(t *testing.T) {
	r := New()
	r.Mount("a.com", textHandler("a1"))
	r.Mount("*.example.com", textHandler("tenant"))
	r.Mount("A.com", textHandler("a2"))

	mounts := r.Mounts()
	if len(mounts) != 2 {
		t.Fatalf("len(Mounts()) = %d, want 2", len(mounts))
	}
	if mounts[0].Host != "*.example.com" || mounts[1].Host != "a.com" {
		t.Errorf("mount order = [%s %s], want [*.example.com a.com]", mounts[0].Host, mounts[1].Host)
	}
	if rec := serve(r, "a.com", "/"); rec.Body.String() != "a2" {
		t.Errorf("body = %q, want a2", rec.Body.String())
	}
	if rec := serve(r, "x.example.com", "/"); rec.Body.String() != "tenant" {
		t.Errorf("tenant body = %q, want tenant", rec.Body.String())
	}
}

func TestRecorder_KeepsEveryMount(t *testing.T) {
	rec := NewRecorder()
	rec.Mount("a.com", textHandler("a1"))
	rec.Mount("a.com", textHandler("a2"))

	if n := rec.Count("a.com"); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	h, ok := rec.Handler("a.com")
	if !ok {
		t.Fatal("no handler for a.com")
	}
	if got := serve(h, "a.com", "/").Body.String(); got != "a2" {
		t.Errorf("body = %q, want a2", got)
	}
}

func TestRouter_Wildcard(t *testing.T) {
	r := New()
	r.Mount("*.example.com", textHandler("tenant"))
	r.Mount("www.example.com", textHandler("www"))

	if rec := serve(r, "acme.example.com", "/"); rec.Body.String() != "tenant" {
		t.Errorf("acme body = %q, want tenant", rec.Body.String())
	}
	if rec := serve(r, "www.example.com", "/"); rec.Body.String() != "www" {
		t.Errorf("www body = %q, want www", rec.Body.String())
	}
	if rec := serve(r, "a.b.example.com", "/"); rec.Code != http.StatusNotFound {
		t.Errorf("a.b status = %d, want 404", rec.Code)
	}
	if rec := serve(r, "example.com", "/"); rec.Code != http.StatusNotFound {
		t.Errorf("apex status = %d, want 404", rec.Code)
	}
}

func TestRouter_CustomNotFound(t *testing.T) {
	r := New(WithNotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMisdirectedRequest)
	})))

	if rec := serve(r, "nowhere.test", "/"); rec.Code != http.StatusMisdirectedRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMisdirectedRequest)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := New()
	r.Mount("boom.test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("module exploded")
	}))

	rec := serve(r, "boom.test", "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRouter_Middleware(t *testing.T) {
	var seen string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Host
			next.ServeHTTP(w, r)
		})
	}

	r := New(WithMiddleware(mw))
	r.Mount("localhost", textHandler("ok"))
	serve(r, "localhost:3000", "/")

	if seen != "localhost:3000" {
		t.Errorf("middleware saw host %q, want %q", seen, "localhost:3000")
	}
}

func TestRouter_Lookup(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("localhost"); ok {
		t.Error("Lookup on empty router should fail")
	}
	r.Mount("LocalHost.", textHandler("ok"))
	if _, ok := r.Lookup("localhost:80"); !ok {
		t.Error("Lookup should normalize case, port and trailing dot")
	}
}

func TestRouter_Match(t *testing.T) {
	r := New()
	r.Mount("*.example.com", textHandler("wild"))
	r.Mount("api.example.com", textHandler("api"))

	if p, ok := r.Match("api.example.com:443"); !ok || p != "api.example.com" {
		t.Errorf("Match(api) = %q, %v", p, ok)
	}
	if p, ok := r.Match("www.example.com"); !ok || p != "*.example.com" {
		t.Errorf("Match(www) = %q, %v", p, ok)
	}
	if _, ok := r.Match("example.org"); ok {
		t.Error("Match(example.org) should fail")
	}
}

func TestIsMountable(t *testing.T) {
	var nilRouter *Router

	tests := []struct {
		name string
		m    Mounter
		want bool
	}{
		{"nil interface", nil, false},
		{"typed nil", nilRouter, false},
		{"router", New(), true},
		{"func mounter", MounterFunc(func(string, http.Handler) {}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMountable(tt.m); got != tt.want {
				t.Errorf("IsMountable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		pattern, host string
		want          bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "www.example.com", false},
		{"*.example.com", "www.example.com", true},
		{"*.example.com", ".example.com", false},
		{"www.*.com", "www.example.com", true},
		{"*", "localhost", true},
		{"*", "a.b", false},
	}

	for _, tt := range tests {
		if got := matchHost(tt.pattern, tt.host); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.pattern, tt.host, got, tt.want)
		}
	}
}
