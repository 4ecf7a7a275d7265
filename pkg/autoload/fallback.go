package autoload

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
)

// FallbackReason says why a fallback handler was mounted.
type FallbackReason int

const (
	// FallbackModuleNotFound: the main file does not exist or is unreadable.
	FallbackModuleNotFound FallbackReason = iota

	// FallbackExportNotFound: the module has no handler under the export name.
	FallbackExportNotFound

	// FallbackLoadFailed: the module exists but could not be loaded.
	FallbackLoadFailed
)

// String returns the reason as a metrics/log label.
func (r FallbackReason) String() string {
	switch r {
	case FallbackModuleNotFound:
		return "module_not_found"
	case FallbackExportNotFound:
		return "export_not_found"
	case FallbackLoadFailed:
		return "load_failed"
	}
	return "unknown"
}

// FallbackPage holds what a fallback page may reveal.
type FallbackPage struct {
	Reason FallbackReason
	Debug  bool
	Path   string
	Export string
	Cause  string
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Error 500 : Internal server error</title></head>
<body>
<h1>Error 500 : Internal server error</h1>
{{- if not .Debug}}
<p>Sorry, something went wrong.</p>
{{- else if eq .Reason 0}}
<p>The following module &laquo; <b>{{.Path}}</b> &raquo; could not be found.</p>
{{- else if eq .Reason 1}}
<p>Your module for this virtual host should export a handler named <b><code>{{.Export}}</code></b>, e.g. <code>func {{.Export}}(w http.ResponseWriter, r *http.Request)</code>, in <b>{{.Path}}</b>.</p>
{{- else}}
<p>The module &laquo; <b>{{.Path}}</b> &raquo; failed to load.</p>
<pre>{{.Cause}}</pre>
{{- end}}
</body>
</html>
`))

// Render returns the page body.
func (p FallbackPage) Render() []byte {
	var buf bytes.Buffer
	if err := fallbackTemplate.Execute(&buf, struct {
		Reason int
		Debug  bool
		Path   string
		Export string
		Cause  string
	}{int(p.Reason), p.Debug, p.Path, p.Export, p.Cause}); err != nil {
		return []byte("Internal server error")
	}
	return buf.Bytes()
}

// FallbackHandler returns a handler that answers every request with 500
// and the rendered page. The page is rendered once.
func FallbackHandler(p FallbackPage) http.Handler {
	body := p.Render()
	length := strconv.Itoa(len(body))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Type", "text/html; charset=utf-8")
		h.Set("Content-Length", length)
		h.Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusInternalServerError)
		if r.Method != http.MethodHead {
			w.Write(body)
		}
	})
}
