// Package errors provides the coded error taxonomy used by autovhost.
//
// Every failure the autoloader can report has a stable code (e.g. "A020"),
// a category and a short message. Callers match kinds with the standard
// library:
//
//	if errors.Is(err, autoerrors.ErrModuleNotFound) {
//	    // the domain is bound to its fallback page
//	}
//
//	var ae *autoerrors.Error
//	if errors.As(err, &ae) {
//	    fmt.Println(ae.Domain, ae.Path)
//	}
//
// # Categories
//
//   - validation: bad input to Bind or Scan; nothing was mounted
//   - resolution: the module could not be found or loaded; a fallback was mounted
//   - scan: directory level problems (only DirectoryUnreadable is fatal)
//   - config: problems with autovhost.yaml
//
// # Terminal Output
//
// Format renders an error for the CLI, including the offending source lines
// when the error carries a location (domain scripts that fail to compile):
//
//	ERROR A022: Module failed to load (domain "example.com")
//
//	  sites/example.com/app.go:4:2
//
//	       3 │ func app(w http.ResponseWriter, r *http.Request) {
//	  →    4 │     fmt.Fprint(w, undefinedVar)
//	         │     ^
//	       5 │ }
package errors
