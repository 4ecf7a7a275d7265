// Package loader turns a domain module file into named exports.
//
// Two loaders are provided:
//
//   - Interpreter evaluates a Go source file with the yaegi interpreter. The
//     file is a small "package main" script with access to the standard
//     library; any top-level identifier can be read back as an export.
//   - Static serves modules registered at compile time by the embedding
//     program, keyed by module path. It is the fallback when interpreting
//     source is not wanted.
//
// A domain script looks like this:
//
//	package main
//
//	import (
//	    "fmt"
//	    "net/http"
//	)
//
//	func app(w http.ResponseWriter, r *http.Request) {
//	    fmt.Fprint(w, "It works!")
//	}
//
// The script must not declare func main; Interpreter rejects it with
// ErrMainFunc. AsHandler converts an export into an http.Handler.
package loader
