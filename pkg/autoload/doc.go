// Package autoload binds per-domain modules found on disk to a vhost
// router.
//
// A base folder holds one directory per virtual host:
//
//	sites/
//	  example.com/app.go
//	  localhost/app.go
//
// Each app.go is a package main source file exporting a handler named app:
//
//	package main
//
//	import "net/http"
//
//	func app(w http.ResponseWriter, r *http.Request) {
//		w.Write([]byte("It works!"))
//	}
//
// Scan binds every such directory, Bind binds one domain. When a module
// is missing, fails to load, or has no usable handler, a fallback handler
// answering 500 is mounted in its place and the returned error says why.
// Debug fallbacks name the file or export; production ones stay generic.
package autoload
