// Package vhost implements a virtual-host router on top of chi.
//
// A Router dispatches each request to the handler mounted for the request's
// Host header. Hosts are matched case-insensitively, without the port, and a
// pattern may use "*" for a whole label:
//
//	r := vhost.New()
//	r.Mount("example.com", exampleHandler)
//	r.Mount("*.example.com", tenantHandler)
//	http.ListenAndServe(":8080", r)
//
// Requests whose host matches no mount fall through to the NotFound handler
// (404 by default).
//
// # Mount Ordering
//
// Mounting a pattern that is already mounted replaces the earlier entry, so
// a rescan does not keep old handlers alive. Distinct patterns that match
// the same host (for example "www.example.com" and "*.example.com") are
// tried newest first.
//
// # Mounter
//
// Code that only needs to register handlers should depend on the Mounter
// interface rather than on *Router.
package vhost
