// Package middleware provides net/http observability middleware for
// autovhost servers.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts a server span for every request, tagged with the
// virtual host:
//
//	router := vhost.New(vhost.WithMiddleware(
//	    middleware.OpenTelemetry(),
//	))
//
// # Prometheus Metrics
//
// Prometheus counts requests per virtual host and status code:
//   - autovhost_http_requests_total
//   - autovhost_http_request_duration_seconds
//   - autovhost_http_requests_in_flight
//
// Expose them on a separate listener:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
package middleware
