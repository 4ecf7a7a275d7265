// Package autovhost serves one handler per virtual host, loaded from a
// folder holding one directory per domain.
//
// Usage:
//
//	app := autovhost.New(autovhost.DefaultConfig())
//	report, err := app.Scan(ctx, &autovhost.ScanSettings{BaseFolder: "./sites"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", app)
//
// Each <domain>/app.go is a package main source file exporting a handler
// named app. Requests are dispatched on the Host header; unknown hosts get
// 404, and domains whose module is missing or broken answer 500.
package autovhost

import (
	"github.com/vango-dev/autovhost/pkg/autoload"
	"github.com/vango-dev/autovhost/pkg/loader"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

// =============================================================================
// Re-exported types
// =============================================================================

// Request describes one domain to bind. See autoload.Request.
type Request = autoload.Request

// ScanSettings configures a scan. See autoload.ScanSettings.
type ScanSettings = autoload.ScanSettings

// Confirmation describes a successful bind.
type Confirmation = autoload.Confirmation

// Report summarizes a scan.
type Report = autoload.Report

// Outcome is the result of one scanned entry.
type Outcome = autoload.Outcome

// Mounter is anything that can bind a handler to a host.
type Mounter = vhost.Mounter

// Loader loads domain modules.
type Loader = loader.Loader
