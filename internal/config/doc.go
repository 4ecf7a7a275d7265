// Package config provides configuration parsing for autovhost servers.
//
// The configuration is stored in autovhost.yaml next to the domains
// folder. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	listen: ":8080"
//	root: ./sites
//	debug: false
//	scan: true
//	bindTimeout: 10s
//	concurrency: 0
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  listen: ":9090"
//	  path: /metrics
//	server:
//	  readHeaderTimeout: 5s
//	  shutdownTimeout: 10s
//	domains:
//	  - domainName: api.example.com
//	    mainFile: server.go
//	    exportName: handler
//	    baseFolder: /srv/apps
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Root:", cfg.RootPath())
package config
