package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/autovhost"
	"github.com/vango-dev/autovhost/internal/config"
)

// overrides are command-line values that win over autovhost.yaml.
type overrides struct {
	listen        string
	root          string
	debug         bool
	noScan        bool
	metricsListen string
	concurrency   int
	bindTimeout   time.Duration
	logLevel      string
	logFormat     string
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.root, "root", "r", "", "Folder holding one directory per domain (default from autovhost.yaml)")
	f.BoolVarP(&o.debug, "debug", "d", false, "Show module paths and load errors on fallback pages")
	f.IntVar(&o.concurrency, "concurrency", 0, "Parallel binds during a scan (default: one per CPU)")
	f.DurationVar(&o.bindTimeout, "bind-timeout", 0, "Timeout for loading a single module")
	f.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&o.logFormat, "log-format", "", "Log format: text or json")
}

func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if o.listen != "" {
		cfg.Listen = o.listen
	}
	if o.root != "" {
		abs, err := absPath(o.root)
		if err != nil {
			return err
		}
		cfg.Root = abs
	}
	if f.Changed("debug") {
		cfg.Debug = o.debug
	}
	if o.noScan {
		scan := false
		cfg.Scan = &scan
	}
	if o.metricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = o.metricsListen
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if o.bindTimeout > 0 {
		cfg.BindTimeout.Duration = o.bindTimeout
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if cfg.Debug && o.logLevel == "" {
		cfg.Log.Level = "debug"
	}
	return cfg.Validate()
}

func loadConfig(cmd *cobra.Command, path string, o *overrides) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Scan the root folder and serve its virtual hosts",
		Long: `Scan the root folder, bind the domains listed in autovhost.yaml,
and serve them until interrupted.

Examples:
  autovhost serve
  autovhost serve --root ./sites --listen :80
  autovhost serve --debug --metrics-listen :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, &o)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	o.register(cmd)
	cmd.Flags().StringVarP(&o.listen, "listen", "l", "", "Address to listen on (default from autovhost.yaml)")
	cmd.Flags().BoolVar(&o.noScan, "no-scan", false, "Only bind the domains listed in autovhost.yaml")
	cmd.Flags().StringVar(&o.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg.SlogLevel(), cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	app := autovhost.New(autovhost.Config{
		Logger:      logger,
		Debug:       cfg.Debug,
		BindTimeout: cfg.BindTimeout.Duration,
		Concurrency: cfg.Concurrency,
		Registry:    registry,
		Tracing:     true,
		Server: autovhost.ServerConfig{
			Addr:              cfg.Listen,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Duration,
			ShutdownTimeout:   cfg.Server.ShutdownTimeout.Duration,
			MetricsAddr:       metricsAddr(cfg),
			MetricsPath:       cfg.Metrics.Path,
		},
	})

	printBanner()
	fmt.Println()

	root := cfg.RootPath()
	if cfg.ShouldScan() {
		report, err := app.Scan(ctx, &autovhost.ScanSettings{BaseFolder: root})
		if err != nil {
			return err
		}
		printReport(report)
	}

	for _, raw := range cfg.Domains {
		conf, err := app.BindSettings(ctx, withBaseFolder(raw, root))
		if err != nil {
			warn("%v", err)
			continue
		}
		success("%s", conf.Message)
	}

	fmt.Println()
	info("Listening on %s", cfg.Listen)
	if addr := metricsAddr(cfg); addr != "" {
		info("Metrics on %s%s", addr, cfg.Metrics.Path)
	}
	fmt.Println()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func metricsAddr(cfg *config.Config) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.Listen
}

// withBaseFolder defaults a domains entry's base folder to the root.
func withBaseFolder(raw any, root string) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	for _, k := range []string{"baseFolder", "folder", "directory"} {
		if _, set := m[k]; set {
			return raw
		}
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["baseFolder"] = root
	return out
}
