package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autovhost/pkg/autoload"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

func scanCmd(configPath *string) *cobra.Command {
	var (
		o      overrides
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Check which domains would be served",
		Long: `Scan the root folder and load every domain module without serving
anything. Exits non-zero when a domain would be served by a fallback.

Examples:
  autovhost scan
  autovhost scan --root ./sites --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, &o)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.SlogLevel(), cfg.Log.Format, os.Stderr)

			loader := autoload.New(autoload.Options{
				Logger:      logger,
				BindTimeout: cfg.BindTimeout.Duration,
				Concurrency: cfg.Concurrency,
			})
			report, err := loader.Scan(cmd.Context(), vhost.NewRecorder(), &autoload.ScanSettings{
				BaseFolder: cfg.RootPath(),
				Debug:      cfg.Debug,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reportView(report)); err != nil {
					return err
				}
			} else {
				printReport(report)
			}

			if n := len(report.Fallback()) + len(report.Failed()); n > 0 {
				return fmt.Errorf("%d domain(s) would not be served by their module", n)
			}
			return nil
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the scan report as JSON")

	return cmd
}

type outcomeView struct {
	autoload.Outcome
	Error string `json:"error,omitempty"`
}

type reportJSON struct {
	*autoload.Report
	Outcomes []outcomeView `json:"outcomes"`
}

func reportView(r *autoload.Report) reportJSON {
	view := reportJSON{Report: r, Outcomes: make([]outcomeView, len(r.Outcomes))}
	for i, o := range r.Outcomes {
		view.Outcomes[i] = outcomeView{Outcome: o}
		if o.Err != nil {
			view.Outcomes[i].Error = o.Err.Error()
		}
	}
	return view
}

func printReport(r *autoload.Report) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case autoload.StatusBound:
			success("%s", o.Confirmation.Message)
		case autoload.StatusSkipped:
			info("skipped %s", o.Name)
		default:
			warn("%v", o.Err)
		}
	}
	info("%d bound, %d fallback, %d skipped, %d failed in %s (scan %s)",
		len(r.Bound()), len(r.Fallback()), len(r.Skipped()), len(r.Failed()),
		r.Duration.Round(time.Microsecond), r.ID)
}

func absPath(p string) (string, error) {
	return filepath.Abs(p)
}
