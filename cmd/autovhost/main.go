package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬ ┬┌┬┐┌─┐┬  ┬┬ ┬┌─┐┌─┐┌┬┐
  ├─┤│ │ │ │ │└┐┌┘├─┤│ │└─┐ │
  ┴ ┴└─┘ ┴ └─┘ └┘ ┴ ┴└─┘└─┘ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		autoerrors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "autovhost",
		Short: "Serve one Go handler per virtual host, loaded from disk",
		Long: `autovhost serves a folder of domain directories as virtual hosts.

Each <root>/<domain>/app.go is a package main source file exporting
a handler named app. Requests are dispatched on the Host header:

  • Modules are interpreted at startup, no build step
  • Missing or broken modules answer 500 with an optional debug page
  • Unknown hosts answer 404
  • Prometheus metrics and OpenTelemetry spans per host`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to autovhost.yaml (default: ./autovhost.yaml if present)")

	cmd.AddCommand(
		serveCmd(&configPath),
		scanCmd(&configPath),
		initCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
