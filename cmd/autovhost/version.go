package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autovhost/pkg/autoload"
)

const yaegiModule = "github.com/traefik/yaegi"

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the autovhost version, the yaegi interpreter version domain
modules run on, and the module layout this build expects.`,
		Run: func(cmd *cobra.Command, args []string) {
			info, _ := debug.ReadBuildInfo()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), buildVersion(info))
				return
			}
			writeVersion(cmd.OutOrStdout(), info)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

func writeVersion(w io.Writer, info *debug.BuildInfo) {
	fmt.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Version:     %s\n", buildVersion(info))
	fmt.Fprintf(w, "  Commit:      %s\n", buildSetting(info, "vcs.revision", commit, "none"))
	fmt.Fprintf(w, "  Built:       %s\n", buildSetting(info, "vcs.time", date, "unknown"))
	fmt.Fprintf(w, "  Interpreter: yaegi %s\n", depVersion(info, yaegiModule))
	fmt.Fprintf(w, "  Module:      <root>/<domain>/%s.go exporting %q\n", autoload.DefaultMainFile, autoload.DefaultExport)
	fmt.Fprintf(w, "  Go version:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(w)
}

// buildVersion prefers the ldflags version, then the module version
// recorded by go install.
func buildVersion(info *debug.BuildInfo) string {
	if version != "dev" || info == nil {
		return version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return version
}

// buildSetting returns current unless it still holds the unset default, in
// which case the vcs setting stamped by the go command is used.
func buildSetting(info *debug.BuildInfo, key, current, unset string) string {
	if current != unset || info == nil {
		return current
	}
	for _, s := range info.Settings {
		if s.Key == key && s.Value != "" {
			return s.Value
		}
	}
	return current
}

func depVersion(info *debug.BuildInfo, path string) string {
	if info == nil {
		return "unknown"
	}
	for _, d := range info.Deps {
		if d.Path == path {
			return d.Version
		}
	}
	return "unknown"
}
