package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autovhost/internal/config"
)

const exampleModule = `package main

import (
	"fmt"
	"net/http"
)

func app(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "It works!")
}
`

func initCmd() *cobra.Command {
	var (
		root  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create autovhost.yaml and an example localhost site",
		Long: `Create autovhost.yaml and <root>/localhost/app.go in dir (default: .).

Examples:
  autovhost init
  autovhost init ./server --root sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, root, force)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "sites", "Domains folder, relative to dir")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing autovhost.yaml")

	return cmd
}

func runInit(dir, root string, force bool) error {
	if config.Exists(dir) && !force {
		return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.ConfigFileName, dir)
	}

	site := filepath.Join(dir, root, "localhost")
	if err := os.MkdirAll(site, 0755); err != nil {
		return err
	}
	module := filepath.Join(site, "app.go")
	if _, err := os.Stat(module); os.IsNotExist(err) {
		if err := os.WriteFile(module, []byte(exampleModule), 0644); err != nil {
			return err
		}
		success("Created %s", module)
	}

	cfg := config.New()
	cfg.Root = root
	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success("Created %s", path)

	fmt.Println()
	info("Run 'autovhost serve' in %s, then open http://localhost%s", dir, cfg.Listen)
	return nil
}
