package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagRepo   string
	flagDB     string

	// RootCmd is the root command for repogc
	RootCmd = &cobra.Command{
		Use:   "repogc",
		Short: "Retention and garbage collection for a package build repository",
		Long: `repogc keeps a package build repository within bounded size. It trims the
repository output directories down to the newest builds of each defined
package, and it sweeps stale untracked files out of the PKGBUILD checkout
without ever touching version-controlled content.

Two independent pipelines:

  clean   Sync the checkout, derive the set of defined package names from the
          recipes, then delete artifacts of undefined packages and all but the
          newest k builds per package (plus orphaned debug packages).

  sweep   Delete stale untracked files from the checkout, protecting anything
          tracked by git and anything modified within one day of the newest
          tracked file in its directory.

Both support -n/--dry-run, which reports the exact same selection without
deleting anything.

Examples:
  # Preview what cleaning would delete
  repogc clean -n /srv/repo/x86_64

  # Clean for real, keeping the 2 newest builds per package
  repogc clean --keep 2 /srv/repo/x86_64

  # Sweep the checkout
  repogc sweep

  # Re-clean automatically when new builds land
  repogc watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("repogc: retention and garbage collection for a package build repository")
			fmt.Println()
			fmt.Println("Run 'repogc clean -n' to preview artifact cleaning.")
			fmt.Println("Run 'repogc history' to inspect past runs.")
			fmt.Println("Run 'repogc --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/repogc/repogc.yaml)")
	RootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "checkout root of the build repository (overrides config)")
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "audit database path (default: ~/.repogc/history.db)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
