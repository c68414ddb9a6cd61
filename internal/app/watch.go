package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackwell-systems/repogc/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchFlagDebounce time.Duration
	watchFlagKeep     int
	watchFlagNoSync   bool

	watchCmd = &cobra.Command{
		Use:   "watch [repo-dirs...]",
		Short: "Re-run the artifact cleaner when new builds land",
		Long: `Watch the repository output directories and re-run 'clean' after each burst
of filesystem activity. Uploads arrive in bursts (artifact, signature, several
architectures), so the clean fires only once the directory has been quiet for
the debounce window.

Runs in the foreground; stop with Ctrl+C. A failed clean (for example a failed
pre-clean sync) is logged and the watcher keeps running.`,
		Example: `  # Watch the configured repo dirs
  repogc watch

  # Watch one directory with a short debounce
  repogc watch --debounce 5s /srv/repo/x86_64`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchFlagDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a clean is triggered")
	watchCmd.Flags().IntVar(&watchFlagKeep, "keep", 0, "builds to keep per package (default from config, else 1)")
	watchCmd.Flags().BoolVar(&watchFlagNoSync, "no-sync", false, "skip the git pull before each clean")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := resolveCheckoutRoot(cfg)
	if err != nil {
		return err
	}
	dirs, err := resolveRepoDirs(cfg, args)
	if err != nil {
		return err
	}

	keep := watchFlagKeep
	if keep == 0 {
		keep = cfg.Keep
	}

	w, err := watcher.New(dirs, watchFlagDebounce, func() error {
		return cleanRepos(cfg, root, dirs, keep, false, !watchFlagNoSync)
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	fmt.Printf("Watching %d directories (debounce %s). Ctrl+C to stop.\n", len(dirs), watchFlagDebounce)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping watcher...")
	return w.Stop()
}
