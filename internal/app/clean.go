package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/repogc/internal/artifact"
	"github.com/blackwell-systems/repogc/internal/config"
	"github.com/blackwell-systems/repogc/internal/git"
	"github.com/blackwell-systems/repogc/internal/output"
	"github.com/blackwell-systems/repogc/internal/store"
	"github.com/spf13/cobra"
)

var (
	cleanFlagDryRun bool
	cleanFlagKeep   int
	cleanFlagNoSync bool

	cleanCmd = &cobra.Command{
		Use:   "clean [repo-dirs...]",
		Short: "Delete stale and undefined package artifacts",
		Long: `Apply the retention policy to the repository output directories.

For each directory, every artifact filename is parsed into name, version and
architecture. Artifacts whose package name is no longer defined by any recipe
are deleted entirely; for defined packages, all but the newest k builds are
deleted (k = 1 by default). Debug-symbol packages are deleted when their
corresponding base artifact is gone. Detached signatures always follow their
artifact.

Unless --no-sync is given, the checkout is synchronized with 'git pull' first
so the registry reflects the latest recipes; a failed sync aborts the run.

Every live deletion is recorded in the audit database (see 'repogc history').`,
		Example: `  # Preview against the configured repo dirs
  repogc clean -n

  # Clean one specific directory, keeping 2 builds per package
  repogc clean --keep 2 /srv/repo/x86_64`,
		RunE: runClean,
	}
)

func init() {
	cleanCmd.Flags().BoolVarP(&cleanFlagDryRun, "dry-run", "n", false, "report what would be deleted without deleting")
	cleanCmd.Flags().IntVar(&cleanFlagKeep, "keep", 0, "builds to keep per package (default from config, else 1)")
	cleanCmd.Flags().BoolVar(&cleanFlagNoSync, "no-sync", false, "skip the pre-clean git pull")

	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
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

	keep := cleanFlagKeep
	if keep == 0 {
		keep = cfg.Keep
	}

	return cleanRepos(cfg, root, dirs, keep, cleanFlagDryRun, !cleanFlagNoSync)
}

// cleanRepos is the whole clean pipeline: optional sync, registry build,
// per-directory retention, audit recording, summary. It is shared with the
// watch command.
func cleanRepos(cfg *config.Config, root string, dirs []string, keep int, dryRun, sync bool) error {
	if sync {
		out, err := git.Pull(root)
		if filtered := git.FilterPullNoise(out); filtered != "" {
			fmt.Println(filtered)
		}
		if err != nil {
			return fmt.Errorf("failed to sync checkout: %w", err)
		}
	}

	reg, err := buildRegistry(root)
	if err != nil {
		return err
	}
	fmt.Printf("Registry: %d defined package name(s)\n", reg.Len())

	// The audit store only sees live runs; a dry run is a pure report.
	var st *store.Store
	var runID int64
	if !dryRun {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}
		st, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		defer st.Close()
		if err := st.CreateSchema(); err != nil {
			return fmt.Errorf("failed to create audit schema: %w", err)
		}
		runID, err = st.BeginRun("clean", time.Now())
		if err != nil {
			return err
		}
	}

	cleaner := artifact.New(reg, keep, dryRun)

	byReason := make(map[string]int)
	var bytes int64
	files := 0
	var firstErr error

	for _, dir := range dirs {
		result, err := cleaner.CleanDir(dir)
		if err != nil {
			// One unreadable directory must not stop the others.
			fmt.Fprintf(os.Stderr, "clean: %v\n", err)
			if firstErr == nil {
				firstErr = err
			}
			if result == nil {
				continue
			}
		}

		for _, d := range result.Deleted {
			byReason[d.Reason]++
			bytes += d.Size
			files++

			if st != nil {
				rec := &store.Deletion{
					RunID:     runID,
					Path:      d.Path,
					Package:   d.Name,
					Reason:    d.Reason,
					SizeBytes: d.Size,
					DeletedAt: time.Now(),
				}
				if err := st.RecordDeletion(rec); err != nil {
					fmt.Fprintf(os.Stderr, "clean: %v\n", err)
				}
			}
		}
	}

	if st != nil {
		if err := st.FinishRun(runID, files, bytes); err != nil {
			fmt.Fprintf(os.Stderr, "clean: %v\n", err)
		}
	}

	fmt.Print(output.RenderCleanSummary(byReason, bytes, dryRun))
	return firstErr
}
