package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/repogc/internal/config"
	"github.com/blackwell-systems/repogc/internal/git"
	"github.com/blackwell-systems/repogc/internal/output"
	"github.com/blackwell-systems/repogc/internal/store"
	"github.com/blackwell-systems/repogc/internal/sweeper"
	"github.com/spf13/cobra"
)

var (
	sweepFlagDryRun bool

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete stale untracked files from the build checkout",
		Long: `Reclaim disk space from the PKGBUILD checkout.

Per package directory, git's tracked-file list is the source of truth: tracked
files are never deleted, and untracked files are deleted only once they are a
day older than the directory's newest tracked file. Build logs, built package
archives, bytecode caches and nested version-control checkouts are left alone.
A directory with neither a recipe nor any tracked files is removed wholesale.

Every live removal is recorded in the audit database (see 'repogc history').`,
		Example: `  # Preview the sweep
  repogc sweep -n

  # Sweep for real
  repogc sweep`,
		RunE: runSweep,
	}
)

func init() {
	sweepCmd.Flags().BoolVarP(&sweepFlagDryRun, "dry-run", "n", false, "report what would be deleted without deleting")

	RootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := resolveCheckoutRoot(cfg)
	if err != nil {
		return err
	}

	tracked, err := git.ListTracked(root)
	if err != nil {
		return err
	}

	s := sweeper.New(root, tracked, sweepFlagDryRun)
	result, err := s.Sweep()
	if err != nil {
		return err
	}

	if !sweepFlagDryRun && len(result.Removed) > 0 {
		if err := recordSweep(cfg, result); err != nil {
			fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		}
	}

	byReason := make(map[string]int)
	for _, rm := range result.Removed {
		byReason[rm.Reason]++
	}
	fmt.Print(output.RenderCleanSummary(byReason, result.Bytes(), sweepFlagDryRun))
	return nil
}

// recordSweep writes one audit run covering the sweep's removals.
func recordSweep(cfg *config.Config, result *sweeper.Result) error {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}

	runID, err := st.BeginRun("sweep", time.Now())
	if err != nil {
		return err
	}
	for _, rm := range result.Removed {
		d := &store.Deletion{
			RunID:     runID,
			Path:      rm.Path,
			Reason:    rm.Reason,
			SizeBytes: rm.Size,
			DeletedAt: time.Now(),
		}
		if err := st.RecordDeletion(d); err != nil {
			return err
		}
	}
	return st.FinishRun(runID, len(result.Removed), result.Bytes())
}
