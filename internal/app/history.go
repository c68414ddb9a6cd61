package app

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repogc/internal/output"
	"github.com/blackwell-systems/repogc/internal/store"
)

var (
	historyFlagLimit int

	historyCmd = &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past cleaning runs and what they deleted",
		Long: `Inspect the audit database.

Without arguments, lists recent runs with their totals. With a run id, lists
every deletion that run performed. Dry runs never appear here: they delete
nothing and are not recorded.`,
		Example: `  # Recent runs
  repogc history

  # Everything run 12 deleted
  repogc history 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "number of runs to list")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
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

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		deletions, err := st.ListDeletions(runID)
		if err != nil {
			return err
		}
		fmt.Print(output.RenderDeletionTable(deletions))
		return nil
	}

	runs, err := st.ListRuns(historyFlagLimit)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderRunTable(runs))

	total, err := st.TotalReclaimed()
	if err != nil {
		return err
	}
	if total > 0 {
		fmt.Printf("\nTotal reclaimed: %s\n", humanize.IBytes(uint64(total)))
	}
	return nil
}
