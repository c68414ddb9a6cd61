// Package output provides terminal output utilities for repogc: summary and
// history tables with ASCII layout and ANSI color when stdout is a terminal.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/repogc/internal/store"
)

// ANSI color codes for summary display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, s string) string {
	if !IsColorEnabled() {
		return s
	}
	return color + s + colorReset
}

// RenderCleanSummary renders the per-reason totals of a cleaning run.
// wouldRemove switches the headline verb for dry runs.
func RenderCleanSummary(byReason map[string]int, bytes int64, wouldRemove bool) string {
	var sb strings.Builder

	total := 0
	for _, n := range byReason {
		total += n
	}

	verb := "Removed"
	if wouldRemove {
		verb = "Would remove"
	}

	if total == 0 {
		sb.WriteString(colorize(colorGreen, "Nothing to remove.") + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%s %d file(s), %s\n", verb, total, humanize.IBytes(uint64(bytes))))

	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	for _, reason := range reasons {
		sb.WriteString(fmt.Sprintf("  %-18s %d\n", reason, byReason[reason]))
	}
	return sb.String()
}

// RenderRunTable renders the audit history of past runs.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-17s %-7s %8s %12s\n",
		"Run", "Started", "Command", "Files", "Reclaimed"))
	sb.WriteString(strings.Repeat("─", 54))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-5d %-17s %-7s %8d %12s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Command,
			run.FilesRemoved,
			humanize.IBytes(uint64(run.BytesReclaimed)),
		))
	}
	return sb.String()
}

// RenderDeletionTable renders the individual deletions of one run.
func RenderDeletionTable(deletions []*store.Deletion) string {
	if len(deletions) == 0 {
		return "No deletions recorded for this run.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-18s %10s  %s\n", "Reason", "Size", "Path"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, d := range deletions {
		sb.WriteString(fmt.Sprintf("%s %10s  %s\n",
			reasonCell(d.Reason, IsColorEnabled()),
			humanize.IBytes(uint64(d.SizeBytes)),
			d.Path,
		))
	}
	return sb.String()
}

// reasonCell pads the reason to the column width before any color is applied.
// Padding a colored string would count the invisible escape bytes toward the
// field width and shift the following columns.
func reasonCell(reason string, color bool) string {
	cell := fmt.Sprintf("%-18s", reason)
	if !color {
		return cell
	}
	switch reason {
	case "unknown-package", "dead-package-dir":
		return colorYellow + cell + colorReset
	case "superseded", "orphan-debug":
		return colorGray + cell + colorReset
	default:
		return cell
	}
}
