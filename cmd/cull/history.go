package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/cull/pkg/cull/config"
	"github.com/jamesainslie/cull/pkg/cull/history"
	"github.com/jamesainslie/cull/pkg/cull/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past triage sessions",
	Long: `View the record of previous triage sessions: what was scanned,
how many files were kept, deleted, or skipped, and how many bytes were
freed.`,
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", config.DefaultHistoryLimit, "maximum number of sessions to show")
	rootCmd.AddCommand(historyCmd)
}

// runHistory lists recent sessions.
func runHistory(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("history.path")
	if dir == "" {
		return fmt.Errorf("history store path is not configured")
	}

	store, err := history.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		printInfo("No sessions recorded yet.")
		printInfo("Run 'cull [path]' to start a triage session.")
		return nil
	}

	for _, rec := range records {
		printInfo("%s  %s (%s)", rec.StartedAt.Local().Format("2006-01-02 15:04"), rec.Source, rec.Mode)
		printInfo("  %s", summarizeRecord(rec))
	}
	return nil
}

// summarizeRecord renders one session's counters on a single line.
func summarizeRecord(rec history.Record) string {
	parts := []string{
		fmt.Sprintf("%d queued", rec.QueueLength),
		fmt.Sprintf("%d kept", rec.FilesKept),
		fmt.Sprintf("%d deleted (%s freed)", rec.FilesDeleted, types.FormatSize(rec.BytesDeleted)),
	}
	if rec.FilesSkipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", rec.FilesSkipped))
	}
	return strings.Join(parts, ", ")
}
