package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	errs "github.com/relnotes-tools/relnotes/internal/errors"
	"github.com/relnotes-tools/relnotes/internal/history"
)

var (
	historyCommand string
	historyLimit   int
	historyClear   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View command run history",
	Long: `View the log of relnotes runs with timestamp, command, target, exit
code, duration, and finding count. The log lives under the state
directory as one JSON object per line.`,
	Example: `  relnotes history
  relnotes history --command lint -n 10
  relnotes history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyCommand, "command", "", "filter by command name")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "limit to last N entries (most recent)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "clear all history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if historyLimit < 0 {
		return errs.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", historyLimit))
	}

	if historyClear {
		if err := history.ClearHistory(cfg.StateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	histFile, err := history.LoadHistory(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	entries := filterEntries(histFile.Entries, historyCommand, historyLimit)
	if len(entries) == 0 {
		if historyCommand != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching entries for command '%s'.\n", historyCommand)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		}
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

// filterEntries filters and limits history entries.
func filterEntries(entries []history.HistoryEntry, commandFilter string, limit int) []history.HistoryEntry {
	var result []history.HistoryEntry
	for _, entry := range entries {
		if commandFilter == "" || entry.Command == commandFilter {
			result = append(result, entry)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}

// displayEntries formats and displays history entries.
func displayEntries(cmd *cobra.Command, entries []history.HistoryEntry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")

		exitCodeStr := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			exitCodeStr = green(exitCodeStr)
		} else {
			exitCodeStr = red(exitCodeStr)
		}

		target := entry.Target
		if target == "" {
			target = "-"
		}

		line := fmt.Sprintf("%s  %-10s  %-30s  exit=%s  %s",
			cyan(timestamp), entry.Command, target, exitCodeStr, entry.Duration)
		if entry.Findings > 0 {
			line += fmt.Sprintf("  %d %s", entry.Findings, plural(entry.Findings, "finding"))
		}
		fmt.Fprintln(out, line)
	}
}
