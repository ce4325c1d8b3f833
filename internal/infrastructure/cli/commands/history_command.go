package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect drafted emails",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryShowCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Assistant == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			entries := container.Assistant.LoadHistory(cmd.Context())
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			listHistoryEntries(cmd.OutOrStdout(), entries, time.Now())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <index>",
		Short: "Print the full prompt and email of one entry (1 is the most recent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Assistant == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			var index int
			if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			entries := container.Assistant.LoadHistory(cmd.Context())
			if index < 1 || index > len(entries) {
				return fmt.Errorf("index %d out of range (1-%d)", index, len(entries))
			}
			showHistoryEntry(cmd.OutOrStdout(), entries[index-1])
			return nil
		},
	}
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Assistant == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			out := cmd.OutOrStdout()
			if !yes && !helpers.PromptForConfirmation(out, bufio.NewReader(cmd.InOrStdin()), "Clear all history?") {
				fmt.Fprintln(out, MsgClearCancelled)
				return nil
			}
			if _, err := container.Assistant.ClearHistory(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(out, MsgHistoryCleared)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.Export(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", args[0])
			return nil
		},
	}
}

func listHistoryEntries(out io.Writer, entries []domain.HistoryEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return
	}
	for i, entry := range entries {
		fmt.Fprintf(out, "%2d. %s (%s)\n    %s\n    -> %s\n",
			i+1,
			entry.Timestamp.Local().Format(TimestampFormat),
			humanize.RelTime(entry.Timestamp, now, "ago", "from now"),
			preview(entry.Prompt),
			preview(entry.Email))
	}
}

func showHistoryEntry(out io.Writer, entry domain.HistoryEntry) {
	fmt.Fprintf(out, "Time:   %s\n", entry.Timestamp.Local().Format(TimestampFormat))
	fmt.Fprintf(out, "Prompt: %s\n\n", entry.Prompt)
	fmt.Fprintln(out, entry.Email)
}

// preview collapses whitespace and truncates to PreviewWidth runes.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= PreviewWidth {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewWidth-3]) + "..."
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
