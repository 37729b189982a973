package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/berrythewa/multiclip/internal/types"
	"github.com/berrythewa/multiclip/pkg/format"
	"github.com/spf13/cobra"
)

// historyTimeLayout is how timestamps are printed by the history command.
const historyTimeLayout = "2006-01-02 15:04:05"

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		limit    int
		slotName string
		reverse  bool
		useJSON  bool
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show assignment history",
		Long: `Show the most recent slot assignments, oldest first.

Examples:
  multiclip history                # Show last 10 entries
  multiclip history -n 50          # Show last 50 entries
  multiclip history -n 0           # Show every entry
  multiclip history --slot A       # Only entries for slot A
  multiclip history -r --json      # Newest first, as JSON
  multiclip history -f             # Keep printing new assignments`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if follow && (useJSON || reverse) {
				return errors.New("--follow cannot be combined with --json or --reverse")
			}

			var filter types.SlotID
			if slotName != "" {
				slot, err := types.ParseSlot(slotName)
				if err != nil {
					return err
				}
				filter = slot
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			history := store.Load().History
			entries := selectHistory(history, filter, limit, reverse)
			out := cmd.OutOrStdout()

			if useJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 && !follow {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			now := time.Now()
			for _, e := range entries {
				printHistoryEntry(out, e, now)
			}

			if !follow {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return followHistory(ctx, store, out, filter, len(history))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show (0 = all)")
	cmd.Flags().StringVar(&slotName, "slot", "", "only show entries for this slot")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "reverse order (newest first)")
	cmd.Flags().BoolVar(&useJSON, "json", false, "output history as JSON")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep running and print new entries as they are recorded")

	return cmd
}

func printHistoryEntry(out io.Writer, e types.HistoryEntry, now time.Time) {
	fmt.Fprintf(out, "%s (%s)  %s: %s\n",
		e.Time.In(time.Local).Format(historyTimeLayout),
		format.FormatRelativeTime(e.Time, now),
		e.Slot,
		format.Preview(e.Content, format.ListPreviewLen))
}

// storeWatcher is the part of storage.SlotStore used by followHistory.
type storeWatcher interface {
	Watch(ctx context.Context, onChange func(*types.Store)) error
}

// followHistory prints entries appended after the first seen ones until ctx
// is cancelled. A shorter history means the store was replaced; printing
// resumes from its new end.
func followHistory(ctx context.Context, store storeWatcher, out io.Writer, filter types.SlotID, seen int) error {
	return store.Watch(ctx, func(s *types.Store) {
		if len(s.History) < seen {
			seen = len(s.History)
			return
		}
		now := time.Now()
		for _, e := range s.History[seen:] {
			if filter == "" || e.Slot == filter {
				printHistoryEntry(out, e, now)
			}
		}
		seen = len(s.History)
	})
}

// selectHistory filters by slot, keeps the newest limit entries and returns
// them oldest first unless reverse is set.
func selectHistory(history []types.HistoryEntry, slot types.SlotID, limit int, reverse bool) []types.HistoryEntry {
	selected := make([]types.HistoryEntry, 0, len(history))
	for _, e := range history {
		if slot == "" || e.Slot == slot {
			selected = append(selected, e)
		}
	}

	if limit > 0 && len(selected) > limit {
		selected = selected[len(selected)-limit:]
	}

	if reverse {
		for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
			selected[i], selected[j] = selected[j], selected[i]
		}
	}
	return selected
}
