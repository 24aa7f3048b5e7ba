package cmd

import (
	"github.com/spf13/cobra"
)

var (
	historySessionFlag string
	historyLastNFlag   int
)

var reviewHistoryCmd = &cobra.Command{
	Use:   "review-history",
	Short: "List past review log entries",
	Run:   runReviewHistory,
}

func init() {
	reviewHistoryCmd.Flags().StringVar(&historySessionFlag, "session", "", "Restrict to one session's history")
	reviewHistoryCmd.Flags().IntVar(&historyLastNFlag, "last-n", 10, "Limit to the N most recent entries when --session is not given")
	rootCmd.AddCommand(reviewHistoryCmd)
}

func runReviewHistory(cmd *cobra.Command, args []string) {
	h, err := newHandlers(cmd.Context())
	if err != nil {
		die(1, err)
	}

	var lastN *int
	if cmd.Flags().Changed("last-n") {
		lastN = &historyLastNFlag
	}

	result, err := h.History(cmd.Context(), historySessionFlag, lastN)
	if err != nil {
		die(1, err)
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	printHistory(result)
}
