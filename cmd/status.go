package cmd

import (
	"github.com/spf13/cobra"
)

var reviewStatusCmd = &cobra.Command{
	Use:   "review-status <session-id>",
	Short: "Check a review session's lifecycle status",
	Args:  cobra.ExactArgs(1),
	Run:   runReviewStatus,
}

func init() {
	rootCmd.AddCommand(reviewStatusCmd)
}

func runReviewStatus(cmd *cobra.Command, args []string) {
	h, err := newHandlers(cmd.Context())
	if err != nil {
		die(1, err)
	}

	result, err := h.Status(cmd.Context(), args[0])
	if err != nil {
		die(1, err)
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	printStatus(result)
}
