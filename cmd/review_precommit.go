package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/cliio"
	"github.com/reviewbridge/reviewbridge/internal/handlers"
)

var (
	precommitDiffFlag    string
	precommitSessionFlag string
)

var reviewPrecommitCmd = &cobra.Command{
	Use:   "review-precommit",
	Short: "Review the currently staged changes before commit",
	Long: `Review the currently staged changes before commit.

Exit code 0 means ready to commit, 2 means the review blocked the commit,
1 means a runtime error occurred. Safe to use as 'reviewbridge
review-precommit && git commit'.`,
	Run: runReviewPrecommit,
}

func init() {
	reviewPrecommitCmd.Flags().StringVar(&precommitDiffFlag, "diff", "", "Explicit diff: a file path, or - for stdin; overrides the staged diff even when empty")
	reviewPrecommitCmd.Flags().StringVar(&precommitSessionFlag, "session", "", "Resume a prior review thread by session id")
	rootCmd.AddCommand(reviewPrecommitCmd)
}

func runReviewPrecommit(cmd *cobra.Command, args []string) {
	in := handlers.PrecommitInput{SessionID: precommitSessionFlag}
	if cmd.Flags().Changed("diff") {
		resolved, err := cliio.ReadArg(precommitDiffFlag)
		if err != nil {
			die(1, err)
		}
		in.Diff = &resolved
	}

	h, err := newHandlers(cmd.Context())
	if err != nil {
		die(1, err)
	}

	result, err := h.ReviewPrecommit(cmd.Context(), in, handlers.CLISurface)
	if err != nil {
		die(1, err)
	}

	if jsonOutput {
		printJSON(result)
	} else {
		printPrecommitResult(result)
	}

	if !result.ReadyToCommit {
		os.Exit(2)
	}
}
