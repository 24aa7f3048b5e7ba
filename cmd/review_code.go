package cmd

import (
	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/cliio"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
)

var (
	codeDiffFlag    string
	codeFocusFlag   string
	codeSessionFlag string
)

var reviewCodeCmd = &cobra.Command{
	Use:   "review-code",
	Short: "Review a code diff for correctness, style, and risk",
	Run:   runReviewCode,
}

func init() {
	reviewCodeCmd.Flags().StringVar(&codeDiffFlag, "diff", "", "Unified diff: a file path, or - for stdin")
	reviewCodeCmd.Flags().StringVar(&codeFocusFlag, "focus", "", "Comma-separated review criteria")
	reviewCodeCmd.Flags().StringVar(&codeSessionFlag, "session", "", "Resume a prior review thread by session id")
	_ = reviewCodeCmd.MarkFlagRequired("diff")
	rootCmd.AddCommand(reviewCodeCmd)
}

func runReviewCode(cmd *cobra.Command, args []string) {
	diff, err := cliio.ReadArg(codeDiffFlag)
	if err != nil {
		die(1, err)
	}

	h, err := newHandlers(cmd.Context())
	if err != nil {
		die(1, err)
	}

	result, err := h.ReviewCode(cmd.Context(), reviewer.CodeRequest{
		Diff:      diff,
		Criteria:  splitCSV(codeFocusFlag),
		SessionID: codeSessionFlag,
	})
	if err != nil {
		die(1, err)
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	printCodeResult(result)
}
