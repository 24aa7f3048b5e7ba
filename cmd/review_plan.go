package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/cliio"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
)

var (
	planPathFlag    string
	planFocusFlag   string
	planDepthFlag   string
	planSessionFlag string
)

var reviewPlanCmd = &cobra.Command{
	Use:   "review-plan",
	Short: "Review a proposed implementation plan before code is written",
	Run:   runReviewPlan,
}

func init() {
	reviewPlanCmd.Flags().StringVar(&planPathFlag, "plan", "", "Plan text: a file path, or - for stdin")
	reviewPlanCmd.Flags().StringVar(&planFocusFlag, "focus", "", "Comma-separated focus areas")
	reviewPlanCmd.Flags().StringVar(&planDepthFlag, "depth", "", "Review depth: quick or thorough")
	reviewPlanCmd.Flags().StringVar(&planSessionFlag, "session", "", "Resume a prior review thread by session id")
	_ = reviewPlanCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(reviewPlanCmd)
}

func runReviewPlan(cmd *cobra.Command, args []string) {
	if planDepthFlag != "" && planDepthFlag != "quick" && planDepthFlag != "thorough" {
		die(1, fmt.Errorf("--depth must be \"quick\" or \"thorough\", got %q", planDepthFlag))
	}

	plan, err := cliio.ReadArg(planPathFlag)
	if err != nil {
		die(1, err)
	}

	h, err := newHandlers(cmd.Context())
	if err != nil {
		die(1, err)
	}

	result, err := h.ReviewPlan(cmd.Context(), reviewer.PlanRequest{
		Plan:      plan,
		Focus:     splitCSV(planFocusFlag),
		Depth:     planDepthFlag,
		SessionID: planSessionFlag,
	})
	if err != nil {
		die(1, err)
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	printPlanResult(result)
}
