package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/reviewbridge/reviewbridge/internal/handlers"
	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/output"
)

// die prints err to stderr and exits with code. Exit codes are
// per-subcommand, so callers use plain Run rather than cobra's uniform
// exit-1-on-error RunE path.
func die(code int, err error) {
	fmt.Fprintf(ui.ErrOut, "Error: %v\n", err)
	os.Exit(code)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		die(1, fmt.Errorf("encode result: %w", err))
	}
	fmt.Fprintln(ui.Out, string(data))
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printFindings(findings []models.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(ui.Out)
	for _, f := range findings {
		loc := ""
		if f.File != nil {
			loc = *f.File
			if f.Line != nil {
				loc = fmt.Sprintf("%s:%d", loc, *f.Line)
			}
			loc = " (" + loc + ")"
		}
		fmt.Fprintf(ui.Out, "  [%s] %s%s: %s\n", output.SeverityColor(string(f.Severity)), f.Category, loc, f.Description)
		if f.Suggestion != nil {
			fmt.Fprintf(ui.Out, "      suggestion: %s\n", *f.Suggestion)
		}
	}
}

func printPlanResult(r *models.PlanReviewResult) {
	ui.Info("verdict: %s", output.VerdictColor(string(r.Verdict)))
	fmt.Fprintln(ui.Out, r.Summary)
	printFindings(r.Findings)
	fmt.Fprintf(ui.Out, "\nsession: %s\n", r.SessionID)
}

func printCodeResult(r *models.CodeReviewResult) {
	ui.Info("verdict: %s", output.VerdictColor(string(r.Verdict)))
	fmt.Fprintln(ui.Out, r.Summary)
	printFindings(r.Findings)
	if r.ChunksReviewed != nil {
		fmt.Fprintf(ui.Out, "\nchunks reviewed: %d\n", *r.ChunksReviewed)
	}
	fmt.Fprintf(ui.Out, "session: %s\n", r.SessionID)
}

func printPrecommitResult(r *models.PrecommitResult) {
	if r.ReadyToCommit {
		ui.Success("ready to commit")
	} else {
		ui.Error("COMMIT BLOCKED")
	}
	for _, b := range r.Blockers {
		fmt.Fprintf(ui.Out, "  blocker: %s\n", b)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(ui.Out, "  warning: %s\n", w)
	}
	fmt.Fprintf(ui.Out, "session: %s\n", r.SessionID)
}

func printStatus(r *handlers.StatusResponse) {
	fmt.Fprintf(ui.Out, "%-12s %s\n", "status:", output.StatusColor(r.Status))
	fmt.Fprintf(ui.Out, "%-12s %s\n", "session:", r.SessionID)
	if r.ElapsedSeconds != nil {
		fmt.Fprintf(ui.Out, "%-12s %ds\n", "elapsed:", *r.ElapsedSeconds)
	}
}

func printHistory(r *handlers.HistoryResponse) {
	table := ui.Table([]string{"Session", "Type", "Verdict", "Summary", "Timestamp"})
	for _, e := range r.Reviews {
		summary := e.Summary
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		_ = table.Append([]string{
			e.SessionID,
			string(e.Type),
			output.VerdictColor(e.Verdict),
			summary,
			e.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	_ = table.Render()
}
