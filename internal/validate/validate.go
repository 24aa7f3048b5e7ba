// Package validate narrows raw model JSON output into typed result shapes,
// rejecting cross-kind severity values. A validation failure is a
// recoverable error class, distinct from a transport error, so the reviewer
// client can retry the same prompt once.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/reviewbridge/reviewbridge/internal/models"
)

// rawFinding mirrors models.Finding but keeps Severity as a bare string so
// an out-of-enum value can be reported rather than silently zero-valued.
type rawFinding struct {
	Severity    string  `json:"severity"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	File        *string `json:"file"`
	Line        *int    `json:"line"`
	Suggestion  *string `json:"suggestion"`
}

func (f rawFinding) toFinding() models.Finding {
	return models.Finding{
		Severity:    models.Severity(f.Severity),
		Category:    f.Category,
		Description: f.Description,
		File:        f.File,
		Line:        f.Line,
		Suggestion:  f.Suggestion,
	}
}

func checkFindings(kind models.ReviewKind, findings []rawFinding) error {
	for i, f := range findings {
		sev := models.Severity(f.Severity)
		if !models.ValidSeverity(kind, sev) {
			return fmt.Errorf("finding %d: severity %q is not valid for %s reviews", i, f.Severity, kind)
		}
	}
	return nil
}

type rawPlanResult struct {
	Verdict  string       `json:"verdict"`
	Summary  string       `json:"summary"`
	Findings []rawFinding `json:"findings"`
}

// Plan parses and validates a plan-review response body.
func Plan(body string) (*models.PlanReviewResult, error) {
	var raw rawPlanResult
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	switch models.PlanVerdict(raw.Verdict) {
	case models.PlanApprove, models.PlanRevise, models.PlanReject:
	default:
		return nil, fmt.Errorf("verdict %q is not a valid plan verdict", raw.Verdict)
	}
	if err := checkFindings(models.KindPlan, raw.Findings); err != nil {
		return nil, err
	}

	findings := make([]models.Finding, len(raw.Findings))
	for i, f := range raw.Findings {
		findings[i] = f.toFinding()
	}
	return &models.PlanReviewResult{
		Verdict:  models.PlanVerdict(raw.Verdict),
		Summary:  raw.Summary,
		Findings: findings,
	}, nil
}

type rawCodeResult struct {
	Verdict  string       `json:"verdict"`
	Summary  string       `json:"summary"`
	Findings []rawFinding `json:"findings"`
}

// Code parses and validates a code-review response body. Every finding must
// carry both file and line, per the code prompt's discipline.
func Code(body string) (*models.CodeReviewResult, error) {
	var raw rawCodeResult
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	switch models.CodeVerdict(raw.Verdict) {
	case models.CodeApprove, models.CodeRequestChanges, models.CodeReject:
	default:
		return nil, fmt.Errorf("verdict %q is not a valid code verdict", raw.Verdict)
	}
	if err := checkFindings(models.KindCode, raw.Findings); err != nil {
		return nil, err
	}
	for i, f := range raw.Findings {
		if f.File == nil || f.Line == nil {
			return nil, fmt.Errorf("finding %d: code findings must set both file and line", i)
		}
	}

	findings := make([]models.Finding, len(raw.Findings))
	for i, f := range raw.Findings {
		findings[i] = f.toFinding()
	}
	return &models.CodeReviewResult{
		Verdict:  models.CodeVerdict(raw.Verdict),
		Summary:  raw.Summary,
		Findings: findings,
	}, nil
}

type rawPrecommitResult struct {
	ReadyToCommit bool     `json:"ready_to_commit"`
	Blockers      []string `json:"blockers"`
	Warnings      []string `json:"warnings"`
}

// Precommit parses and validates a precommit response body.
func Precommit(body string) (*models.PrecommitResult, error) {
	var raw rawPrecommitResult
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON in response: %w", err)
	}
	return &models.PrecommitResult{
		ReadyToCommit: raw.ReadyToCommit,
		Blockers:      raw.Blockers,
		Warnings:      raw.Warnings,
	}, nil
}
