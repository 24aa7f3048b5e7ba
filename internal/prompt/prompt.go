// Package prompt assembles the tamper-resistant prompt strings sent to the
// reviewer thread for each review kind, built with strings.Builder; the plan
// or diff payload sits in its own delimited section.
package prompt

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/reviewbridge/reviewbridge/internal/models"
)

const (
	defaultPlanOpen  = "<<<PLAN>>>"
	defaultPlanClose = "<<<END_PLAN>>>"
	defaultDiffOpen  = "<<<DIFF>>>"
	defaultDiffClose = "<<<END_DIFF>>>"
)

// PlanInput carries the arguments to BuildPlanPrompt.
type PlanInput struct {
	Plan           string
	Context        string
	Focus          []string
	Depth          string
	ProjectContext string
}

// CodeInput carries the arguments to BuildCodePrompt.
type CodeInput struct {
	Diff           string
	Context        string
	Criteria       []string
	ProjectContext string
	RequireTests   bool
	ChunkIndex     int // 1-based; 0 means "not chunked"
	ChunkTotal     int
}

// PrecommitInput carries the arguments to BuildPrecommitPrompt.
type PrecommitInput struct {
	Diff           string
	Checklist      []string
	ProjectContext string
	BlockOn        []string
	ChunkIndex     int
	ChunkTotal     int
}

// delimitedPayload wraps payload in open/close markers, regenerating both
// with a random hex suffix whenever the payload contains either marker
// verbatim, so a reviewed payload can never smuggle a fake closing marker.
func delimitedPayload(payload, open, close string) string {
	o, c := open, close
	for strings.Contains(payload, o) || strings.Contains(payload, c) {
		suffix := randomHex(4)
		o = strings.TrimSuffix(open, ">>>") + "_" + suffix + ">>>"
		c = strings.TrimSuffix(close, ">>>") + "_" + suffix + ">>>"
	}
	return o + "\n" + payload + "\n" + c
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// BuildPlanPrompt assembles the plan-review prompt. For a payload free of
// marker collisions, identical inputs yield a byte-identical prompt.
func BuildPlanPrompt(in PlanInput) string {
	var b strings.Builder

	b.WriteString("You are a senior engineer reviewing a proposed implementation plan before any code is written.\n\n")

	if in.ProjectContext != "" {
		fmt.Fprintf(&b, "## Project background\n%s\n\n", in.ProjectContext)
	}
	if in.Context != "" {
		fmt.Fprintf(&b, "## Additional context\n%s\n\n", in.Context)
	}

	depth := in.Depth
	if depth == "" {
		depth = "thorough"
	}
	b.WriteString("## Review instructions\n")
	fmt.Fprintf(&b, "- Depth: %s\n", depth)
	if len(in.Focus) > 0 {
		fmt.Fprintf(&b, "- Focus areas: %s\n", strings.Join(in.Focus, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Severity rubric\n")
	b.WriteString("- critical: the plan will fail or cause serious harm if followed as written\n")
	b.WriteString("- major: a significant gap that should be resolved before implementation starts\n")
	b.WriteString("- minor: worth addressing but not blocking\n")
	b.WriteString("- suggestion: an optional improvement\n\n")

	b.WriteString("## Checklist\n")
	b.WriteString("- Does the plan address the stated goal completely?\n")
	b.WriteString("- Are edge cases and failure modes considered?\n")
	b.WriteString("- Is the scope appropriate, neither over- nor under-built?\n")
	b.WriteString("- Are there simpler alternatives?\n\n")

	b.WriteString("## Plan under review\n")
	b.WriteString(delimitedPayload(in.Plan, defaultPlanOpen, defaultPlanClose))
	b.WriteString("\n\n")

	b.WriteString(shapeAndDiscipline(&models.PlanReviewResult{}, models.PlanSeverities))

	return b.String()
}

// BuildCodePrompt assembles the code-review prompt. The code prompt requires
// file and line in every finding and forbids comments on unchanged code.
func BuildCodePrompt(in CodeInput) string {
	var b strings.Builder

	b.WriteString("You are a senior engineer performing a thorough code review of a unified diff.\n\n")

	if in.ProjectContext != "" {
		fmt.Fprintf(&b, "## Project background\n%s\n\n", in.ProjectContext)
	}
	if in.Context != "" {
		fmt.Fprintf(&b, "## Additional context\n%s\n\n", in.Context)
	}

	b.WriteString("## Review instructions\n")
	if len(in.Criteria) > 0 {
		fmt.Fprintf(&b, "- Criteria: %s\n", strings.Join(in.Criteria, ", "))
	}
	if in.RequireTests {
		b.WriteString("- Missing test coverage for new behavior is at least a major finding.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Severity rubric\n")
	b.WriteString("- critical: a bug, security issue, or data-loss risk\n")
	b.WriteString("- major: a correctness or maintainability problem that should block merge\n")
	b.WriteString("- minor: worth fixing but not blocking\n")
	b.WriteString("- nitpick: purely stylistic\n\n")

	b.WriteString("## Checklist\n")
	b.WriteString("- Every finding with a location MUST set both file and line.\n")
	b.WriteString("- Do not comment on lines the diff did not change.\n")
	b.WriteString("- Look for logic errors, missing error handling, and untested new behavior.\n\n")

	if in.ChunkTotal > 1 {
		fmt.Fprintf(&b, "Chunk %d of %d: reviewing the following files only.\n\n", in.ChunkIndex, in.ChunkTotal)
	}

	b.WriteString("## Diff under review\n")
	b.WriteString(delimitedPayload(in.Diff, defaultDiffOpen, defaultDiffClose))
	b.WriteString("\n\n")

	b.WriteString(shapeAndDiscipline(&models.CodeReviewResult{}, models.CodeSeverities))

	return b.String()
}

// BuildPrecommitPrompt assembles the precommit prompt, enumerating the
// configured block-on severities so the model can partition its findings.
func BuildPrecommitPrompt(in PrecommitInput) string {
	var b strings.Builder

	b.WriteString("You are a senior engineer gating a commit. Decide whether the staged change is safe to commit.\n\n")

	if in.ProjectContext != "" {
		fmt.Fprintf(&b, "## Project background\n%s\n\n", in.ProjectContext)
	}

	b.WriteString("## Review instructions\n")
	blockOn := in.BlockOn
	if len(blockOn) == 0 {
		blockOn = []string{"critical", "major"}
	}
	fmt.Fprintf(&b, "- Treat findings of severity %s as blockers; everything else is a warning.\n", strings.Join(blockOn, ", "))
	b.WriteString("\n")

	b.WriteString("## Severity rubric\n")
	b.WriteString("- critical: a bug, security issue, or data-loss risk\n")
	b.WriteString("- major: a correctness or maintainability problem that should block merge\n")
	b.WriteString("- minor: worth fixing but not blocking\n")
	b.WriteString("- nitpick: purely stylistic\n\n")

	b.WriteString("## Checklist\n")
	b.WriteString("- Do not comment on lines the diff did not change.\n")
	b.WriteString("- Look for logic errors, missing error handling, and secrets or credentials about to be committed.\n")
	b.WriteString("- A blocker MUST be phrased as a specific, actionable problem, not a vague concern.\n")
	if len(in.Checklist) > 0 {
		b.WriteString("- Project-specific checklist:\n")
		for _, item := range in.Checklist {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	b.WriteString("\n")

	if in.ChunkTotal > 1 {
		fmt.Fprintf(&b, "Chunk %d of %d: reviewing the following files only.\n\n", in.ChunkIndex, in.ChunkTotal)
	}

	b.WriteString("## Staged diff\n")
	b.WriteString(delimitedPayload(in.Diff, defaultDiffOpen, defaultDiffClose))
	b.WriteString("\n\n")

	b.WriteString("Respond with JSON matching this shape:\n")
	b.WriteString("```json\n")
	b.WriteString(`{"ready_to_commit": bool, "blockers": [string], "warnings": [string]}`)
	b.WriteString("\n```\n")
	b.WriteString("Return only the JSON object, no prose, no markdown fences.\n")

	return b.String()
}

// shapeAndDiscipline renders the JSON-shape section from shape's own struct
// tags via invopop/jsonschema, so the prompt's stated shape can never drift
// from what the validator accepts.
func shapeAndDiscipline(shape any, severities []models.Severity) string {
	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(shape)
	schemaJSON, err := schema.MarshalJSON()
	if err != nil {
		schemaJSON = []byte("{}")
	}

	names := make([]string, len(severities))
	for i, s := range severities {
		names[i] = string(s)
	}

	var b strings.Builder
	b.WriteString("## Response shape\n")
	b.WriteString("Respond with JSON matching this schema (omit session_id, the caller assigns it):\n")
	b.WriteString("```json\n")
	b.Write(schemaJSON)
	b.WriteString("\n```\n")
	fmt.Fprintf(&b, "Every finding's severity MUST be one of: %s.\n", strings.Join(names, ", "))
	b.WriteString("Return only the JSON object, no prose, no markdown fences.\n")
	return b.String()
}
