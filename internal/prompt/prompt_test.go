package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanPrompt_RequiredSections(t *testing.T) {
	got := BuildPlanPrompt(PlanInput{
		Plan:           "1. Do the thing\n2. Ship it",
		Context:        "Ticket ENG-42",
		ProjectContext: "This is a payments service.",
		Focus:          []string{"correctness", "scope"},
		Depth:          "deep",
	})

	assert.Contains(t, got, "senior engineer reviewing a proposed implementation plan")
	assert.Contains(t, got, "## Project background\nThis is a payments service.")
	assert.Contains(t, got, "## Additional context\nTicket ENG-42")
	assert.Contains(t, got, "Depth: deep")
	assert.Contains(t, got, "Focus areas: correctness, scope")
	assert.Contains(t, got, "## Severity rubric")
	assert.Contains(t, got, "suggestion: an optional improvement")
	assert.Contains(t, got, "## Checklist")
	assert.Contains(t, got, defaultPlanOpen)
	assert.Contains(t, got, "1. Do the thing\n2. Ship it")
	assert.Contains(t, got, defaultPlanClose)
	assert.Contains(t, got, "## Response shape")
	assert.Contains(t, got, "no prose, no markdown fences")
}

func TestBuildCodePrompt_RequiredSections(t *testing.T) {
	got := BuildCodePrompt(CodeInput{
		Diff:           "diff --git a/x b/x\n@@ -1 +1 @@\n-a\n+b\n",
		Context:        "Refactor of the billing path",
		ProjectContext: "This is a payments service.",
		Criteria:       []string{"security"},
		RequireTests:   true,
		ChunkIndex:     2,
		ChunkTotal:     3,
	})

	assert.Contains(t, got, "senior engineer performing a thorough code review")
	assert.Contains(t, got, "## Project background\nThis is a payments service.")
	assert.Contains(t, got, "## Additional context\nRefactor of the billing path")
	assert.Contains(t, got, "Criteria: security")
	assert.Contains(t, got, "Missing test coverage for new behavior is at least a major finding.")
	assert.Contains(t, got, "## Severity rubric")
	assert.Contains(t, got, "nitpick: purely stylistic")
	assert.Contains(t, got, "## Checklist")
	assert.Contains(t, got, "Every finding with a location MUST set both file and line.")
	assert.Contains(t, got, "Chunk 2 of 3: reviewing the following files only.")
	assert.Contains(t, got, defaultDiffOpen)
	assert.Contains(t, got, defaultDiffClose)
	assert.Contains(t, got, "## Response shape")
}

func TestBuildPrecommitPrompt_RequiredSections(t *testing.T) {
	got := BuildPrecommitPrompt(PrecommitInput{
		Diff:           "diff --git a/x b/x\n@@ -1 +1 @@\n-a\n+b\n",
		ProjectContext: "This is a payments service.",
		Checklist:      []string{"No secrets in the diff"},
		BlockOn:        []string{"critical"},
	})

	assert.Contains(t, got, "senior engineer gating a commit")
	assert.Contains(t, got, "## Project background\nThis is a payments service.")
	assert.Contains(t, got, "Treat findings of severity critical as blockers")
	assert.Contains(t, got, "## Severity rubric")
	assert.Contains(t, got, "critical: a bug, security issue, or data-loss risk")
	assert.Contains(t, got, "nitpick: purely stylistic")
	assert.Contains(t, got, "## Checklist")
	assert.Contains(t, got, "Do not comment on lines the diff did not change.")
	assert.Contains(t, got, "Project-specific checklist:")
	assert.Contains(t, got, "No secrets in the diff")
	assert.Contains(t, got, defaultDiffOpen)
	assert.Contains(t, got, defaultDiffClose)
	assert.Contains(t, got, `"ready_to_commit": bool`)
	assert.Contains(t, got, "no prose, no markdown fences")
}

func TestBuildPrecommitPrompt_DefaultBlockOn(t *testing.T) {
	got := BuildPrecommitPrompt(PrecommitInput{Diff: "diff --git a/x b/x\n@@ -1 +1 @@\n-a\n+b\n"})
	assert.Contains(t, got, "Treat findings of severity critical, major as blockers")
}

func TestBuildPrecommitPrompt_NoChecklistOmitsProjectSpecificHeading(t *testing.T) {
	got := BuildPrecommitPrompt(PrecommitInput{Diff: "diff --git a/x b/x\n@@ -1 +1 @@\n-a\n+b\n"})
	assert.NotContains(t, got, "Project-specific checklist:")
}

func TestDelimitedPayload_RegeneratesOnCollision(t *testing.T) {
	payload := "before\n" + defaultDiffOpen + "\nsmuggled\n" + defaultDiffClose + "\nafter"

	got := delimitedPayload(payload, defaultDiffOpen, defaultDiffClose)

	// The literal default markers must not appear as the outer delimiters:
	// they only occur here as part of the smuggled payload text itself.
	openCount := strings.Count(got, defaultDiffOpen)
	closeCount := strings.Count(got, defaultDiffClose)
	require.Equal(t, 1, openCount)
	require.Equal(t, 1, closeCount)
	assert.True(t, strings.HasPrefix(got, "<<<DIFF_"))
	assert.Contains(t, got, payload)
}

func TestDelimitedPayload_NoCollisionUsesDefaultMarkers(t *testing.T) {
	got := delimitedPayload("plain diff body", defaultDiffOpen, defaultDiffClose)
	assert.True(t, strings.HasPrefix(got, defaultDiffOpen+"\n"))
	assert.True(t, strings.HasSuffix(got, "\n"+defaultDiffClose))
}
