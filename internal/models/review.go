package models

// ReviewKind is one of the three review request shapes the engine handles.
type ReviewKind string

const (
	KindPlan      ReviewKind = "plan"
	KindCode      ReviewKind = "code"
	KindPrecommit ReviewKind = "precommit"
)

// Severity is a finding's severity. The allowed set differs by ReviewKind;
// validation must reject values from the wrong kind's enum.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityMajor      Severity = "major"
	SeverityMinor      Severity = "minor"
	SeveritySuggestion Severity = "suggestion" // plan-only
	SeverityNitpick    Severity = "nitpick"    // code-only
)

// PlanSeverities is the closed severity enum accepted for plan reviews.
var PlanSeverities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor, SeveritySuggestion}

// CodeSeverities is the closed severity enum accepted for code reviews.
var CodeSeverities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor, SeverityNitpick}

// codeSeverityRank orders code-review severities worst-first for merge dedup.
// Plan reviews are never chunked/merged, so only code needs a rank table.
var codeSeverityRank = map[Severity]int{
	SeverityCritical: 3,
	SeverityMajor:    2,
	SeverityMinor:    1,
	SeverityNitpick:  0,
}

// RankCode returns s's merge rank among code-review severities. Unknown
// values rank below every known severity.
func RankCode(s Severity) int {
	if r, ok := codeSeverityRank[s]; ok {
		return r
	}
	return -1
}

func allowedSeverities(kind ReviewKind) []Severity {
	switch kind {
	case KindPlan:
		return PlanSeverities
	case KindCode, KindPrecommit:
		return CodeSeverities
	default:
		return nil
	}
}

// ValidSeverity reports whether s belongs to kind's severity enum.
func ValidSeverity(kind ReviewKind, s Severity) bool {
	for _, a := range allowedSeverities(kind) {
		if a == s {
			return true
		}
	}
	return false
}

// Finding is a single review comment. File and Line are nil when the finding
// is not anchored to a specific location; such findings are never deduped.
type Finding struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Description string  `json:"description"`
	File       *string  `json:"file"`
	Line       *int     `json:"line"`
	Suggestion *string  `json:"suggestion"`
}

// PlanVerdict is the outcome of a plan review.
type PlanVerdict string

const (
	PlanApprove PlanVerdict = "approve"
	PlanRevise  PlanVerdict = "revise"
	PlanReject  PlanVerdict = "reject"
)

// CodeVerdict is the outcome of a code review, ordered worst-last for merge
// precedence: Approve < RequestChanges < Reject.
type CodeVerdict string

const (
	CodeApprove        CodeVerdict = "approve"
	CodeRequestChanges CodeVerdict = "request_changes"
	CodeReject         CodeVerdict = "reject"
)

var codeVerdictRank = map[CodeVerdict]int{
	CodeApprove:        0,
	CodeRequestChanges: 1,
	CodeReject:         2,
}

// WorstCodeVerdict returns the verdict with the higher precedence rank.
func WorstCodeVerdict(a, b CodeVerdict) CodeVerdict {
	if codeVerdictRank[b] > codeVerdictRank[a] {
		return b
	}
	return a
}

// PlanReviewResult is the response shape for review_plan.
type PlanReviewResult struct {
	Verdict   PlanVerdict `json:"verdict"`
	Summary   string      `json:"summary"`
	Findings  []Finding   `json:"findings"`
	SessionID string      `json:"session_id"`
}

// CodeReviewResult is the response shape for review_code. ChunksReviewed is
// omitted (nil) on the single-turn path and set only when chunking occurred.
type CodeReviewResult struct {
	Verdict        CodeVerdict `json:"verdict"`
	Summary        string      `json:"summary"`
	Findings       []Finding   `json:"findings"`
	SessionID      string      `json:"session_id"`
	ChunksReviewed *int        `json:"chunks_reviewed,omitempty"`
}

// PrecommitResult is the response shape for review_precommit.
type PrecommitResult struct {
	ReadyToCommit  bool     `json:"ready_to_commit"`
	Blockers       []string `json:"blockers"`
	Warnings       []string `json:"warnings"`
	SessionID      string   `json:"session_id"`
	ChunksReviewed *int     `json:"chunks_reviewed,omitempty"`
}
