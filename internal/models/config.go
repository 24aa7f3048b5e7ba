package models

// ReasoningEffort is the reviewer model's requested reasoning depth.
type ReasoningEffort string

const (
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// ValidEffort reports whether e is one of the allowed reasoning-effort values.
func ValidEffort(e ReasoningEffort) bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	default:
		return false
	}
}

// PlanDefaults holds per-request defaults applied when a plan review omits them.
type PlanDefaults struct {
	Focus []string `json:"focus,omitempty" mapstructure:"focus"`
	Depth string   `json:"depth,omitempty" mapstructure:"depth"`
}

// CodeDefaults holds per-request defaults applied when a code review omits them.
type CodeDefaults struct {
	Criteria     []string `json:"criteria,omitempty" mapstructure:"criteria"`
	RequireTests bool     `json:"require_tests,omitempty" mapstructure:"require_tests"`
}

// PrecommitDefaults holds the block-on severity threshold for precommit reviews.
type PrecommitDefaults struct {
	BlockOn []string `json:"block_on,omitempty" mapstructure:"block_on"`
}

// Config is the review engine's immutable startup configuration.
type Config struct {
	ModelName       string            `json:"model_name" mapstructure:"model_name"`
	ReasoningEffort ReasoningEffort   `json:"reasoning_effort" mapstructure:"reasoning_effort"`
	TimeoutSeconds  int               `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxChunkTokens  int               `json:"max_chunk_tokens" mapstructure:"max_chunk_tokens"`
	ProjectContext  string            `json:"project_context" mapstructure:"project_context"`
	Plan            PlanDefaults      `json:"plan" mapstructure:"plan"`
	Code            CodeDefaults      `json:"code" mapstructure:"code"`
	Precommit       PrecommitDefaults `json:"precommit" mapstructure:"precommit"`
}

// DefaultConfig returns the configuration used when no file is present and
// no field is overridden. Parsing an empty object must yield this value.
func DefaultConfig() Config {
	return Config{
		ModelName:       "claude-sonnet-4-5",
		ReasoningEffort: EffortMedium,
		TimeoutSeconds:  300,
		MaxChunkTokens:  8000,
		ProjectContext:  "",
		Plan: PlanDefaults{
			Focus: nil,
			Depth: "thorough",
		},
		Code: CodeDefaults{
			Criteria:     nil,
			RequireTests: false,
		},
		Precommit: PrecommitDefaults{
			BlockOn: []string{"critical", "major"},
		},
	}
}
