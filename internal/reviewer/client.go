// Package reviewer owns the vendor SDK handle and implements thread
// lifecycle, single-turn-with-retry, chunked orchestration, and multi-chunk
// merge: the core review engine.
package reviewer

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
	"github.com/reviewbridge/reviewbridge/internal/chunk"
	"github.com/reviewbridge/reviewbridge/internal/codexsdk"
	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/prompt"
	"github.com/reviewbridge/reviewbridge/internal/validate"
)

// fixedOverheadTokens is the reserved scaffolding budget every prompt pays
// beyond its variable context/criteria/project-context sections.
const fixedOverheadTokens = 2000

// minChunkBudget is the floor the per-chunk token budget never drops below.
const minChunkBudget = 500

// sdkThread is the subset of *codexsdk.Thread's surface the reviewer
// depends on. Extracted as an interface so tests can drive retry, timeout,
// and resume behavior with a fake instead of a live Anthropic credential.
type sdkThread interface {
	ID() string
	Run(ctx context.Context, prompt string, opts codexsdk.RunOptions) (*codexsdk.RunResult, error)
}

// sdkClient is the subset of *codexsdk.Client's surface the reviewer
// depends on.
type sdkClient interface {
	StartThread(codexsdk.ThreadOptions) (sdkThread, error)
	ResumeThread(id string, opts codexsdk.ThreadOptions) (sdkThread, error)
}

// liveSDK adapts *codexsdk.Client onto sdkClient. codexsdk.Thread already
// satisfies sdkThread; only the nil-error-vs-typed-nil-interface plumbing
// needs an explicit adapter.
type liveSDK struct{ c *codexsdk.Client }

func (l liveSDK) StartThread(opts codexsdk.ThreadOptions) (sdkThread, error) {
	th, err := l.c.StartThread(opts)
	if err != nil {
		return nil, err
	}
	return th, nil
}

func (l liveSDK) ResumeThread(id string, opts codexsdk.ThreadOptions) (sdkThread, error) {
	th, err := l.c.ResumeThread(id, opts)
	if err != nil {
		return nil, err
	}
	return th, nil
}

// Client is the review engine's reviewer client. One Client is safe to use
// from multiple concurrent requests: it holds no per-request mutable state.
type Client struct {
	sdk sdkClient
	cfg models.Config
}

// New builds a reviewer client over an already-constructed vendor SDK handle.
func New(sdk *codexsdk.Client, cfg models.Config) *Client {
	return &Client{sdk: liveSDK{c: sdk}, cfg: cfg}
}

func (c *Client) threadOpts() codexsdk.ThreadOptions {
	return codexsdk.ThreadOptions{
		Model:                c.cfg.ModelName,
		SandboxMode:          "read-only",
		SkipGitRepoCheck:     true,
		ModelReasoningEffort: string(c.cfg.ReasoningEffort),
	}
}

// startOrResume starts a fresh thread when sessionID is empty, else resumes
// the caller's thread. A resume miss surfaces as SESSION_NOT_FOUND.
func (c *Client) startOrResume(sessionID string) (sdkThread, error) {
	if sessionID == "" {
		th, err := c.sdk.StartThread(c.threadOpts())
		if err != nil {
			return nil, apperr.Classify(err, c.cfg.ModelName)
		}
		return th, nil
	}
	return c.sdk.ResumeThread(sessionID, c.threadOpts())
}

// runTurn issues one bounded-deadline turn on thread.
func (c *Client) runTurn(ctx context.Context, thread sdkThread, promptText string) (string, error) {
	deadline := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	turnCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	res, err := thread.Run(turnCtx, promptText, codexsdk.RunOptions{TimeoutSeconds: c.cfg.TimeoutSeconds})
	if err != nil {
		return "", apperr.Classify(err, c.cfg.ModelName)
	}
	return res.FinalResponse, nil
}

// runValidated issues a turn, parses the response with parse, and retries
// the same prompt on the same thread exactly once when parsing fails. Two
// consecutive failures surface as CODEX_PARSE_ERROR carrying the last
// validation message.
func runValidated[T any](c *Client, ctx context.Context, thread sdkThread, promptText string, parse func(string) (*T, error)) (*T, error) {
	body, err := c.runTurn(ctx, thread, promptText)
	if err != nil {
		return nil, err
	}
	if val, perr := parse(body); perr == nil {
		return val, nil
	}

	body2, err2 := c.runTurn(ctx, thread, promptText)
	if err2 != nil {
		return nil, err2
	}
	val2, perr2 := parse(body2)
	if perr2 != nil {
		return nil, apperr.New(apperr.CodexParseError, "%s", perr2.Error())
	}
	return val2, nil
}

// resolveSessionID applies the session-id resolution rule: the thread's
// reported id wins when non-empty, else the caller-supplied id.
func resolveSessionID(threadID, callerID string) (string, error) {
	if threadID != "" {
		return threadID, nil
	}
	if callerID != "" {
		return callerID, nil
	}
	return "", apperr.New(apperr.CodexParseError, "missing session ID")
}

// PlanRequest carries a review_plan call's arguments.
type PlanRequest struct {
	Plan      string
	Context   string
	Focus     []string
	Depth     string
	SessionID string
}

// ReviewPlan runs a single-turn plan review; plan reviews are never chunked.
func (c *Client) ReviewPlan(ctx context.Context, req PlanRequest) (*models.PlanReviewResult, error) {
	thread, err := c.startOrResume(req.SessionID)
	if err != nil {
		return nil, err
	}

	depth := req.Depth
	if depth == "" {
		depth = c.cfg.Plan.Depth
	}
	focus := req.Focus
	if len(focus) == 0 {
		focus = c.cfg.Plan.Focus
	}

	p := prompt.BuildPlanPrompt(prompt.PlanInput{
		Plan:           req.Plan,
		Context:        req.Context,
		Focus:          focus,
		Depth:          depth,
		ProjectContext: c.cfg.ProjectContext,
	})

	result, err := runValidated(c, ctx, thread, p, validate.Plan)
	if err != nil {
		return nil, err
	}

	sid, err := resolveSessionID(thread.ID(), req.SessionID)
	if err != nil {
		return nil, err
	}
	result.SessionID = sid
	return result, nil
}

// CodeRequest carries a review_code call's arguments.
type CodeRequest struct {
	Diff      string
	Context   string
	Criteria  []string
	SessionID string
}

// chunkBudget computes the per-chunk diff token budget by reserving space
// for the fixed prompt scaffolding, the project context, and every
// variable section (context, criteria, checklist, ...) the caller folds
// into every chunk's prompt, so a large checklist or criteria list shrinks
// the room left for diff text the same way a large context does.
func (c *Client) chunkBudget(sections ...[]string) int {
	variable := chunk.Tokens(c.cfg.ProjectContext)
	for _, s := range sections {
		variable += chunk.Tokens(joinLines(s))
	}
	budget := c.cfg.MaxChunkTokens - fixedOverheadTokens - variable
	if budget < minChunkBudget {
		budget = minChunkBudget
	}
	return budget
}

func joinLines(lines []string) string {
	var out string
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// ReviewCode runs a (possibly chunked) code review and merges results under
// the verdict-precedence and finding-dedup policy.
func (c *Client) ReviewCode(ctx context.Context, req CodeRequest) (*models.CodeReviewResult, error) {
	budget := c.chunkBudget([]string{req.Context}, req.Criteria)
	chunks := chunk.Chunk(req.Diff, budget)

	if len(chunks) == 0 {
		return &models.CodeReviewResult{
			Verdict:   models.CodeApprove,
			Summary:   "No changes to review.",
			Findings:  []models.Finding{},
			SessionID: req.SessionID,
		}, nil
	}

	criteria := req.Criteria
	if len(criteria) == 0 {
		criteria = c.cfg.Code.Criteria
	}

	if len(chunks) == 1 {
		thread, err := c.startOrResume(req.SessionID)
		if err != nil {
			return nil, err
		}
		p := prompt.BuildCodePrompt(prompt.CodeInput{
			Diff:           chunks[0],
			Context:        req.Context,
			Criteria:       criteria,
			ProjectContext: c.cfg.ProjectContext,
			RequireTests:   c.cfg.Code.RequireTests,
		})
		result, err := runValidated(c, ctx, thread, p, validate.Code)
		if err != nil {
			return nil, err
		}
		sid, err := resolveSessionID(thread.ID(), req.SessionID)
		if err != nil {
			return nil, err
		}
		result.SessionID = sid
		return result, nil
	}

	var results []*models.CodeReviewResult
	lastThreadID := ""
	for i, chunkText := range chunks {
		var thread sdkThread
		var err error
		if i == 0 {
			thread, err = c.startOrResume(req.SessionID)
		} else {
			thread, err = c.sdk.ResumeThread(lastThreadID, c.threadOpts())
		}
		if err != nil {
			return nil, err
		}

		p := prompt.BuildCodePrompt(prompt.CodeInput{
			Diff:           chunkText,
			Context:        req.Context,
			Criteria:       criteria,
			ProjectContext: c.cfg.ProjectContext,
			RequireTests:   c.cfg.Code.RequireTests,
			ChunkIndex:     i + 1,
			ChunkTotal:     len(chunks),
		})
		result, err := runValidated(c, ctx, thread, p, validate.Code)
		if err != nil {
			return nil, err
		}
		lastThreadID = thread.ID()
		results = append(results, result)
	}

	merged := mergeCode(results)
	n := len(chunks)
	merged.ChunksReviewed = &n
	merged.SessionID = lastThreadID
	return merged, nil
}

// mergeCode implements the multi-chunk code merge policy.
func mergeCode(results []*models.CodeReviewResult) *models.CodeReviewResult {
	merged := &models.CodeReviewResult{Verdict: models.CodeApprove}

	type key struct {
		file, line, category string
	}
	keyedIndex := map[key]int{}
	var keyed []models.Finding
	var unkeyed []models.Finding

	var summaries []string
	for _, r := range results {
		merged.Verdict = models.WorstCodeVerdict(merged.Verdict, r.Verdict)
		if r.Summary != "" {
			summaries = append(summaries, r.Summary)
		}
		for _, f := range r.Findings {
			if f.File == nil || f.Line == nil {
				unkeyed = append(unkeyed, f)
				continue
			}
			k := key{file: *f.File, line: fmt.Sprintf("%d", *f.Line), category: f.Category}
			if idx, ok := keyedIndex[k]; ok {
				if models.RankCode(f.Severity) > models.RankCode(keyed[idx].Severity) {
					keyed[idx] = f
				}
				continue
			}
			keyedIndex[k] = len(keyed)
			keyed = append(keyed, f)
		}
	}

	merged.Summary = joinWithSpace(summaries)
	merged.Findings = append(keyed, unkeyed...)
	if merged.Findings == nil {
		merged.Findings = []models.Finding{}
	}
	return merged
}

func joinWithSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// PrecommitRequest carries a review_precommit call's arguments.
type PrecommitRequest struct {
	Diff      string
	SessionID string
	Checklist []string
}

// ReviewPrecommit runs a (possibly chunked) precommit review.
func (c *Client) ReviewPrecommit(ctx context.Context, req PrecommitRequest) (*models.PrecommitResult, error) {
	budget := c.chunkBudget(req.Checklist)
	chunks := chunk.Chunk(req.Diff, budget)

	if len(chunks) == 0 {
		return &models.PrecommitResult{
			ReadyToCommit: true,
			Blockers:      []string{},
			Warnings:      []string{},
			SessionID:     req.SessionID,
		}, nil
	}

	blockOn := c.cfg.Precommit.BlockOn

	if len(chunks) == 1 {
		thread, err := c.startOrResume(req.SessionID)
		if err != nil {
			return nil, err
		}
		p := prompt.BuildPrecommitPrompt(prompt.PrecommitInput{
			Diff:           chunks[0],
			Checklist:      req.Checklist,
			ProjectContext: c.cfg.ProjectContext,
			BlockOn:        blockOn,
		})
		result, err := runValidated(c, ctx, thread, p, validate.Precommit)
		if err != nil {
			return nil, err
		}
		sid, err := resolveSessionID(thread.ID(), req.SessionID)
		if err != nil {
			return nil, err
		}
		result.SessionID = sid
		if result.Blockers == nil {
			result.Blockers = []string{}
		}
		if result.Warnings == nil {
			result.Warnings = []string{}
		}
		return result, nil
	}

	var results []*models.PrecommitResult
	lastThreadID := ""
	for i, chunkText := range chunks {
		var thread sdkThread
		var err error
		if i == 0 {
			thread, err = c.startOrResume(req.SessionID)
		} else {
			thread, err = c.sdk.ResumeThread(lastThreadID, c.threadOpts())
		}
		if err != nil {
			return nil, err
		}

		p := prompt.BuildPrecommitPrompt(prompt.PrecommitInput{
			Diff:           chunkText,
			Checklist:      req.Checklist,
			ProjectContext: c.cfg.ProjectContext,
			BlockOn:        blockOn,
			ChunkIndex:     i + 1,
			ChunkTotal:     len(chunks),
		})
		result, err := runValidated(c, ctx, thread, p, validate.Precommit)
		if err != nil {
			return nil, err
		}
		lastThreadID = thread.ID()
		results = append(results, result)
	}

	merged := mergePrecommit(results)
	n := len(chunks)
	merged.ChunksReviewed = &n
	merged.SessionID = lastThreadID
	return merged, nil
}

func mergePrecommit(results []*models.PrecommitResult) *models.PrecommitResult {
	merged := &models.PrecommitResult{ReadyToCommit: true, Blockers: []string{}, Warnings: []string{}}
	for _, r := range results {
		if !r.ReadyToCommit {
			merged.ReadyToCommit = false
		}
		merged.Blockers = append(merged.Blockers, r.Blockers...)
		merged.Warnings = append(merged.Warnings, r.Warnings...)
	}
	return merged
}
