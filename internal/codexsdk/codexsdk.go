// Package codexsdk adapts an opaque, thread-oriented review API
// (new_client/start_thread/resume_thread/thread.run) onto
// github.com/anthropics/anthropic-sdk-go, whose Messages API is stateless
// and has no server-side conversation concept. Thread state is kept
// in-process, keyed by a generated id, around a single stateless
// anthropic.Client that builds a system/user prompt pair per call.
package codexsdk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
)

// ThreadOptions mirrors the vendor SDK's thread construction options.
type ThreadOptions struct {
	Model                string
	SandboxMode          string
	SkipGitRepoCheck     bool
	ModelReasoningEffort string
}

// RunOptions carries per-turn options to Thread.Run.
type RunOptions struct {
	OutputSchema   string // not read by Run; the prompt text itself carries the response shape
	TimeoutSeconds int    // the deadline ctx was derived from, for the CODEX_TIMEOUT message
}

// RunResult is the vendor SDK's thread.run() return shape.
type RunResult struct {
	FinalResponse string
}

type threadState struct {
	id       string
	messages []anthropic.MessageParam
	system   string
}

// Client owns the vendor SDK handle. Construction can fail (missing/invalid
// credential), classified through the §7 taxonomy like every other call.
type Client struct {
	api     *anthropic.Client
	model   anthropic.Model
	threads sync.Map // id -> *threadState
}

// NewClient constructs the vendor SDK handle. An empty apiKey is classified
// as AUTH_ERROR rather than deferred to the first call.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.New(apperr.AuthError, "missing Anthropic API key")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &c, model: anthropic.Model(model)}, nil
}

// Thread is a short-lived handle to a conversation keyed by id; per
// spec design notes, there is no in-process cache of thread objects beyond
// the state needed to resume it.
type Thread struct {
	client *Client
	state  *threadState
}

// ID is the thread's reported id, matching the vendor SDK's thread.id field.
func (t *Thread) ID() string { return t.state.id }

// StartThread allocates a fresh thread with empty history.
func (c *Client) StartThread(opts ThreadOptions) (*Thread, error) {
	id := uuid.NewString()
	state := &threadState{id: id, system: systemPreamble(opts)}
	c.threads.Store(id, state)
	return &Thread{client: c, state: state}, nil
}

// ResumeThread looks up a previously started thread. A miss is
// SESSION_NOT_FOUND.
func (c *Client) ResumeThread(id string, opts ThreadOptions) (*Thread, error) {
	v, ok := c.threads.Load(id)
	if !ok {
		return nil, apperr.New(apperr.SessionNotFound, "no such reviewer thread: %s", id)
	}
	state := v.(*threadState)
	return &Thread{client: c, state: state}, nil
}

func systemPreamble(opts ThreadOptions) string {
	return fmt.Sprintf(
		"You are operating with sandbox_mode=%s, skip_git_repo_check=%t, reasoning_effort=%s. "+
			"Follow the response-shape instructions in each user turn exactly.",
		opts.SandboxMode, opts.SkipGitRepoCheck, opts.ModelReasoningEffort,
	)
}

// Run issues one prompt/response exchange on the thread. ctx carries the
// per-turn deadline; a context deadline is classified as CODEX_TIMEOUT
// rather than a generic transport error.
func (t *Thread) Run(ctx context.Context, prompt string, opts RunOptions) (*RunResult, error) {
	pending := append(append([]anthropic.MessageParam{}, t.state.messages...),
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	msg, err := t.client.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     t.client.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: t.state.system},
		},
		Messages: pending,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.New(apperr.CodexTimeout, "review timed out after %ds", opts.TimeoutSeconds)
		}
		return nil, apperr.Classify(err, string(t.client.model))
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, apperr.New(apperr.CodexParseError, "no text content in response")
	}

	// Only commit the exchange to thread state once both turns exist, so a
	// resumed thread never sees two consecutive user messages.
	t.state.messages = append(pending, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))

	return &RunResult{FinalResponse: stripFencing(text)}, nil
}

// stripFencing removes a wrapping ```json ... ``` (or bare ```) fence
// before json.Unmarshal.
func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) < 2 {
		return text
	}
	text = lines[1]
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
