// Package handlers glues input to diff resolution, the reviewer client, the
// session tracker, and the review log: one handler per review kind, plus
// the read-only status/history handlers.
package handlers

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
	"github.com/reviewbridge/reviewbridge/internal/git"
	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
	"github.com/reviewbridge/reviewbridge/internal/store"
	"github.com/reviewbridge/reviewbridge/internal/tracker"
)

// Surface distinguishes the two front-ends' handling of the
// NO_STAGED_CHANGES sentinel.
type Surface int

const (
	ToolCallSurface Surface = iota
	CLISurface
)

// Handlers wires the review engine's collaborators together.
type Handlers struct {
	Reviewer *reviewer.Client
	Store    store.Store
	Git      git.Client
	RepoPath string
}

// New builds a Handlers value. store may be nil, in which case the tracker
// it constructs per-request is a no-op.
func New(rev *reviewer.Client, st store.Store, gitClient git.Client, repoPath string) *Handlers {
	return &Handlers{Reviewer: rev, Store: st, Git: gitClient, RepoPath: repoPath}
}

// runGuarded executes fn, converting a panic into UNKNOWN_ERROR and running
// the tracker's best-effort failure recording. The outermost catch for
// truly unexpected conditions.
func runGuarded(tr *tracker.Tracker, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tr.RecordFailureBestEffort()
			err = apperr.New(apperr.UnknownError, "%v", r)
		}
	}()
	return fn()
}

// ReviewPlan handles review_plan: no diff resolution, never chunked.
func (h *Handlers) ReviewPlan(ctx context.Context, req reviewer.PlanRequest) (*models.PlanReviewResult, error) {
	tr := tracker.New(ctx, h.Store)
	var result *models.PlanReviewResult

	err := runGuarded(tr, func() error {
		tr.Preflight(req.SessionID)

		r, err := h.Reviewer.ReviewPlan(ctx, req)
		if err != nil {
			tr.RecordFailure()
			return err
		}

		entry, mErr := logEntry(models.KindPlan, r.SessionID, string(r.Verdict), r.Summary, r.Findings)
		if mErr != nil {
			return mErr
		}
		tr.RecordSuccess(r.SessionID, entry)
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReviewCode handles review_code: no diff resolution, possibly chunked.
func (h *Handlers) ReviewCode(ctx context.Context, req reviewer.CodeRequest) (*models.CodeReviewResult, error) {
	tr := tracker.New(ctx, h.Store)
	var result *models.CodeReviewResult

	err := runGuarded(tr, func() error {
		tr.Preflight(req.SessionID)

		r, err := h.Reviewer.ReviewCode(ctx, req)
		if err != nil {
			tr.RecordFailure()
			return err
		}

		entry, mErr := logEntry(models.KindCode, r.SessionID, string(r.Verdict), r.Summary, r.Findings)
		if mErr != nil {
			return mErr
		}
		tr.RecordSuccess(r.SessionID, entry)
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PrecommitInput carries a review_precommit call's arguments before diff
// resolution.
type PrecommitInput struct {
	Diff      *string
	AutoDiff  *bool
	SessionID string
	Checklist []string
}

// ReviewPrecommit resolves the diff, then runs the (possibly chunked)
// precommit review. The NO_STAGED_CHANGES sentinel is a non-error response
// on the tool-call surface and a regular error on the CLI surface.
func (h *Handlers) ReviewPrecommit(ctx context.Context, in PrecommitInput, surface Surface) (*models.PrecommitResult, error) {
	diff, err := git.Resolve(h.Git, h.RepoPath, git.ResolveOptions{Diff: in.Diff, AutoDiff: in.AutoDiff})
	if err != nil {
		if errors.Is(err, git.ErrNoStagedChanges) {
			if surface == ToolCallSurface {
				return &models.PrecommitResult{
					ReadyToCommit: false,
					Blockers:      []string{},
					Warnings:      []string{"No staged changes found"},
					SessionID:     in.SessionID,
				}, nil
			}
			return nil, err
		}
		return nil, err
	}

	req := reviewer.PrecommitRequest{Diff: diff, SessionID: in.SessionID, Checklist: in.Checklist}

	tr := tracker.New(ctx, h.Store)
	var result *models.PrecommitResult

	runErr := runGuarded(tr, func() error {
		tr.Preflight(req.SessionID)

		r, err := h.Reviewer.ReviewPrecommit(ctx, req)
		if err != nil {
			tr.RecordFailure()
			return err
		}

		verdict := "ready"
		if !r.ReadyToCommit {
			verdict = "blocked"
		}
		entry, mErr := logEntry(models.KindPrecommit, r.SessionID, verdict, "", append(append([]string{}, r.Blockers...), r.Warnings...))
		if mErr != nil {
			return mErr
		}
		tr.RecordSuccess(r.SessionID, entry)
		result = r
		return nil
	})
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func logEntry(kind models.ReviewKind, sessionID, verdict, summary string, payload any) (*models.ReviewLogEntry, error) {
	findingsJSON, err := store.MarshalFindings(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.UnknownError, err, "")
	}
	return &models.ReviewLogEntry{
		SessionID:    sessionID,
		Type:         kind,
		Verdict:      verdict,
		Summary:      summary,
		FindingsJSON: findingsJSON,
	}, nil
}

// StatusResponse is the review_status response shape.
type StatusResponse struct {
	Status         string `json:"status"`
	SessionID      string `json:"session_id"`
	ElapsedSeconds *int   `json:"elapsed_seconds,omitempty"`
}

// Status reports a review session's lifecycle state and elapsed time.
func (h *Handlers) Status(ctx context.Context, id string) (*StatusResponse, error) {
	sess, ok, err := h.Store.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &StatusResponse{Status: "not_found", SessionID: id}, nil
	}

	now := time.Now().UTC()
	var elapsed float64
	switch {
	case sess.Status == models.SessionInProgress:
		elapsed = now.Sub(sess.CreatedAt).Seconds()
	case sess.CompletedAt != nil:
		elapsed = sess.CompletedAt.Sub(sess.CreatedAt).Seconds()
	default:
		elapsed = now.Sub(sess.CreatedAt).Seconds()
	}
	rounded := int(math.Round(elapsed))

	return &StatusResponse{Status: string(sess.Status), SessionID: id, ElapsedSeconds: &rounded}, nil
}

// HistoryResponse is the review_history response shape.
type HistoryResponse struct {
	Reviews []*models.ReviewLogEntry `json:"reviews"`
}

// History lists past review log entries, either for one session or the
// most recent entries across all sessions.
func (h *Handlers) History(ctx context.Context, sessionID string, lastN *int) (*HistoryResponse, error) {
	if sessionID != "" {
		entries, err := h.Store.ReviewsBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return &HistoryResponse{Reviews: entries}, nil
	}

	n := 10
	if lastN != nil {
		n = *lastN
	}
	entries, err := h.Store.RecentReviews(ctx, n)
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{Reviews: entries}, nil
}
