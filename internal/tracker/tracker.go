// Package tracker couples a single request's lifecycle to session-store
// mutations. Storage failures are logged and swallowed: they must never
// turn a successful review into a failure.
package tracker

import (
	"context"
	"log/slog"

	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/store"
)

// Tracker is a request-scoped coordinator. Construction with a nil store
// yields a no-op tracker.
type Tracker struct {
	ctx    context.Context
	store  store.Store
	preID  string
	hasPre bool
}

// New builds a tracker bound to ctx and store. store may be nil.
func New(ctx context.Context, s store.Store) *Tracker {
	return &Tracker{ctx: ctx, store: s}
}

// Preflight activates the caller-supplied session id ahead of dispatching a
// reviewer turn, so the persisted state reflects "in progress" before the
// SDK call starts. A missing id is a no-op. A storage failure here is
// logged but does not set preID, so RecordFailure is skipped later. This
// avoids thrashing a row the caller no longer owns.
func (t *Tracker) Preflight(id string) {
	if t.store == nil || id == "" {
		return
	}
	if _, err := t.store.Activate(t.ctx, id); err != nil {
		slog.Warn("session preflight failed", "session_id", id, "error", err)
		return
	}
	t.preID = id
	t.hasPre = true
}

// RecordSuccess persists a completed review. Completion is always recorded
// against the preflight id when one exists, even when the reviewer returned
// a different id: the caller's observable session is the one it asked to
// resume.
func (t *Tracker) RecordSuccess(resultSessionID string, entry *models.ReviewLogEntry) {
	if t.store == nil {
		return
	}

	if !t.hasPre {
		if _, err := t.store.GetOrCreate(t.ctx, resultSessionID); err != nil {
			slog.Warn("get_or_create failed after successful review", "session_id", resultSessionID, "error", err)
		}
	}

	if err := t.store.SaveReview(t.ctx, entry); err != nil {
		slog.Warn("saving review log entry failed", "session_id", entry.SessionID, "error", err)
	}

	completeID := resultSessionID
	if t.hasPre {
		completeID = t.preID
	}
	if err := t.store.MarkCompleted(t.ctx, completeID); err != nil {
		slog.Warn("marking session completed failed", "session_id", completeID, "error", err)
	}
}

// RecordFailure marks the preflighted session failed. It is a no-op when
// preflight itself failed or was never attempted.
func (t *Tracker) RecordFailure() {
	if t.store == nil || !t.hasPre {
		return
	}
	if err := t.store.MarkFailed(t.ctx, t.preID); err != nil {
		slog.Warn("marking session failed failed", "session_id", t.preID, "error", err)
	}
}

// RecordFailureBestEffort is RecordFailure for the outermost catch clause:
// it never panics or returns an error, regardless of store state.
func (t *Tracker) RecordFailureBestEffort() {
	defer func() { _ = recover() }()
	t.RecordFailure()
}
