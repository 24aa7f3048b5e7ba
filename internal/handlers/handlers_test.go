package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
	"github.com/reviewbridge/reviewbridge/internal/store"
)

type fakeGit struct {
	diff string
	err  error
}

func (f fakeGit) StagedDiff(string) (string, error) { return f.diff, f.err }

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

// An empty-diff request exercises the reviewer's synthetic no-SDK-call path,
// so these tests never need a live vendor SDK handle.
func newTestHandlers(t *testing.T, g fakeGit) (*Handlers, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	rev := reviewer.New(nil, models.DefaultConfig())
	return New(rev, st, g, "/repo"), st
}

func TestReviewCode_EmptyDiffRecordsSuccessAgainstPreflightID(t *testing.T) {
	h, st := newTestHandlers(t, fakeGit{})

	result, err := h.ReviewCode(context.Background(), reviewer.CodeRequest{
		Diff:      "",
		SessionID: "caller-session",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CodeApprove, result.Verdict)

	sess, ok, err := st.Lookup(context.Background(), "caller-session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, sess.Status)

	entries, err := st.ReviewsBySession(context.Background(), "caller-session")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindCode, entries[0].Type)
}

func TestReviewPrecommit_NoStagedChanges_ToolCallSurfaceIsNonError(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{diff: ""})

	result, err := h.ReviewPrecommit(context.Background(), PrecommitInput{SessionID: "s1"}, ToolCallSurface)
	require.NoError(t, err)
	assert.False(t, result.ReadyToCommit)
	assert.Equal(t, []string{"No staged changes found"}, result.Warnings)
	assert.Equal(t, "s1", result.SessionID)
}

func TestReviewPrecommit_NoStagedChanges_CLISurfaceIsError(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{diff: ""})

	_, err := h.ReviewPrecommit(context.Background(), PrecommitInput{SessionID: "s1"}, CLISurface)
	require.Error(t, err)
}

func TestReviewPrecommit_ExplicitEmptyDiffBypassesResolver(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{diff: "should be ignored"})

	result, err := h.ReviewPrecommit(context.Background(), PrecommitInput{Diff: strp(""), SessionID: "s1"}, ToolCallSurface)
	require.NoError(t, err)
	assert.True(t, result.ReadyToCommit)
}

func TestReviewPrecommit_GitErrorPropagates(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{err: errors.New("boom")})

	_, err := h.ReviewPrecommit(context.Background(), PrecommitInput{SessionID: "s1"}, ToolCallSurface)
	require.Error(t, err)
}

func TestStatus_NotFound(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{})

	resp, err := h.Status(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "not_found", resp.Status)
}

func TestStatus_CompletedHasElapsedSeconds(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{})
	_, err := h.ReviewCode(context.Background(), reviewer.CodeRequest{Diff: "", SessionID: "s2"})
	require.NoError(t, err)

	resp, err := h.Status(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.ElapsedSeconds)
}

func TestHistory_BySessionAndRecent(t *testing.T) {
	h, _ := newTestHandlers(t, fakeGit{})
	_, err := h.ReviewCode(context.Background(), reviewer.CodeRequest{Diff: "", SessionID: "a"})
	require.NoError(t, err)
	_, err = h.ReviewCode(context.Background(), reviewer.CodeRequest{Diff: "", SessionID: "b"})
	require.NoError(t, err)

	bySession, err := h.History(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Len(t, bySession.Reviews, 1)

	n := 1
	recent, err := h.History(context.Background(), "", &n)
	require.NoError(t, err)
	require.Len(t, recent.Reviews, 1)
	assert.Equal(t, "b", recent.Reviews[0].SessionID)
}
