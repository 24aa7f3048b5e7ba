package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/store"
)

func TestRecordSuccess_CompletesPreflightIDNotResultID(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	// Caller asked to resume "caller-x" but the reviewer created a new
	// thread "thread-y" (scenario S6).
	tr := New(ctx, s)
	tr.Preflight("caller-x")

	entry := &models.ReviewLogEntry{SessionID: "thread-y", Type: models.KindCode, Verdict: "approve", FindingsJSON: "[]"}
	tr.RecordSuccess("thread-y", entry)

	sess, ok, err := s.Lookup(ctx, "caller-x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, sess.Status)

	// The reviewer's own thread id was never separately tracked.
	_, ok, err = s.Lookup(ctx, "thread-y")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSuccess_NoPreflightUsesResultID(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	tr := New(ctx, s)
	entry := &models.ReviewLogEntry{SessionID: "thread_abc", Type: models.KindPlan, Verdict: "approve", FindingsJSON: "[]"}
	tr.RecordSuccess("thread_abc", entry)

	sess, ok, err := s.Lookup(ctx, "thread_abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, sess.Status)
}

func TestRecordFailure_SkippedWhenPreflightFailed(t *testing.T) {
	tr := New(context.Background(), nil)
	tr.Preflight("x") // no store: hasPre stays false
	tr.RecordFailure()
	// No panic, nothing to assert against a nil store: the point is safety.
}

func TestNilStoreIsNoop(t *testing.T) {
	tr := New(context.Background(), nil)
	tr.Preflight("x")
	tr.RecordSuccess("y", &models.ReviewLogEntry{})
	tr.RecordFailure()
	tr.RecordFailureBestEffort()
}
