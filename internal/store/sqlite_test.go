package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, first.Status)
	assert.Nil(t, first.CompletedAt)

	second, err := s.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, 0)
}

func TestActivate_ReactivatesCompletedSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.GetOrCreate(ctx, "sess-2")
	require.NoError(t, err)
	require.NoError(t, s.MarkCompleted(ctx, "sess-2"))

	completed, ok, err := s.Lookup(ctx, "sess-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	reactivated, err := s.Activate(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, reactivated.Status)
	assert.Nil(t, reactivated.CompletedAt)
	assert.WithinDuration(t, created.CreatedAt, reactivated.CreatedAt, 0)
}

func TestMarkFailed_NoopOnMissingID(t *testing.T) {
	s := newTestStore(t)
	err := s.MarkFailed(context.Background(), "does-not-exist")
	assert.NoError(t, err)
}

func TestLookup_Absent(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Lookup(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewLog_SaveAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreate(ctx, "sess-3")
	require.NoError(t, err)

	entry := &models.ReviewLogEntry{
		SessionID:    "sess-3",
		Type:         models.KindPlan,
		Verdict:      "approve",
		Summary:      "Plan looks solid",
		FindingsJSON: "[]",
	}
	require.NoError(t, s.SaveReview(ctx, entry))

	bySession, err := s.ReviewsBySession(ctx, "sess-3")
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, models.KindPlan, bySession[0].Type)

	unknown, err := s.ReviewsBySession(ctx, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	recent, err := s.RecentReviews(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
