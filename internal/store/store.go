// Package store persists review sessions and the review log. It defines a
// single Store interface with a SQLite-backed implementation and an
// in-memory fallback used when the configured database path cannot be
// opened.
package store

import (
	"context"

	"github.com/reviewbridge/reviewbridge/internal/models"
)

// Store is the persistence interface the session tracker and status/history
// handlers depend on.
type Store interface {
	// GetOrCreate returns the existing session row, or inserts one with
	// defaults (status=in_progress, completed_at=nil) and returns it.
	GetOrCreate(ctx context.Context, id string) (*models.Session, error)
	// Activate upserts status=in_progress, completed_at=NULL, preserving
	// created_at on a pre-existing row.
	Activate(ctx context.Context, id string) (*models.Session, error)
	// MarkCompleted sets status=completed, completed_at=now(). A missing id
	// is a no-op that still returns ok.
	MarkCompleted(ctx context.Context, id string) error
	// MarkFailed is MarkCompleted with status=failed.
	MarkFailed(ctx context.Context, id string) error
	// Lookup returns the session row, or ok=false if it does not exist.
	Lookup(ctx context.Context, id string) (*models.Session, bool, error)

	// SaveReview appends one review-log entry.
	SaveReview(ctx context.Context, entry *models.ReviewLogEntry) error
	// ReviewsBySession returns entries for id ordered by id ASC; unknown
	// session returns an empty slice, not an error.
	ReviewsBySession(ctx context.Context, id string) ([]*models.ReviewLogEntry, error)
	// RecentReviews returns the last n entries ordered by id DESC.
	RecentReviews(ctx context.Context, n int) ([]*models.ReviewLogEntry, error)

	Migrate(ctx context.Context) error
	Close() error
}
