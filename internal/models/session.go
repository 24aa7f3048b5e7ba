package models

import "time"

// SessionStatus is the persisted lifecycle state of a review session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// Session is a persisted row in the sessions table. CompletedAt is non-nil
// iff Status is not SessionInProgress.
type Session struct {
	SessionID   string
	Status      SessionStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// ReviewLogEntry is a single append-only row in the reviews table. ID is a
// ULID, so lexicographic order matches creation order without a separate
// sequence.
type ReviewLogEntry struct {
	ID           string
	SessionID    string
	Type         ReviewKind
	Verdict      string
	Summary      string
	FindingsJSON string
	Timestamp    time.Time
}
