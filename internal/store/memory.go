package store

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reviewbridge/reviewbridge/internal/models"
)

// MemoryStore is the in-process fallback used when the configured SQLite
// path cannot be opened. It satisfies Store but does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	reviews  []*models.ReviewLogEntry
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }
func (m *MemoryStore) Close() error                  { return nil }

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func (m *MemoryStore) GetOrCreate(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return cloneSession(s), nil
	}
	s := &models.Session{SessionID: id, Status: models.SessionInProgress, CreatedAt: time.Now().UTC()}
	m.sessions[id] = s
	return cloneSession(s), nil
}

func (m *MemoryStore) Activate(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &models.Session{SessionID: id, CreatedAt: time.Now().UTC()}
		m.sessions[id] = s
	}
	s.Status = models.SessionInProgress
	s.CompletedAt = nil
	return cloneSession(s), nil
}

func (m *MemoryStore) markStatus(id string, status models.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil // no-op on missing id
	}
	now := time.Now().UTC()
	s.Status = status
	s.CompletedAt = &now
	return nil
}

func (m *MemoryStore) MarkCompleted(_ context.Context, id string) error {
	return m.markStatus(id, models.SessionCompleted)
}

func (m *MemoryStore) MarkFailed(_ context.Context, id string) error {
	return m.markStatus(id, models.SessionFailed)
}

func (m *MemoryStore) Lookup(_ context.Context, id string) (*models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false, nil
	}
	return cloneSession(s), true, nil
}

func (m *MemoryStore) SaveReview(_ context.Context, entry *models.ReviewLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	cp.ID = ulid.Make().String()
	cp.Timestamp = time.Now().UTC()
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m *MemoryStore) ReviewsBySession(_ context.Context, id string) ([]*models.ReviewLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.ReviewLogEntry, 0)
	for _, r := range m.reviews {
		if r.SessionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) RecentReviews(_ context.Context, n int) ([]*models.ReviewLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.ReviewLogEntry, 0, n)
	for i := len(m.reviews) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.reviews[i])
	}
	return out, nil
}
