package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
	"github.com/reviewbridge/reviewbridge/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
// ":memory:" is accepted.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors from concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order, then best-effort
// adds the completed_at column in case an earlier version of the table
// shape lacks it (§4.5's schema-migration note). Both steps are safe to run
// on every open.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	// Best-effort: earlier deployments may have created sessions without
	// completed_at. SQLite has no "ADD COLUMN IF NOT EXISTS"; ignore the
	// "duplicate column" failure.
	_, _ = s.db.ExecContext(ctx, "ALTER TABLE sessions ADD COLUMN completed_at DATETIME")

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOrCreate(ctx context.Context, id string) (*models.Session, error) {
	if sess, ok, err := s.Lookup(ctx, id); err != nil {
		return nil, err
	} else if ok {
		return sess, nil
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, status, created_at) VALUES (?, 'in_progress', ?)`,
		id, now,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageError, err, "")
	}
	return &models.Session{SessionID: id, Status: models.SessionInProgress, CreatedAt: now}, nil
}

func (s *SQLiteStore) Activate(ctx context.Context, id string) (*models.Session, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, status, created_at, completed_at)
		VALUES (?, 'in_progress', ?, NULL)
		ON CONFLICT(session_id) DO UPDATE SET status = 'in_progress', completed_at = NULL
	`, id, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageError, err, "")
	}

	sess, ok, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.StorageError, "session %s vanished after activate", id)
	}
	return sess, nil
}

func (s *SQLiteStore) MarkCompleted(ctx context.Context, id string) error {
	return s.markStatus(ctx, id, models.SessionCompleted)
}

func (s *SQLiteStore) MarkFailed(ctx context.Context, id string) error {
	return s.markStatus(ctx, id, models.SessionFailed)
}

func (s *SQLiteStore) markStatus(ctx context.Context, id string, status models.SessionStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, completed_at = ? WHERE session_id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return apperr.Wrap(apperr.StorageError, err, "")
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, id string) (*models.Session, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, status, created_at, completed_at FROM sessions WHERE session_id = ?`, id)

	var sess models.Session
	var completedAt sql.NullTime
	if err := row.Scan(&sess.SessionID, &sess.Status, &sess.CreatedAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, apperr.Wrap(apperr.StorageError, err, "")
	}
	if completedAt.Valid {
		t := completedAt.Time
		sess.CompletedAt = &t
	}
	return &sess, true, nil
}

func (s *SQLiteStore) SaveReview(ctx context.Context, entry *models.ReviewLogEntry) error {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, session_id, type, verdict, summary, findings_json, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, entry.SessionID, entry.Type, entry.Verdict, entry.Summary, entry.FindingsJSON, time.Now().UTC())
	if err != nil {
		return apperr.Wrap(apperr.StorageError, err, "")
	}
	entry.ID = id
	return nil
}

func (s *SQLiteStore) ReviewsBySession(ctx context.Context, id string) ([]*models.ReviewLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, verdict, summary, findings_json, timestamp
		FROM reviews WHERE session_id = ? ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageError, err, "")
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (s *SQLiteStore) RecentReviews(ctx context.Context, n int) ([]*models.ReviewLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, verdict, summary, findings_json, timestamp
		FROM reviews ORDER BY id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageError, err, "")
	}
	defer rows.Close()
	return scanReviews(rows)
}

func scanReviews(rows *sql.Rows) ([]*models.ReviewLogEntry, error) {
	entries := make([]*models.ReviewLogEntry, 0)
	for rows.Next() {
		var e models.ReviewLogEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Verdict, &e.Summary, &e.FindingsJSON, &e.Timestamp); err != nil {
			return nil, apperr.Wrap(apperr.StorageError, err, "")
		}
		e.Type = models.ReviewKind(kind)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.StorageError, err, "")
	}
	return entries, nil
}

// MarshalFindings encodes findings as JSON for the ReviewLogEntry.FindingsJSON
// column; it is the only writer of that column's shape.
func MarshalFindings(findings any) (string, error) {
	b, err := json.Marshal(findings)
	if err != nil {
		return "", fmt.Errorf("marshal findings: %w", err)
	}
	return string(b), nil
}
