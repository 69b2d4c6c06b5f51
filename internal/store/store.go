// Package store persists translation sessions to SQLite so that finished
// work survives a process restart and the session list can be browsed later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pagelingo/pagelingo/internal/session"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open opens the SQLite database at path and applies migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema if it does not exist.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		done INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS session_pages (
		session_id TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		status TEXT NOT NULL,
		html TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (session_id, page_number),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SessionSummary is a listing row for a stored session.
type SessionSummary struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	TotalPages int       `json:"total_pages"`
	Done       int       `json:"done"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionRepository handles session persistence.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the full session snapshot, pages included.
func (r *SessionRepository) Save(ctx context.Context, snap session.Snapshot) error {
	query := `
		INSERT INTO sessions (id, state, total_pages, done, error, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			total_pages = excluded.total_pages,
			done = excluded.done,
			error = excluded.error,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.ID, string(snap.State), snap.TotalPages, snap.Done,
		snap.Error, snap.StartedAt, snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	for _, page := range snap.Pages {
		if err := r.upsertPage(ctx, snap.ID, page); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPage stores a single page result for a session.
func (r *SessionRepository) UpsertPage(ctx context.Context, sessionID string, page session.PageResult) error {
	return r.upsertPage(ctx, sessionID, page)
}

func (r *SessionRepository) upsertPage(ctx context.Context, sessionID string, page session.PageResult) error {
	query := `
		INSERT INTO session_pages (session_id, page_number, status, html, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, page_number) DO UPDATE SET
			status = excluded.status,
			html = excluded.html,
			error = excluded.error
	`
	_, err := r.db.ExecContext(ctx, query,
		sessionID, page.PageNumber, string(page.Status), page.HTML, page.Error,
	)
	if err != nil {
		return fmt.Errorf("save page %d: %w", page.PageNumber, err)
	}
	return nil
}

// GetByID retrieves a stored session with its pages.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*session.Snapshot, error) {
	query := `
		SELECT id, state, total_pages, done, error, started_at, updated_at
		FROM sessions WHERE id = ?
	`
	snap := &session.Snapshot{}
	var state string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&snap.ID, &state, &snap.TotalPages, &snap.Done,
		&snap.Error, &snap.StartedAt, &snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	snap.State = session.State(state)

	pages, err := r.loadPages(ctx, id)
	if err != nil {
		return nil, err
	}
	snap.Pages = pages
	return snap, nil
}

func (r *SessionRepository) loadPages(ctx context.Context, sessionID string) ([]session.PageResult, error) {
	query := `
		SELECT page_number, status, html, error
		FROM session_pages WHERE session_id = ?
		ORDER BY page_number
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	defer rows.Close()

	var pages []session.PageResult
	for rows.Next() {
		var page session.PageResult
		var status string
		if err := rows.Scan(&page.PageNumber, &status, &page.HTML, &page.Error); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		page.Status = session.Status(status)
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// List returns session summaries ordered by most recent activity.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, state, total_pages, done, started_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.State, &s.TotalPages, &s.Done, &s.StartedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
