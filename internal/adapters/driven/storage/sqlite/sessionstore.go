// Package sqlite provides a SessionStore backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "sessions.db"

// SessionStore persists conversation state per session as a JSON blob in a
// single table.
type SessionStore struct {
	db   *sql.DB
	path string
}

// NewSessionStore opens (and if needed creates) the database at
// dataDir/sessions.db with WAL mode for concurrent readers.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: session store directory is required", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DefaultFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SessionStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// migrate creates the sessions table if missing.
func (s *SessionStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

// Save writes the state for a session, replacing any previous blob.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.ConversationState) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, sessionID, string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads the state for a session.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes the state for a session. Deleting a missing session is
// not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, sessionID,
	); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns the ids of all persisted sessions, most recent first.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SessionStore) Path() string {
	return s.path
}
