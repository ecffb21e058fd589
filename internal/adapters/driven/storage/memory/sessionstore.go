// Package memory provides in-memory store implementations for tests and
// for running without persistence.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps serialized conversation state in a map. State is
// stored as a JSON blob so callers cannot mutate stored state through
// retained pointers, matching the persistent implementations.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]byte),
	}
}

// Save writes the state for a session, replacing any previous blob.
func (s *SessionStore) Save(_ context.Context, sessionID string, state *domain.ConversationState) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = blob
	return nil
}

// Load reads the state for a session.
func (s *SessionStore) Load(_ context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	blob, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes the state for a session. Deleting a missing session is
// not an error.
func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// List returns the ids of all stored sessions.
func (s *SessionStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close releases resources.
func (s *SessionStore) Close() error {
	return nil
}
