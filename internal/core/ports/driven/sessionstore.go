package driven

import (
	"context"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// SessionStore persists per-session conversation state across process
// restarts. Each session is one plain structured blob keyed by session id.
type SessionStore interface {
	// Save writes the state for a session, replacing any previous blob.
	Save(ctx context.Context, sessionID string, state *domain.ConversationState) error

	// Load reads the state for a session.
	// Returns domain.ErrSessionNotFound when no blob exists.
	Load(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// Delete removes the state for a session. Deleting a missing session
	// is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of all persisted sessions.
	List(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
