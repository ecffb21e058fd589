package driving

import (
	"context"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// AssistantService is the dialogue surface: one entry point per turn plus
// session-state management.
type AssistantService interface {
	// Turn produces the next assistant message for a session. The given
	// history must not include the new user message; Turn appends it.
	Turn(ctx context.Context, sessionID string, history []domain.Message, message string) (domain.TurnResult, error)

	// GetState returns the session's conversation state.
	GetState(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// ResolveContradiction marks a contradiction as resolved with an
	// explanation. Index is the position within the state's slice.
	ResolveContradiction(ctx context.Context, sessionID string, index int, resolution string) error

	// Draft produces a structured proposal draft from the accumulated
	// session state and evidence.
	Draft(ctx context.Context, sessionID string, history []domain.Message) (string, error)

	// ClearSession drops the session's state and memory. The next turn
	// under the same id starts a fresh session.
	ClearSession(ctx context.Context, sessionID string) error

	// Sessions lists ids with persisted state.
	Sessions(ctx context.Context) ([]string, error)
}
