package domain

// TurnResult is the outcome of one dialogue turn.
type TurnResult struct {
	// Response is the assistant message, verbatim from the completion
	// service.
	Response string `json:"response"`

	// State is the session's conversation state after analysis.
	State *ConversationState `json:"state"`

	// History is the full message history including the new user message
	// and the assistant response.
	History []Message `json:"history"`

	// Documents is the evidence set used for this turn, possibly reused
	// from session memory.
	Documents []ScoredRecord `json:"documents,omitempty"`
}
