package driven

import (
	"context"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// CompletionService produces assistant text from a message sequence.
// Failures surface wrapped in domain.ErrCompletion and propagate to the
// caller untouched; there is no silent fallback text.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4 family)
//   - Ollama (local models)
type CompletionService interface {
	// Complete conducts a multi-turn conversation and returns the next
	// assistant message verbatim.
	Complete(ctx context.Context, messages []domain.Message, opts CompletionOptions) (string, error)

	// Generate produces a completion for a single prompt.
	Generate(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionOptions configures a completion call.
type CompletionOptions struct {
	// SystemPrompt is prepended as the system instruction.
	SystemPrompt string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}
