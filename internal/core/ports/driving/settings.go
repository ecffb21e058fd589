package driving

import (
	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider. An empty
	// model selects the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetCompletionProvider configures the completion provider. An empty
	// model selects the provider default.
	SetCompletionProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that the configured providers are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
