package services

import (
	"fmt"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
	"github.com/agora-labs/agora-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedRate       = "embedding.requests_per_second"
	keyCompProvider    = "completion.provider"
	keyCompModel       = "completion.model"
	keyCompBaseURL     = "completion.base_url"
	keyCompAPIKey      = "completion.api_key"
	keySessionTTL      = "assistant.session_ttl_minutes"
	keySearchLimit     = "assistant.search_limit"
	keySearchThreshold = "assistant.threshold"
	keyTemperature     = "assistant.temperature"
	keyChunkSize       = "index.chunk_size"
	keyChunkOverlap    = "index.chunk_overlap"
)

// SettingsService manages application settings on top of the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
		},
		Completion: domain.CompletionSettings{
			Provider: s.getProvider(keyCompProvider, defaults.Completion.Provider),
			Model:    s.getString(keyCompModel, defaults.Completion.Model),
			BaseURL:  s.configStore.GetString(keyCompBaseURL),
			APIKey:   s.configStore.GetString(keyCompAPIKey),
		},
		Assistant: domain.AssistantSettings{
			SessionTTLMinutes: s.getInt(keySessionTTL, defaults.Assistant.SessionTTLMinutes),
			SearchLimit:       s.getInt(keySearchLimit, defaults.Assistant.SearchLimit),
			Threshold:         s.configStore.GetFloat(keySearchThreshold),
			Temperature:       s.getFloat(keyTemperature, defaults.Assistant.Temperature),
		},
		ChunkSize:    s.getInt(keyChunkSize, defaults.ChunkSize),
		ChunkOverlap: s.getInt(keyChunkOverlap, defaults.ChunkOverlap),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedRate, settings.Embedding.RequestsPerSecond); err != nil {
		return fmt.Errorf("save embedding requests_per_second: %w", err)
	}

	if err := s.configStore.Set(keyCompProvider, settings.Completion.Provider.String()); err != nil {
		return fmt.Errorf("save completion provider: %w", err)
	}
	if err := s.configStore.Set(keyCompModel, settings.Completion.Model); err != nil {
		return fmt.Errorf("save completion model: %w", err)
	}
	if err := s.configStore.Set(keyCompBaseURL, settings.Completion.BaseURL); err != nil {
		return fmt.Errorf("save completion base_url: %w", err)
	}
	if settings.Completion.APIKey != "" {
		if err := s.configStore.Set(keyCompAPIKey, settings.Completion.APIKey); err != nil {
			return fmt.Errorf("save completion api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keySessionTTL, settings.Assistant.SessionTTLMinutes); err != nil {
		return fmt.Errorf("save session ttl: %w", err)
	}
	if err := s.configStore.Set(keySearchLimit, settings.Assistant.SearchLimit); err != nil {
		return fmt.Errorf("save search limit: %w", err)
	}
	if err := s.configStore.Set(keySearchThreshold, settings.Assistant.Threshold); err != nil {
		return fmt.Errorf("save search threshold: %w", err)
	}
	if err := s.configStore.Set(keyTemperature, settings.Assistant.Temperature); err != nil {
		return fmt.Errorf("save temperature: %w", err)
	}
	if err := s.configStore.Set(keyChunkSize, settings.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.ChunkOverlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrConfiguration, provider)
	}

	supported := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrConfiguration, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.APIKey = apiKey

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	return s.Save(settings)
}

// SetCompletionProvider configures the completion provider.
func (s *SettingsService) SetCompletionProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid completion provider %q", domain.ErrConfiguration, provider)
	}

	supported := false
	for _, p := range domain.AllCompletionProviders() {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: provider %s does not support completions", domain.ErrConfiguration, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Completion.Provider = provider
	settings.Completion.APIKey = apiKey

	if model != "" {
		settings.Completion.Model = model
	} else if defaultModel, ok := domain.DefaultCompletionModels()[provider]; ok {
		settings.Completion.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.Completion.BaseURL == "" {
			settings.Completion.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Completion.BaseURL = ""
	}

	return s.Save(settings)
}

// Validate checks that the configured providers are usable together.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not fully configured",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if settings.Completion.Provider != "" && !settings.Completion.IsConfigured() {
		return fmt.Errorf("%w: completion provider %s is not fully configured",
			domain.ErrConfiguration, settings.Completion.Provider)
	}
	if settings.ChunkOverlap >= settings.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrConfiguration, settings.ChunkOverlap, settings.ChunkSize)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
