package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderMock is the deterministic offline embedder, for demos and
	// air-gapped use. Embeddings only.
	AIProviderMock AIProvider = "mock"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderMock:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs without network access to a
// hosted API.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderMock:
		return "Mock (offline, deterministic)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles calls to hosted providers. Zero applies
	// the adapter default; ignored for local providers.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// CompletionSettings holds completion provider configuration.
type CompletionSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the completion provider is set up.
func (c CompletionSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// AssistantSettings holds orchestrator tuning.
type AssistantSettings struct {
	// SessionTTLMinutes bounds reuse of a prior turn's evidence set.
	SessionTTLMinutes int

	// SearchLimit caps documents retrieved per turn.
	SearchLimit int

	// Threshold is the similarity floor for retrieval. Zero applies the
	// index default.
	Threshold float64

	// Temperature is passed to the completion provider.
	Temperature float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Completion holds completion provider settings.
	Completion CompletionSettings

	// Assistant holds orchestrator settings.
	Assistant AssistantSettings

	// ChunkSize is the indexing window size in characters.
	ChunkSize int

	// ChunkOverlap is the indexing window overlap in characters.
	ChunkOverlap int
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them via 'agora config'.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding:  EmbeddingSettings{},
		Completion: CompletionSettings{},
		Assistant: AssistantSettings{
			SessionTTLMinutes: 30,
			SearchLimit:       5,
			Temperature:       0.7,
		},
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMock,
	}
}

// AllCompletionProviders returns providers that support completions.
func AllCompletionProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultCompletionModels returns default models for each completion provider.
func DefaultCompletionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
