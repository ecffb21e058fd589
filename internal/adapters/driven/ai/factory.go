// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/agora-labs/agora-cli/internal/adapters/driven/embedding"
	mockembed "github.com/agora-labs/agora-cli/internal/adapters/driven/embedding/mock"
	ollamaembed "github.com/agora-labs/agora-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/agora-labs/agora-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/agora-labs/agora-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/agora-labs/agora-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/agora-labs/agora-cli/internal/adapters/driven/llm/openai"
	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Returns nil without error when the provider is
// not configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'agora config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'agora config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateCompletionService creates a completion service and
// validates connectivity. Returns nil without error when the provider is
// not configured.
func CreateAndValidateCompletionService(settings *domain.CompletionSettings) (driven.CompletionService, error) {
	svc, err := CreateCompletionService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'agora config' to fix",
			domain.ErrCompletionUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'agora config' to fix",
			domain.ErrCompletionUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on
// settings. Hosted providers are wrapped with a request throttle. Returns
// nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAIEmbedding(settings)
		if err != nil {
			return nil, err
		}
		return embedding.NewThrottled(svc, settings.RequestsPerSecond), nil

	case domain.AIProviderMock:
		return mockembed.NewEmbeddingService(), nil

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateCompletionService creates the appropriate completion service based
// on settings. Returns nil if the provider is not configured.
func CreateCompletionService(settings *domain.CompletionSettings) (driven.CompletionService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaCompletion(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAICompletion(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicCompletion(settings)

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaCompletion creates an Ollama completion service.
func createOllamaCompletion(settings *domain.CompletionSettings) driven.CompletionService {
	return ollamallm.NewCompletionService(ollamallm.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAICompletion creates an OpenAI completion service.
func createOpenAICompletion(settings *domain.CompletionSettings) (driven.CompletionService, error) {
	return openaillm.NewCompletionService(openaillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicCompletion creates an Anthropic completion service.
func createAnthropicCompletion(settings *domain.CompletionSettings) (driven.CompletionService, error) {
	return anthropicllm.NewCompletionService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
