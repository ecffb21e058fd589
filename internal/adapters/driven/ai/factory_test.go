package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates throttled service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "mock provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderMock,
			},
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil:     true,
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider is treated as unconfigured",
			settings: &domain.EmbeddingSettings{
				Provider: "clippy",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}

			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				require.NotNil(t, svc)
				svc.Close()
			}
		})
	}
}

func TestCreateEmbeddingService_OllamaDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "mxbai-embed-large",
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	defer svc.Close()

	assert.Equal(t, 1024, svc.Dimensions())
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("unconfigured settings returns nil without pinging", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("mock provider pings and validates", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderMock,
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Close()
	})

	t.Run("creation failure wraps unavailable sentinel", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "test-key",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "agora config")
	})
}

func TestCreateAndValidateCompletionService_Unconfigured(t *testing.T) {
	svc, err := CreateAndValidateCompletionService(&domain.CompletionSettings{})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateCompletionService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.CompletionSettings
		wantNil  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.CompletionSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.CompletionSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.CompletionSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.CompletionSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name: "cloud provider without key is unconfigured",
			settings: &domain.CompletionSettings{
				Provider: domain.AIProviderAnthropic,
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateCompletionService(tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				require.NotNil(t, svc)
				svc.Close()
			}
		})
	}
}
