package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/adapters/driven/embedding/mock"
	"github.com/agora-labs/agora-cli/internal/adapters/driven/storage/memory"
	"github.com/agora-labs/agora-cli/internal/chunker"
	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// End-to-end retrieval through the real token-set embedder: index a small
// corpus, then check that queries land on the right documents.
func TestSearch_TokenOverlapRetrieval(t *testing.T) {
	c, err := chunker.New(chunker.WithChunkSize(500), chunker.WithOverlap(50))
	require.NoError(t, err)
	svc := NewIndexService(mock.NewEmbeddingService(), memory.NewIndexStore(), c)
	ctx := context.Background()

	corpus := []struct {
		id   string
		text string
	}{
		{"staking-1", "how does staking work in this protocol"},
		{"staking-2", "staking rewards and how they work"},
		{"branding", "community branding and marketing plans"},
	}
	for _, doc := range corpus {
		_, err := svc.Add(ctx, doc.text, domain.RecordMetadata{Title: doc.id, Type: domain.RecordTypeForum})
		require.NoError(t, err)
	}

	hits, err := svc.Search(ctx, "How does staking work?", domain.SearchOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, hits)
	titles := make([]string, len(hits))
	for i, hit := range hits {
		titles[i] = hit.Metadata.Title
		assert.GreaterOrEqual(t, hit.Score, MinThreshold)
	}
	assert.Contains(t, titles, "staking-1")
	assert.NotContains(t, titles, "branding")
}

func TestSearch_NoMatchesStaysEmpty(t *testing.T) {
	c, err := chunker.New()
	require.NoError(t, err)
	svc := NewIndexService(mock.NewEmbeddingService(), nil, c)
	ctx := context.Background()

	_, err = svc.Add(ctx, "treasury diversification strategy", domain.RecordMetadata{})
	require.NoError(t, err)

	hits, err := svc.Search(ctx, "unrelated gardening question", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
