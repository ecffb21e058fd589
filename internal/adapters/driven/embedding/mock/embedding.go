// Package mock provides a deterministic, offline embedding service for
// tests and demos. Vectors are built from the set of unique tokens in the
// text, so cosine similarity reflects token overlap: identical texts score
// 1.0 and disjoint texts score 0.0.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size of the mock embedder. Large enough
// that distinct tokens rarely collide in short texts.
const DefaultDimensions = 512

// EmbeddingService hashes each unique lower-cased token into a dimension
// bucket and normalizes the result to unit length.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a mock embedder with the default dimensions.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{dimensions: DefaultDimensions}
}

// Embed generates a deterministic unit vector from the text's token set.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, s.dimensions)

	for token := range tokenSet(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(s.dimensions)] = 1
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector, nil
}

// EmbedBatch embeds each text independently.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the mock model.
func (s *EmbeddingService) ModelName() string {
	return "mock-token-set"
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenSet returns the unique lower-cased alphanumeric tokens in text.
func tokenSet(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		tokens[field] = struct{}{}
	}
	return tokens
}
