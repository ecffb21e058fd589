// Package chunker splits long documents into overlapping fixed-size windows
// suitable for embedding.
package chunker

import (
	"fmt"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker slides a fixed-size window across document text, advancing by
// size minus overlap each step. The overlap preserves context across chunk
// boundaries; removing it reconstructs the original text exactly.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. An overlap that is not smaller than the chunk size
// would loop forever, so it is rejected here rather than clamped.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, c.size)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, c.overlap)
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrConfiguration, c.overlap, c.size)
	}

	return c, nil
}

// Size returns the configured window size in characters.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into overlapping windows. Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	step := c.size - c.overlap
	estimated := len(text)/step + 1
	chunks := make([]string, 0, estimated)

	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}

	return chunks
}
