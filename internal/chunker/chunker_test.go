package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, c.Size())
	assert.Equal(t, DefaultChunkOverlap, c.Overlap())
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero size", []Option{WithChunkSize(0)}},
		{"negative size", []Option{WithChunkSize(-10)}},
		{"negative overlap", []Option{WithOverlap(-1)}},
		{"overlap equals size", []Option{WithChunkSize(100), WithOverlap(100)}},
		{"overlap exceeds size", []Option{WithChunkSize(100), WithOverlap(150)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Nil(t, c.Chunk(""))
}

func TestChunk_ShortInput(t *testing.T) {
	c, err := New(WithChunkSize(100), WithOverlap(20))
	require.NoError(t, err)

	chunks := c.Chunk("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunk_WindowSizesAndStep(t *testing.T) {
	c, err := New(WithChunkSize(10), WithOverlap(3))
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk(text)

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "hijklmnopq", chunks[1])
	assert.Equal(t, "opqrstuvwx", chunks[2])
	assert.Equal(t, "vwxyz", chunks[3])

	// Consecutive chunks share exactly the overlap.
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1][len(chunks[i-1])-3:]
		assert.True(t, strings.HasPrefix(chunks[i], tail))
	}
}

func TestChunk_LosslessReconstruction(t *testing.T) {
	c, err := New(WithChunkSize(50), WithOverlap(10))
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// Dropping each chunk's leading overlap rebuilds the original exactly.
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		b.WriteString(chunk[c.Overlap():])
	}
	assert.Equal(t, text, b.String())
}

func TestChunk_ZeroOverlap(t *testing.T) {
	c, err := New(WithChunkSize(4), WithOverlap(0))
	require.NoError(t, err)

	chunks := c.Chunk("abcdefgh")
	require.Len(t, chunks, 2)
	assert.Equal(t, "abcd", chunks[0])
	assert.Equal(t, "efgh", chunks[1])
}
