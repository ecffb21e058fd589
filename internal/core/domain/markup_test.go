package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "a plain sentence",
			expected: "a plain sentence",
		},
		{
			name:     "html tags stripped",
			input:    "<p>Hello <strong>world</strong></p>",
			expected: "Hello world",
		},
		{
			name:     "markdown link keeps label",
			input:    "see [the proposal](https://forum.example/t/123) for details",
			expected: "see the proposal for details",
		},
		{
			name:     "headings stripped",
			input:    "# Title\n## Subtitle\nBody text",
			expected: "Title Subtitle Body text",
		},
		{
			name:     "emphasis markers stripped",
			input:    "this is *important* and _subtle_ and `code`",
			expected: "this is important and subtle and code",
		},
		{
			name:     "whitespace collapsed and trimmed",
			input:    "  too   many\n\nspaces  ",
			expected: "too many spaces",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanMarkup(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short text unchanged",
			input:    "brief",
			max:      10,
			expected: "brief",
		},
		{
			name:     "exact length unchanged",
			input:    "exact",
			max:      5,
			expected: "exact",
		},
		{
			name:     "long text cut with ellipsis",
			input:    "a longer sentence",
			max:      8,
			expected: "a longer...",
		},
		{
			name:     "multi-byte runes kept whole",
			input:    "prédit également",
			max:      9,
			expected: "prédit ég...",
		},
		{
			name:     "empty input",
			input:    "",
			max:      5,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("世界", 20)
	for max := 0; max < 12; max++ {
		assert.True(t, utf8.ValidString(Truncate(text, max)), "max %d", max)
	}
}
