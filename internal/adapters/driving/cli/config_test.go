package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/agora-labs/agora-cli/internal/adapters/driven/config/file"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{name: "float", raw: "0.7", expected: 0.7},
		{name: "integer", raw: "10", expected: int64(10)},
		{name: "negative integer", raw: "-3", expected: int64(-3)},
		{name: "bool true", raw: "true", expected: true},
		{name: "bool false", raw: "false", expected: false},
		{name: "plain string", raw: "ollama", expected: "ollama"},
		{name: "numeric-looking model name", raw: "llama3.2", expected: "llama3.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseConfigValue(tt.raw))
		})
	}
}

func TestConfigSet_NumericValueReadableThroughTypedGetters(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, "--config-dir", dir, "config", "set", "assistant.threshold", "0.7")
	runCLI(t, "--config-dir", dir, "config", "set", "assistant.search_limit", "10")
	runCLI(t, "--config-dir", dir, "config", "set", "embedding.model", "nomic-embed-text")

	store, err := configfile.NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.7, store.GetFloat("assistant.threshold"))
	assert.Equal(t, 10, store.GetInt("assistant.search_limit"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
}

func TestConfigSet_ValueSurvivesReloadAsNumber(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, "--config-dir", dir, "config", "set", "index.chunk_size", "800")

	// Reload from disk so the TOML round-trip is what is being checked.
	store, err := configfile.NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Load())

	assert.Equal(t, 800, store.GetInt("index.chunk_size"))
}

func TestConfigValidate_NoProvidersConfigured(t *testing.T) {
	out := runCLI(t, "--config-dir", t.TempDir(), "config", "validate")

	assert.Contains(t, out, "Embedding provider: not configured")
	assert.Contains(t, out, "Completion provider: not configured")
	assert.Contains(t, out, "Configuration OK.")
}

func TestConfigValidate_MockEmbeddingReachable(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, "--config-dir", dir, "config", "set-embedding", "mock")

	out := runCLI(t, "--config-dir", dir, "config", "validate")

	assert.Contains(t, out, "Embedding provider mock: reachable")
	assert.Contains(t, out, "Configuration OK.")
}

func TestConfigValidate_BadChunkSettingsRejected(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, "--config-dir", dir, "config", "set", "index.chunk_size", "100")
	runCLI(t, "--config-dir", dir, "config", "set", "index.chunk_overlap", "100")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--config-dir", dir, "config", "validate"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk overlap")
}
