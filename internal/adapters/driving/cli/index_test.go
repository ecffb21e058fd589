package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocuments_Array(t *testing.T) {
	path := writeTestFile(t, "docs.json", `[
		{"id": "t-1", "title": "Budget thread", "content": "discussion", "url": "https://forum.example/t/1"},
		{"title": "Staking thread", "content": "more discussion"}
	]`)

	docs, err := loadDocuments(path)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "t-1", docs[0].ID)
	assert.Equal(t, "Budget thread", docs[0].Title)
	assert.Equal(t, "https://forum.example/t/1", docs[0].URL)
	assert.Equal(t, "Staking thread", docs[1].Title)
}

func TestLoadDocuments_SingleObject(t *testing.T) {
	path := writeTestFile(t, "doc.json", `{"title": "One thread", "content": "text"}`)

	docs, err := loadDocuments(path)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "One thread", docs[0].Title)
}

func TestLoadDocuments_InvalidJSON(t *testing.T) {
	path := writeTestFile(t, "bad.json", `{broken`)

	_, err := loadDocuments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a document object or array")
}

func TestLoadDocuments_MissingFile(t *testing.T) {
	_, err := loadDocuments(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "****", maskAPIKey("12345678"))
	assert.Equal(t, "sk-1...wxyz", maskAPIKey("sk-1234567890wxyz"))
}
