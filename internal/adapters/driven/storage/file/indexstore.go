// Package file provides an IndexStore backed by a single JSON file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// DefaultFileName is the index blob file name inside the data directory.
const DefaultFileName = "index.json"

// indexBlob is the on-disk layout: parallel arrays of embeddings and
// record envelopes, matched by position.
type indexBlob struct {
	Vectors  [][]float32   `json:"vectors"`
	Metadata []recordEntry `json:"metadata"`
}

// recordEntry is everything about a record except its embedding.
type recordEntry struct {
	ID       string                `json:"id"`
	Text     string                `json:"text"`
	Metadata domain.RecordMetadata `json:"metadata"`
}

// IndexStore persists the vector table as one JSON blob. Writes go to a
// temp file in the same directory and are renamed into place, so a failed
// write never corrupts the previous blob.
type IndexStore struct {
	path string
}

// NewIndexStore creates a store writing to the given file path. The parent
// directory is created if missing.
func NewIndexStore(path string) (*IndexStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: index store path is required", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return &IndexStore{path: path}, nil
}

// Save replaces the persisted blob with the given records.
func (s *IndexStore) Save(_ context.Context, records []domain.VectorRecord) error {
	blob := indexBlob{
		Vectors:  make([][]float32, len(records)),
		Metadata: make([]recordEntry, len(records)),
	}
	for i, record := range records {
		blob.Vectors[i] = record.Embedding
		blob.Metadata[i] = recordEntry{
			ID:       record.ID,
			Text:     record.Text,
			Metadata: record.Metadata,
		}
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load reads the persisted records. A missing file yields an empty slice;
// an unparseable or inconsistent blob yields ErrIndexCorrupt.
func (s *IndexStore) Load(_ context.Context) ([]domain.VectorRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.VectorRecord{}, nil
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var blob indexBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	if len(blob.Vectors) != len(blob.Metadata) {
		return nil, fmt.Errorf("%w: %d vectors but %d metadata entries",
			domain.ErrIndexCorrupt, len(blob.Vectors), len(blob.Metadata))
	}

	records := make([]domain.VectorRecord, len(blob.Vectors))
	for i := range blob.Vectors {
		records[i] = domain.VectorRecord{
			ID:        blob.Metadata[i].ID,
			Embedding: blob.Vectors[i],
			Text:      blob.Metadata[i].Text,
			Metadata:  blob.Metadata[i].Metadata,
		}
	}
	return records, nil
}

// Path returns the blob file path.
func (s *IndexStore) Path() string {
	return s.path
}
