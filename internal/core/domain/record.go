package domain

// Record types partition the vector table so one source corpus can be
// atomically replaced without touching the others.
const (
	// RecordTypeForum marks chunks produced from scraped forum documents.
	RecordTypeForum = "forum"

	// RecordTypeUpload marks chunks produced from direct document uploads.
	RecordTypeUpload = "upload"
)

// RecordMetadata carries the lineage and provenance of one vector record.
type RecordMetadata struct {
	// Title is the parent document title.
	Title string `json:"title,omitempty"`

	// URL is the original document location, when known.
	URL string `json:"url,omitempty"`

	// Date is the document date as supplied by the source.
	Date string `json:"date,omitempty"`

	// Type partitions records by corpus ("forum", "upload").
	Type string `json:"type"`

	// SourceID links back to the parent document.
	SourceID string `json:"source_id,omitempty"`

	// ChunkIndex is the 0-based position within the parent document.
	// Nil for records that were not produced by the chunker.
	ChunkIndex *int `json:"chunk_index,omitempty"`

	// TotalChunks is the number of chunks the parent document produced.
	TotalChunks int `json:"total_chunks,omitempty"`
}

// VectorRecord is one immutable (id, embedding, text, metadata) entry in the
// vector table. Updates are delete + reinsert; the embedding length is
// constant across all records in one index instance.
type VectorRecord struct {
	// ID is the unique record identifier.
	ID string `json:"id"`

	// Embedding is the vector representation of Text.
	Embedding []float32 `json:"embedding"`

	// Text is the embeddable text content.
	Text string `json:"text"`

	// Metadata carries lineage and provenance.
	Metadata RecordMetadata `json:"metadata"`
}

// ScoredRecord is a vector record paired with its similarity score for a
// particular query.
type ScoredRecord struct {
	VectorRecord

	// Score is the cosine similarity against the query, range [-1, 1].
	Score float64 `json:"score"`
}

// SearchOptions tunes a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results (default applied by the index).
	Limit int

	// Threshold is the minimum similarity score to keep. Zero means the
	// index default.
	Threshold float64
}

// IndexStats summarises the vector table contents.
type IndexStats struct {
	// Records is the total number of stored records.
	Records int `json:"records"`

	// ByType counts records per metadata type.
	ByType map[string]int `json:"by_type"`

	// Dimensions is the embedding length, 0 while the table is empty.
	Dimensions int `json:"dimensions"`
}
