package domain

// SourceDocument is a raw document handed to the indexing surface, either
// from a forum scrape or a direct upload. No schema beyond these fields is
// assumed.
type SourceDocument struct {
	// ID is the source identifier. Generated when empty.
	ID string `json:"id,omitempty"`

	// Title is the human-readable document title.
	Title string `json:"title"`

	// Content is the full document text.
	Content string `json:"content"`

	// URL is the original location, when known.
	URL string `json:"url,omitempty"`

	// Date is the document date as supplied by the source.
	Date string `json:"date,omitempty"`
}

// ReindexReport summarises a bulk corpus replacement.
type ReindexReport struct {
	// Indexed is the number of documents chunked and added.
	Indexed int `json:"indexed"`

	// Skipped is the number of documents rejected.
	Skipped int `json:"skipped"`

	// SkipReasons explains each rejected document.
	SkipReasons []string `json:"skip_reasons,omitempty"`
}
