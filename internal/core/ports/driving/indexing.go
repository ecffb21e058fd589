// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// IndexingService is the write and query surface of the vector corpus.
type IndexingService interface {
	// AddDocuments chunks and indexes raw documents, returning the ids of
	// every chunk created. Best-effort: a failure on document k leaves
	// documents 0..k-1 committed.
	AddDocuments(ctx context.Context, docs []domain.SourceDocument) ([]string, error)

	// Search runs adaptive-recall similarity search over the corpus.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// ClearByType removes only records whose metadata type matches.
	ClearByType(ctx context.Context, recordType string) error

	// Reindex atomically replaces the forum corpus: clears forum-typed
	// records, then bulk re-adds, reporting indexed and skipped counts.
	Reindex(ctx context.Context, docs []domain.SourceDocument) (domain.ReindexReport, error)

	// Stats summarises the current table contents.
	Stats() domain.IndexStats
}
