package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agora-labs/agora-cli/internal/chunker"
	"github.com/agora-labs/agora-cli/internal/core/domain"
	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
	"github.com/agora-labs/agora-cli/internal/core/ports/driving"
	"github.com/agora-labs/agora-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexingService = (*IndexService)(nil)

// Default search tuning. The relaxed second pass recovers matches for
// short or jargon-heavy governance queries that under-recall on a single
// embedding pass.
const (
	// DefaultSearchLimit is the result cap when the caller passes none.
	DefaultSearchLimit = 5

	// DefaultThreshold is the minimum similarity when the caller passes none.
	DefaultThreshold = 0.6

	// ThresholdRelaxation is subtracted from the threshold on the
	// keyword-reduced second pass.
	ThresholdRelaxation = 0.05

	// MinThreshold floors the relaxed threshold.
	MinThreshold = 0.3

	// minFirstPassResults triggers the second pass when the first pass
	// returns fewer results than this.
	minFirstPassResults = 2

	// minContentWordLength filters short tokens out of the reduced query.
	minContentWordLength = 3
)

// stopWords are dropped when reducing a query to its content words.
var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "before": {},
	"being": {}, "could": {}, "does": {}, "doing": {}, "down": {},
	"each": {}, "from": {}, "have": {}, "having": {}, "here": {},
	"into": {}, "just": {}, "more": {}, "most": {}, "only": {},
	"other": {}, "over": {}, "should": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"under": {}, "very": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "will": {}, "with": {}, "would": {},
	"your": {},
}

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// IndexService stores embeddable text with metadata and answers
// nearest-neighbour queries by cosine similarity. The table is a plain
// in-memory slice searched brute-force, which is fine at the corpus sizes
// involved (hundreds to low thousands of chunks); a larger deployment
// would swap in an ANN index behind the same Search contract.
type IndexService struct {
	embedder driven.EmbeddingService
	store    driven.IndexStore
	chunks   *chunker.Chunker

	mu      sync.RWMutex
	records []domain.VectorRecord
}

// NewIndexService creates an index backed by the given embedding service
// and persistence store. The store is optional; with nil the index is
// memory-only. Any persisted records are loaded immediately; a corrupt
// blob is logged and replaced by a fresh empty table.
func NewIndexService(embedder driven.EmbeddingService, store driven.IndexStore, chunks *chunker.Chunker) *IndexService {
	s := &IndexService{
		embedder: embedder,
		store:    store,
		chunks:   chunks,
	}

	if store != nil {
		records, err := store.Load(context.Background())
		switch {
		case errors.Is(err, domain.ErrIndexCorrupt):
			logger.Warn("Persisted vector table corrupt, starting empty: %v", err)
		case err != nil:
			logger.Warn("Failed to load vector table: %v", err)
		default:
			s.records = records
			logger.Info("Loaded %d vector records", len(records))
		}
	}

	return s
}

// Add embeds the text, appends a new record and persists the table.
// The table is unchanged if the embedding call fails (no partial write).
func (s *IndexService) Add(ctx context.Context, text string, meta domain.RecordMetadata) (string, error) {
	if s.embedder == nil {
		return "", domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: embed record: %w", domain.ErrEmbedding, err)
	}

	record := domain.VectorRecord{
		ID:        uuid.New().String(),
		Embedding: embedding,
		Text:      text,
		Metadata:  meta,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.persistLocked(ctx)
	s.mu.Unlock()

	return record.ID, nil
}

// AddBatch adds items sequentially. Best-effort, non-transactional: a
// failure on item k leaves items 0..k-1 committed and returns their ids
// alongside the error.
func (s *IndexService) AddBatch(ctx context.Context, texts []string, metas []domain.RecordMetadata) ([]string, error) {
	if len(texts) != len(metas) {
		return nil, fmt.Errorf("%w: %d texts but %d metadata entries", domain.ErrInvalidInput, len(texts), len(metas))
	}

	ids := make([]string, 0, len(texts))
	for i := range texts {
		id, err := s.Add(ctx, texts[i], metas[i])
		if err != nil {
			return ids, fmt.Errorf("add item %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AddDocuments chunks each document and indexes every chunk with lineage
// metadata. Documents without a generated id get one.
func (s *IndexService) AddDocuments(ctx context.Context, docs []domain.SourceDocument) ([]string, error) {
	var ids []string
	for i := range docs {
		chunkIDs, err := s.processDocument(ctx, docs[i], domain.RecordTypeUpload)
		if err != nil {
			return ids, fmt.Errorf("document %q: %w", docs[i].Title, err)
		}
		ids = append(ids, chunkIDs...)
	}
	return ids, nil
}

// processDocument is the sole bulk write path from raw documents into the
// index: chunk, attach lineage, add each chunk.
func (s *IndexService) processDocument(ctx context.Context, doc domain.SourceDocument, recordType string) ([]string, error) {
	sourceID := doc.ID
	if sourceID == "" {
		sourceID = uuid.New().String()
	}

	pieces := s.chunks.Chunk(doc.Content)
	logger.Debug("Chunked %q into %d pieces", doc.Title, len(pieces))

	ids := make([]string, 0, len(pieces))
	for i, piece := range pieces {
		index := i
		meta := domain.RecordMetadata{
			Title:       doc.Title,
			URL:         doc.URL,
			Date:        doc.Date,
			Type:        recordType,
			SourceID:    sourceID,
			ChunkIndex:  &index,
			TotalChunks: len(pieces),
		}
		id, err := s.Add(ctx, piece, meta)
		if err != nil {
			return ids, fmt.Errorf("chunk %d/%d: %w", i, len(pieces), err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Search runs the adaptive-recall algorithm: a normalized first pass, and
// when it returns fewer than two results, a keyword-reduced second pass
// with a relaxed threshold. Both result sets are merged, deduplicated by
// id, re-sorted and truncated.
func (s *IndexService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredRecord, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	logger.Section("Adaptive Recall")
	normalized := normalizeQuery(query)
	logger.Debug("Pass 1: query=%q threshold=%.2f", normalized, threshold)

	first, err := s.searchPass(ctx, normalized, threshold, limit)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pass 1: %d hits", len(first))

	if len(first) >= minFirstPassResults {
		return first, nil
	}

	reduced := contentWords(normalized)
	if reduced == "" || reduced == normalized {
		return first, nil
	}

	relaxed := threshold - ThresholdRelaxation
	if relaxed < MinThreshold {
		relaxed = MinThreshold
	}
	logger.Debug("Pass 2: query=%q threshold=%.2f", reduced, relaxed)

	second, err := s.searchPass(ctx, reduced, relaxed, limit)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pass 2: %d hits", len(second))

	return mergeScored(first, second, limit), nil
}

// searchPass embeds one query and scans the whole table.
func (s *IndexService) searchPass(ctx context.Context, query string, threshold float64, limit int) ([]domain.ScoredRecord, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}

	s.mu.RLock()
	scored := make([]domain.ScoredRecord, 0, limit)
	for i := range s.records {
		score := cosineSimilarity(embedding, s.records[i].Embedding)
		if score >= threshold {
			scored = append(scored, domain.ScoredRecord{VectorRecord: s.records[i], Score: score})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Clear removes every record and persists the empty table.
func (s *IndexService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.persistLocked(ctx)
	return nil
}

// ClearByType removes only records whose metadata type matches and
// persists the result. Unrelated records are untouched.
func (s *IndexService) ClearByType(ctx context.Context, recordType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for i := range s.records {
		if s.records[i].Metadata.Type == recordType {
			removed++
			continue
		}
		kept = append(kept, s.records[i])
	}
	s.records = kept
	logger.Info("Cleared %d %q records, %d remain", removed, recordType, len(kept))

	s.persistLocked(ctx)
	return nil
}

// Reindex replaces the forum corpus: clears forum-typed records, then
// re-adds every valid document. Documents missing a title or content are
// skipped with a counted reason instead of aborting the batch.
func (s *IndexService) Reindex(ctx context.Context, docs []domain.SourceDocument) (domain.ReindexReport, error) {
	if err := s.ClearByType(ctx, domain.RecordTypeForum); err != nil {
		return domain.ReindexReport{}, err
	}

	var report domain.ReindexReport
	for i := range docs {
		doc := docs[i]
		if strings.TrimSpace(doc.Title) == "" {
			report.Skipped++
			report.SkipReasons = append(report.SkipReasons, fmt.Sprintf("document %d: empty title", i))
			continue
		}
		if strings.TrimSpace(doc.Content) == "" {
			report.Skipped++
			report.SkipReasons = append(report.SkipReasons, fmt.Sprintf("document %d (%s): empty content", i, doc.Title))
			continue
		}

		if _, err := s.processDocument(ctx, doc, domain.RecordTypeForum); err != nil {
			return report, fmt.Errorf("reindex document %q: %w", doc.Title, err)
		}
		report.Indexed++
	}

	logger.Info("Reindex complete: %d indexed, %d skipped", report.Indexed, report.Skipped)
	return report, nil
}

// Stats summarises the table contents.
func (s *IndexService) Stats() domain.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.IndexStats{
		Records: len(s.records),
		ByType:  make(map[string]int),
	}
	for i := range s.records {
		stats.ByType[s.records[i].Metadata.Type]++
		if stats.Dimensions == 0 {
			stats.Dimensions = len(s.records[i].Embedding)
		}
	}
	return stats
}

// persistLocked writes the table through the store. Best-effort: failures
// are logged and swallowed, the in-memory table stays authoritative.
// Caller must hold the write lock.
func (s *IndexService) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	snapshot := make([]domain.VectorRecord, len(s.records))
	copy(snapshot, s.records)
	if err := s.store.Save(ctx, snapshot); err != nil {
		logger.Warn("Failed to persist vector table: %v", err)
	}
}

// normalizeQuery lower-cases, strips punctuation and collapses whitespace.
func normalizeQuery(query string) string {
	query = strings.ToLower(query)
	query = punctuationRe.ReplaceAllString(query, " ")
	return strings.Join(strings.Fields(query), " ")
}

// contentWords reduces a normalized query to its content words: tokens
// longer than three characters that are not stop-words.
func contentWords(normalized string) string {
	var kept []string
	for _, word := range strings.Fields(normalized) {
		if len(word) <= minContentWordLength {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// mergeScored combines two result lists, deduplicating by record id,
// keeping the higher score, re-sorting and truncating.
func mergeScored(first, second []domain.ScoredRecord, limit int) []domain.ScoredRecord {
	byID := make(map[string]domain.ScoredRecord, len(first)+len(second))
	for _, r := range first {
		byID[r.ID] = r
	}
	for _, r := range second {
		if existing, ok := byID[r.ID]; !ok || r.Score > existing.Score {
			byID[r.ID] = r
		}
	}

	merged := make([]domain.ScoredRecord, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// cosineSimilarity is the normalized dot product of two vectors. A
// zero-magnitude vector has similarity 0 against anything.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	length := len(a)
	if len(b) < length {
		length = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
