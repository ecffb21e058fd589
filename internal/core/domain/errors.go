package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates an invalid configuration value, such as a
	// chunk overlap that is not smaller than the chunk size.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbedding indicates the embedding gateway was unreachable or
	// returned a malformed response. Never retried inside the core;
	// retry policy belongs to the caller.
	ErrEmbedding = errors.New("embedding gateway failure")

	// ErrCompletion indicates the completion gateway was unreachable or
	// returned a malformed response.
	ErrCompletion = errors.New("completion gateway failure")

	// ErrIndexCorrupt indicates the persisted vector table blob failed to
	// parse. Callers start from a fresh empty index rather than crashing.
	ErrIndexCorrupt = errors.New("vector table blob corrupt")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates no completion service is configured.
	// Dialogue turns and drafting are disabled without one.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrSessionNotFound indicates no conversation state exists for the
	// requested session id.
	ErrSessionNotFound = errors.New("session not found")
)
