// Package embedding provides decorators shared by the embedding adapters.
package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/agora-labs/agora-cli/internal/core/ports/driven"
)

// Ensure Throttled implements the interface.
var _ driven.EmbeddingService = (*Throttled)(nil)

// DefaultRequestsPerSecond is the proactive throttle applied to hosted
// embedding APIs when no explicit rate is configured.
const DefaultRequestsPerSecond = 3

// Throttled wraps an embedding service with a token-bucket limiter so bulk
// indexing cannot exhaust a provider quota. Batch calls count as one
// request since providers meter requests, not inputs.
type Throttled struct {
	inner  driven.EmbeddingService
	bucket *rate.Limiter
}

// NewThrottled wraps inner with a proactive limiter. A non-positive
// requestsPerSecond falls back to the default.
func NewThrottled(inner driven.EmbeddingService, requestsPerSecond float64) *Throttled {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	return &Throttled{
		inner:  inner,
		bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Embed waits for the limiter, then delegates.
func (t *Throttled) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Embed(ctx, text)
}

// EmbedBatch waits for the limiter once, then delegates.
func (t *Throttled) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (t *Throttled) Dimensions() int {
	return t.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (t *Throttled) ModelName() string {
	return t.inner.ModelName()
}

// Ping delegates without consuming limiter tokens.
func (t *Throttled) Ping(ctx context.Context) error {
	return t.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (t *Throttled) Close() error {
	return t.inner.Close()
}
