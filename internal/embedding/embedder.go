package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"golang.org/x/sync/errgroup"
)

const (
	// Model is the OpenAI model used for generating embeddings.
	Model = "text-embedding-3-small"

	// Dimension is the vector dimension for text-embedding-3-small.
	// This matches storage.VectorDimension (1536).
	Dimension = 1536

	// DefaultConcurrency bounds how many chunk embeddings are in flight at
	// once during a single ingestion.
	DefaultConcurrency = 8
)

// ErrEmbeddingFailed wraps terminal embedding failures. Callers treat it as
// fatal for the owning request; there is no partial result.
var ErrEmbeddingFailed = errors.New("embedding failed")

// Embedder generates vectors for text using OpenAI's text-embedding-3-small
// model. Rate-limit errors are retried with exponential backoff; anything
// else is permanent. Safe for concurrent use.
type Embedder struct {
	client      *Client
	concurrency int
}

// NewEmbedder creates an Embedder with the given client and optional
// concurrency limit. If concurrency is 0, DefaultConcurrency (8) is used.
func NewEmbedder(client *Client, concurrency int) *Embedder {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Embedder{
		client:      client,
		concurrency: concurrency,
	}
}

// Embed generates the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32

	operation := func() error {
		resp, err := e.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
			Model: Model,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // Will retry with backoff
			}
			return backoff.Permanent(err) // Don't retry
		}
		if len(resp.Data) == 0 {
			return backoff.Permanent(fmt.Errorf("no embedding returned"))
		}
		vector = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

// EmbedAll embeds every text independently, issuing calls concurrently up to
// the configured limit. Results come back in input order regardless of
// completion order. Any single failure fails the whole batch.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			vector, err := e.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			vectors[i] = vector
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts []float64 to []float32.
// OpenAI API returns float64, but storage uses float32 for memory efficiency.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
