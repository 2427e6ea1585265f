package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure EmbeddingGateway implements the interface.
var _ driven.EmbeddingService = (*EmbeddingGateway)(nil)

// EmbeddingGateway wraps a raw embedding provider with batching, pacing,
// per-call timeouts and bounded retries. Exhausted retries surface as
// domain.ErrEmbeddingUnavailable.
type EmbeddingGateway struct {
	provider  driven.EmbeddingService
	batchSize int
	policy    retryPolicy
}

// NewEmbeddingGateway creates a gateway over provider.
func NewEmbeddingGateway(
	provider driven.EmbeddingService,
	embedding domain.EmbeddingSettings,
	providerSettings domain.ProviderSettings,
) *EmbeddingGateway {
	batchSize := embedding.BatchSize
	if batchSize <= 0 || batchSize > domain.MaxEmbeddingBatchSize {
		batchSize = domain.DefaultAppSettings().Embedding.BatchSize
	}
	return &EmbeddingGateway{
		provider:  provider,
		batchSize: batchSize,
		policy:    newRetryPolicy(providerSettings, providerSettings.MaxAttempts),
	}
}

// Embed generates the embedding for one text.
func (g *EmbeddingGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable)
	}

	var vec []float32
	err := g.policy.do(ctx, "embed", func(ctx context.Context) error {
		v, err := g.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return errEmptyResponse
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, g.unavailable(ctx, err)
	}
	return vec, nil
}

// EmbedBatch embeds texts in provider calls of at most the configured batch
// size. The result has one vector per input, in input order.
func (g *EmbeddingGateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", domain.ErrInvalidInput, i)
		}
	}
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable)
	}

	out := make([][]float32, 0, len(texts))
	dims := 0
	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		batch := texts[start:end]
		logger.Debug("Embedding batch %d-%d of %d", start, end, len(texts))

		var vectors [][]float32
		err := g.policy.do(ctx, "embed batch", func(ctx context.Context) error {
			v, err := g.provider.EmbedBatch(ctx, batch)
			if err != nil {
				return err
			}
			vectors = v
			return nil
		})
		if err != nil {
			return nil, g.unavailable(ctx, err)
		}

		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: provider returned %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
		}
		for i, v := range vectors {
			if dims == 0 {
				dims = len(v)
			}
			if len(v) == 0 || len(v) != dims {
				return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
					domain.ErrDimensionMismatch, start+i, len(v), dims)
			}
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (g *EmbeddingGateway) unavailable(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Warn("Embedding failed: %v", err)
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}

// Dimensions returns the provider's vector size.
func (g *EmbeddingGateway) Dimensions() int {
	if g.provider == nil {
		return 0
	}
	return g.provider.Dimensions()
}

// ModelName returns the provider's model.
func (g *EmbeddingGateway) ModelName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.ModelName()
}

// Ping checks the provider without retrying.
func (g *EmbeddingGateway) Ping(ctx context.Context) error {
	if g.provider == nil {
		return domain.ErrEmbeddingUnavailable
	}
	return g.provider.Ping(ctx)
}

// Close releases the provider.
func (g *EmbeddingGateway) Close() error {
	if g.provider == nil {
		return nil
	}
	return g.provider.Close()
}
