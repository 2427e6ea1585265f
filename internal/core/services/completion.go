package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure CompletionGateway implements the interface.
var _ driven.CompletionService = (*CompletionGateway)(nil)

// CompletionGateway wraps a raw completion provider with pacing, a per-call
// timeout and the configured attempt budget. Failures surface as
// domain.ErrCompletionUnavailable.
type CompletionGateway struct {
	provider driven.CompletionService
	policy   retryPolicy
}

// NewCompletionGateway creates a gateway over provider.
func NewCompletionGateway(
	provider driven.CompletionService,
	llm domain.LLMSettings,
	providerSettings domain.ProviderSettings,
) *CompletionGateway {
	return &CompletionGateway{
		provider: provider,
		policy:   newRetryPolicy(providerSettings, llm.MaxAttempts),
	}
}

// Complete runs the request through the provider.
func (g *CompletionGateway) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrCompletionUnavailable)
	}

	var completion *driven.Completion
	err := g.policy.do(ctx, "complete", func(ctx context.Context) error {
		c, err := g.provider.Complete(ctx, req)
		if err != nil {
			return err
		}
		if c == nil || strings.TrimSpace(c.Text) == "" {
			return errEmptyResponse
		}
		completion = c
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Completion failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrCompletionUnavailable, err)
	}
	return completion, nil
}

// ModelName returns the provider's model.
func (g *CompletionGateway) ModelName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.ModelName()
}

// Ping checks the provider without retrying.
func (g *CompletionGateway) Ping(ctx context.Context) error {
	if g.provider == nil {
		return domain.ErrCompletionUnavailable
	}
	return g.provider.Ping(ctx)
}

// Close releases the provider.
func (g *CompletionGateway) Close() error {
	if g.provider == nil {
		return nil
	}
	return g.provider.Close()
}
