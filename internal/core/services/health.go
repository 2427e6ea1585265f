package services

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// pingTimeout bounds each health probe.
const pingTimeout = 5 * time.Second

// HealthService probes the store and both providers.
type HealthService struct {
	docStore   driven.DocumentStore
	embedder   driven.EmbeddingService
	completion driven.CompletionService
}

// NewHealthService creates a new health service. Nil dependencies are
// reported as not configured.
func NewHealthService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	completion driven.CompletionService,
) *HealthService {
	return &HealthService{
		docStore:   docStore,
		embedder:   embedder,
		completion: completion,
	}
}

// Check pings every dependency and reports each result.
func (s *HealthService) Check(ctx context.Context) driving.HealthReport {
	report := driving.HealthReport{Healthy: true}

	add := func(name string, ping func(context.Context) error, configured bool) {
		c := driving.ComponentHealth{Name: name, OK: true}
		switch {
		case !configured:
			c.OK = false
			c.Detail = "not configured"
		default:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := ping(pingCtx)
			cancel()
			if err != nil {
				c.OK = false
				c.Detail = err.Error()
			}
		}
		if !c.OK {
			report.Healthy = false
		}
		report.Components = append(report.Components, c)
	}

	add("store", func(ctx context.Context) error { return s.docStore.Ping(ctx) }, s.docStore != nil)
	add("embedding", func(ctx context.Context) error { return s.embedder.Ping(ctx) }, s.embedder != nil)
	add("completion", func(ctx context.Context) error { return s.completion.Ping(ctx) }, s.completion != nil)

	return report
}
