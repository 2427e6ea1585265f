package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
)

func TestHealthService_AllHealthy(t *testing.T) {
	svc := NewHealthService(memory.NewDocumentStore(), &mockEmbedder{}, &mockCompletion{})

	report := svc.Check(context.Background())

	assert.True(t, report.Healthy)
	require.Len(t, report.Components, 3)
	for _, c := range report.Components {
		assert.True(t, c.OK, c.Name)
	}
}

func TestHealthService_ProviderDown(t *testing.T) {
	svc := NewHealthService(memory.NewDocumentStore(), &mockEmbedder{err: errors.New("connection refused")}, &mockCompletion{})

	report := svc.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, "embedding", report.Components[1].Name)
	assert.False(t, report.Components[1].OK)
	assert.Equal(t, "connection refused", report.Components[1].Detail)
	assert.True(t, report.Components[2].OK)
}

func TestHealthService_NotConfigured(t *testing.T) {
	svc := NewHealthService(memory.NewDocumentStore(), nil, nil)

	report := svc.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, "not configured", report.Components[2].Detail)
}
