package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestCompletionService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.Options)
		assert.Equal(t, 300, req.Options.NumPredict)

		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"From page 2."},` +
			`"prompt_eval_count":40,"eval_count":6,"done":true}`))
	}))
	defer server.Close()

	svc := NewCompletionService(Config{BaseURL: server.URL + "/"})

	out, err := svc.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{
			{Role: driven.RoleSystem, Content: "ctx"},
			{Role: driven.RoleUser, Content: "q"},
		},
		MaxTokens: 300,
	})

	require.NoError(t, err)
	assert.Equal(t, "From page 2.", out.Text)
	assert.Equal(t, 46, out.TokensUsed)
}

func TestCompletionService_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewCompletionService(Config{BaseURL: server.URL}).Complete(context.Background(), driven.CompletionRequest{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProviderRejected)
	assert.Contains(t, err.Error(), "model is loading")
}

func TestCompletionService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewCompletionService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestCompletionService_CloseKeepsClientUsable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewCompletionService(Config{BaseURL: server.URL})
	require.NoError(t, svc.Ping(context.Background()))

	assert.NoError(t, svc.Close())
	assert.NoError(t, svc.Ping(context.Background()), "in-flight holders may still call after close")
}
