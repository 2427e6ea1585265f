package providererr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		rejected bool
		limited  bool
	}{
		{429, false, true},
		{400, true, false},
		{401, true, false},
		{404, true, false},
		{408, false, false},
		{500, false, false},
		{503, false, false},
	}

	for _, tt := range tests {
		err := FromStatus("openai", tt.status, "boom")
		assert.Equal(t, tt.rejected, errors.Is(err, domain.ErrProviderRejected), "status %d", tt.status)
		assert.Equal(t, tt.limited, errors.Is(err, domain.ErrRateLimited), "status %d", tt.status)
		assert.Contains(t, err.Error(), "openai")
	}
}

func TestFromStatus_TruncatesBody(t *testing.T) {
	err := FromStatus("ollama", 500, strings.Repeat("x", 2000))
	assert.Less(t, len(err.Error()), 600)
}
