package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConfigNotFound", ErrConfigNotFound},
		{"ErrInvalidQuery", ErrInvalidQuery},
		{"ErrDocumentNotReady", ErrDocumentNotReady},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrCompletionUnavailable", ErrCompletionUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrProviderRejected", ErrProviderRejected},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrInvalidTransition", ErrInvalidTransition},
		{"ErrFileTooLarge", ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrConfigNotFound,
		ErrInvalidQuery, ErrDocumentNotReady, ErrEmbeddingUnavailable,
		ErrCompletionUnavailable, ErrRateLimited, ErrProviderRejected,
		ErrDimensionMismatch, ErrInvalidTransition, ErrFileTooLarge,
	}
	for i := range all {
		for j := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(all[i], all[j]), "%v should not match %v", all[i], all[j])
		}
	}
}

// TestErrors_WrappedTwice tests that provider failures keep both the
// unavailability sentinel and the root cause.
func TestErrors_WrappedTwice(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, ErrRateLimited)

	assert.True(t, errors.Is(err, ErrEmbeddingUnavailable))
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrCompletionUnavailable))
}

func TestErrEmbeddingUnavailable(t *testing.T) {
	assert.Equal(t, "embedding service unavailable", ErrEmbeddingUnavailable.Error())
}

func TestErrCompletionUnavailable(t *testing.T) {
	assert.Equal(t, "completion service unavailable", ErrCompletionUnavailable.Error())
}
