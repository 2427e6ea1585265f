// Package providererr classifies failed provider HTTP responses so the
// gateways know which failures are worth retrying.
package providererr

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxBody caps how much of an error body is quoted.
const maxBody = 512

// FromStatus returns an error for a non-2xx response. 429 wraps
// domain.ErrRateLimited; other 4xx wrap domain.ErrProviderRejected and
// are not retried. Everything else is treated as transient.
func FromStatus(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w (status %d): %s", provider, domain.ErrRateLimited, status, body)
	case status == http.StatusRequestTimeout:
		return fmt.Errorf("%s: request timed out (status %d): %s", provider, status, body)
	case status >= 400 && status < 500:
		return fmt.Errorf("%s: %w (status %d): %s", provider, domain.ErrProviderRejected, status, body)
	default:
		return fmt.Errorf("%s: API returned status %d: %s", provider, status, body)
	}
}
