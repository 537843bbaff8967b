package notifier

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"newsportal/internal/resilience/retry"
)

// truncate cuts text to maxLength bytes, suffix included.
func truncate(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}

	// Reserve space for suffix
	truncateAt := maxLength - len(suffix)
	if truncateAt < 0 {
		truncateAt = 0
	}

	// back off to a rune boundary
	for truncateAt > 0 && !utf8.RuneStart(text[truncateAt]) {
		truncateAt--
	}
	return text[:truncateAt] + suffix
}

// extractRetryAfter reads the Retry-After header in seconds, defaulting to 5s.
func extractRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

// classifyStatus turns a non-2xx reply into a retry.HTTPError. A 429 carries
// the server's Retry-After.
func classifyStatus(service string, resp *http.Response, body []byte) error {
	err := &retry.HTTPError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Message:    truncate(strings.TrimSpace(string(body)), 200, "..."),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		err.RetryAfter = extractRetryAfter(resp)
	}
	return err
}
