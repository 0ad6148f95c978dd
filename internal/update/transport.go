package update

import (
	"net/http"
	"strconv"
	"time"

	"github.com/spiffcs/slaclock/internal/log"
)

// rateLimitWatermark is the remaining-request count below which the
// transport logs a warning.
const rateLimitWatermark = 5

// rateLimitTransport logs GitHub rate limit headers. Unauthenticated
// release checks share a small per-IP budget.
type rateLimitTransport struct {
	base http.RoundTripper
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	switch {
	case remaining == 0:
		log.Warn("GitHub rate limit exhausted", "limit", limit, "resets_at", resetAt.Format(time.RFC3339))
	case remaining > 0 && remaining <= rateLimitWatermark:
		log.Debug("rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
// Missing values are -1 and the zero time.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining, limit = -1, -1

	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil {
		remaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); err == nil {
		limit = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		resetAt = time.Unix(v, 0)
	}

	return remaining, limit, resetAt
}
