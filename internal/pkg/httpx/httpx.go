// Package httpx holds small HTTP client helpers shared by outbound API
// callers, mainly the retry policy used by the AI client.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPStatusCoder is implemented by errors that carry an HTTP status code.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableError reports whether a request is worth re-sending: timeouts,
// cancellations, rate limits and 5xx responses qualify; everything else is
// treated as permanent.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

func IsRetryableHTTPStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 599:
		return true
	default:
		return false
	}
}

// RetryAfterDuration honors a Retry-After header when present, capped at max.
func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// JitterSleep spreads a backoff duration +/-20% to avoid thundering herds.
func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	secs := base.Seconds()
	low := secs * 0.8
	span := secs * 0.4
	return time.Duration((low + rand.Float64()*span) * float64(time.Second))
}
