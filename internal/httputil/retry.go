// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for talking to rate-limited
// upstream APIs.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay is the default base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 3 * time.Second

const (
	defaultMaxRetries = 5
	maxRetryAfter     = 5 * time.Minute
)

// RetryPolicy controls DoWithRetry.
type RetryPolicy struct {
	// MaxRetries bounds the number of retries after the first attempt.
	// Zero means the default of 5.
	MaxRetries int

	// BaseDelay is the first backoff; each retry doubles it. Zero means
	// RetryBaseDelay.
	BaseDelay time.Duration

	// Logger receives one warning per retry.
	Logger zerolog.Logger

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt, status int, wait time.Duration)
}

// Retryable reports whether status is worth retrying: 429 Too Many
// Requests or 503 Service Unavailable.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes req and retries retryable responses with exponential
// backoff (base, 2×base, 4×base, ...). A Retry-After header given in
// seconds or as an HTTP date replaces the computed backoff.
//
// On each retry the response body is drained and closed before waiting. If
// ctx is cancelled during a wait the function returns ctx.Err(). After
// exhausting retries the last retryable response is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	maxRetries := policy.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * base
		if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			wait = ra
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		policy.Logger.Warn().
			Str("url", req.URL.Redacted()).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("wait", wait).
			Msg("upstream throttled, retrying")
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, resp.StatusCode, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// parseRetryAfter reads a Retry-After value as delay seconds or an HTTP
// date relative to now. Values are capped at five minutes.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
