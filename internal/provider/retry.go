// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 30 * time.Second
)

// Retrier re-runs a call with exponential backoff while it fails with a
// transient error. A zero MaxRetries runs the call exactly once.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// sleep waits for d or until ctx is done; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier returns a Retrier with the default delays.
func NewRetrier(maxRetries int) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		sleep:      sleepCtx,
	}
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. The last error is returned.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	maxRetries := 0
	if r != nil {
		maxRetries = r.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == maxRetries || !IsRetryable(err) {
			break
		}

		delay := r.backoff(attempt)
		slog.Debug("retrying model call",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay,
			"error", err,
		)
		if err := r.wait(ctx, delay); err != nil {
			break
		}
	}

	if maxRetries > 0 && lastErr != nil {
		return "", sherr.With(lastErr, sherr.Field("max_retries", maxRetries))
	}
	return "", lastErr
}

func (r *Retrier) backoff(attempt int) time.Duration {
	base, ceiling := r.BaseDelay, r.MaxDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	if ceiling <= 0 {
		ceiling = defaultMaxDelay
	}
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if delay > ceiling {
		delay = ceiling
	}
	return delay
}

func (r *Retrier) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	return sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var retryableMarkers = []string{
	"429", "500", "502", "503", "529",
	"rate limit", "resource_exhausted", "overloaded",
	"connection refused", "reset by peer", "timeout", "deadline exceeded", "EOF",
}

// IsRetryable reports whether err looks transient: rate limits, 5xx
// responses, dropped connections and timeouts. SDK errors arrive as text
// through the event stream, so this matches on the message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if sherr.IsTimeout(err) {
		return true
	}
	if sherr.HasArea(err, "provider") && !sherr.IsUpstreamFailure(err) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range retryableMarkers {
		if strings.Contains(msg, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
