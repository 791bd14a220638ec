// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"context"
	"time"
)

// SetSleep replaces the backoff wait so tests can record delays without
// waiting.
func (r *Retrier) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	r.sleep = fn
}

// Backoff exposes the delay computed for attempt.
func (r *Retrier) Backoff(attempt int) time.Duration {
	return r.backoff(attempt)
}
