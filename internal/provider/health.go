// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"sync"
	"time"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// DefaultHealthCooldown is how long a provider stays unavailable after a
// failed call.
const DefaultHealthCooldown = 30 * time.Second

// HealthMetrics is a point-in-time view of a provider's call record.
type HealthMetrics struct {
	FailureCount  int64
	LastFailureAt *time.Time
	// CooldownUntil is set from a failure until the next success, even once
	// the cooldown has passed.
	CooldownUntil *time.Time
	Available     bool
}

// HealthTracker marks a provider unavailable for a cooldown after each
// failure. A success ends the cooldown early.
type HealthTracker struct {
	cooldown time.Duration
	now      func() time.Time

	mu          sync.RWMutex
	failures    int64
	lastFailure time.Time
	downUntil   time.Time // zero while healthy
}

// NewHealthTracker creates a HealthTracker that starts healthy.
func NewHealthTracker(cooldown time.Duration) (*HealthTracker, error) {
	if cooldown <= 0 {
		return nil, sherr.Errorf(sherr.CodeConfigValidateInvalidValue,
			"health tracker cooldown must be positive, got %s", cooldown)
	}
	return &HealthTracker{cooldown: cooldown, now: time.Now}, nil
}

// MustHealthTracker is NewHealthTracker with DefaultHealthCooldown, which
// cannot fail.
func MustHealthTracker() *HealthTracker {
	h, _ := NewHealthTracker(DefaultHealthCooldown)
	return h
}

// SetNowFunc overrides the time source (for testing).
func (h *HealthTracker) SetNowFunc(fn func() time.Time) {
	h.mu.Lock()
	h.now = fn
	h.mu.Unlock()
}

// IsHealthy reports whether calls should be attempted.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.availableLocked()
}

func (h *HealthTracker) availableLocked() bool {
	return h.downUntil.IsZero() || !h.now().Before(h.downUntil)
}

// RecordFailure starts a new cooldown and counts the failure.
func (h *HealthTracker) RecordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures++
	h.lastFailure = h.now()
	h.downUntil = h.lastFailure.Add(h.cooldown)
}

// RecordSuccess clears any cooldown.
func (h *HealthTracker) RecordSuccess() {
	h.mu.Lock()
	h.downUntil = time.Time{}
	h.mu.Unlock()
}

// HealthMetrics returns a snapshot of the tracker.
func (h *HealthTracker) HealthMetrics() HealthMetrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := HealthMetrics{FailureCount: h.failures, Available: h.availableLocked()}
	if h.failures > 0 {
		last := h.lastFailure
		m.LastFailureAt = &last
	}
	if !h.downUntil.IsZero() {
		until := h.downUntil
		m.CooldownUntil = &until
	}
	return m
}
