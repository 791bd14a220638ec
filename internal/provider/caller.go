// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"context"
	"log/slog"
	"time"
)

// CallerOptions configures a Caller. Zero values mean no retries, no
// timeout and the registry default model.
type CallerOptions struct {
	ModelRef   string
	MaxRetries int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Caller asks one model one question at a time, applying the per-attempt
// timeout and retry policy and keeping the provider's health record.
type Caller struct {
	registry *Registry
	ref      string
	retrier  *Retrier
	timeout  time.Duration
	logger   *slog.Logger
}

func NewCaller(reg *Registry, opts CallerOptions) *Caller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Caller{
		registry: reg,
		ref:      opts.ModelRef,
		retrier:  NewRetrier(opts.MaxRetries),
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

// Generate sends prompt to the Caller's model and returns the answer text.
func (c *Caller) Generate(ctx context.Context, prompt string) (string, error) {
	p, model, err := c.registry.Route(c.ref)
	if err != nil {
		return "", err
	}
	health, _ := c.registry.Health(c.providerName())
	log := c.logger.With("provider", p.Name(), "model", model)
	if !health.IsHealthy() {
		// Nothing to fail over to, so the call goes ahead.
		log.Info("provider cooling down after a failure, calling anyway",
			"failures", health.HealthMetrics().FailureCount)
	}
	req := Request{Model: model, Prompt: prompt}

	var usage Usage
	start := time.Now()
	text, err := c.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		reply, err := Complete(ctx, p, req)
		if err != nil {
			health.RecordFailure()
			return "", err
		}
		health.RecordSuccess()
		usage = reply.Usage
		return reply.Text, nil
	})

	log = log.With("duration", time.Since(start))
	if err != nil {
		log.Warn("model call failed", "failures", health.HealthMetrics().FailureCount, "error", err)
		return "", err
	}
	log.Debug("model call succeeded",
		"chars", len(text),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return text, nil
}

// providerName returns the provider half of the Caller's model reference,
// falling back to the registry default. A malformed reference is returned
// whole.
func (c *Caller) providerName() string {
	ref := c.ref
	if ref == "" || ref == "default" {
		ref = c.registry.Default()
	}
	name, _, err := ParseRef(ref)
	if err != nil {
		return ref
	}
	return name
}

// Label names the provider behind the Caller's model for display.
func (c *Caller) Label() Label {
	return LabelFor(c.providerName())
}

// Health reports the health record of the Caller's provider.
func (c *Caller) Health() (HealthMetrics, bool) {
	h, ok := c.registry.Health(c.providerName())
	if !ok {
		return HealthMetrics{}, false
	}
	return h.HealthMetrics(), true
}
