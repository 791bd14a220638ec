// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package google

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// StreamFunc adapts a function to the streamer seam.
type StreamFunc func(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

func (f StreamFunc) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return f(ctx, model, contents, config)
}

// NewWithStream builds a Provider around fn instead of a live client.
func NewWithStream(fn StreamFunc) *Provider {
	return &Provider{models: fn}
}
