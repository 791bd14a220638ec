// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package anthropic answers prompts with the Anthropic Messages API.
package anthropic

import (
	"context"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/studyhelper/studyhelper/internal/provider"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

const (
	name = "anthropic"
	// maxTokens caps a reply. The Messages API requires a value.
	maxTokens = 4096
)

type Config struct {
	APIKey  string
	BaseURL string
}

type Provider struct {
	client anthropicsdk.Client
}

func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, sherr.New(sherr.CodeProviderRequestInvalid, "anthropic: missing api_key in config", sherr.FieldProvider(name))
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{client: anthropicsdk.NewClient(opts...)}, nil
}

func (p *Provider) Name() string { return name }

func (p *Provider) Close() error { return nil }

func (p *Provider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, error) {
	out := make(chan provider.Chunk, 16)
	go func() {
		defer close(out)
		p.pump(ctx, newParams(req), out)
	}()
	return out, nil
}

func newParams(req provider.Request) anthropicsdk.MessageNewParams {
	return anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(req.Prompt)),
		},
	}
}

// pump forwards text deltas as they arrive and accumulates the events into
// a Message so the final usage can be reported once the stream ends.
func (p *Provider) pump(ctx context.Context, params anthropicsdk.MessageNewParams, out chan<- provider.Chunk) {
	stream := p.client.Messages.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	var msg anthropicsdk.Message
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			out <- provider.Chunk{Err: err}
			return
		}
		if ev, ok := event.AsAny().(anthropicsdk.ContentBlockDeltaEvent); ok {
			if d, ok := ev.Delta.AsAny().(anthropicsdk.TextDelta); ok && d.Text != "" {
				out <- provider.Chunk{Text: d.Text}
			}
		}
	}
	if err := stream.Err(); err != nil {
		out <- provider.Chunk{Err: err}
		return
	}
	out <- provider.Chunk{Usage: &provider.Usage{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}}
}
