// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package openai answers prompts with the OpenAI Chat Completions API, or any
// server that speaks it.
package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/studyhelper/studyhelper/internal/provider"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

const name = "openai"

type Config struct {
	APIKey string
	// BaseURL points the client at a compatible server, including the /v1
	// suffix.
	BaseURL string
}

type Provider struct {
	client openaisdk.Client
}

func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, sherr.New(sherr.CodeProviderRequestInvalid, "openai: missing api_key in config", sherr.FieldProvider(name))
	}
	// provider.Retrier owns retries.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{client: openaisdk.NewClient(opts...)}, nil
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

// newParams asks for the prompt as a single user turn, with token usage
// appended to the stream.
func newParams(req provider.Request) openaisdk.ChatCompletionNewParams {
	return openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage(req.Prompt)},
		StreamOptions: openaisdk.ChatCompletionStreamOptionsParam{
			IncludeUsage: param.NewOpt(true),
		},
	}
}

func (p *Provider) pump(ctx context.Context, params openaisdk.ChatCompletionNewParams, out chan<- provider.Chunk) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		chunk := stream.Current()
		// Only the first choice is read; n is never raised above 1.
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			out <- provider.Chunk{Text: chunk.Choices[0].Delta.Content}
		}
		if u := chunk.Usage; u.PromptTokens > 0 || u.CompletionTokens > 0 {
			out <- provider.Chunk{Usage: &provider.Usage{
				InputTokens:  int(u.PromptTokens),
				OutputTokens: int(u.CompletionTokens),
			}}
		}
	}
	if err := stream.Err(); err != nil {
		out <- provider.Chunk{Err: err}
	}
}
