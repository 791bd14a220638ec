// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package google answers prompts with the Gemini API.
package google

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/studyhelper/studyhelper/internal/provider"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

const name = "google"

type Config struct {
	APIKey string
	// Endpoint overrides the Gemini API base URL.
	Endpoint string
}

// streamer is the slice of genai.Models the provider calls.
type streamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type Provider struct {
	models streamer
}

func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, sherr.New(sherr.CodeProviderRequestInvalid, "google: missing api_key in config", sherr.FieldProvider(name))
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, sherr.Wrapf(err, sherr.CodeProviderUpstreamFailure, "google: creating client")
	}
	return &Provider{models: client.Models}, nil
}

func (p *Provider) Name() string { return name }

func (p *Provider) Close() error { return nil }

func (p *Provider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, error) {
	out := make(chan provider.Chunk, 16)
	go func() {
		defer close(out)
		p.pump(ctx, req, out)
	}()
	return out, nil
}

// userTurn wraps prompt as the single user turn of a conversation.
func userTurn(prompt string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
}

// pump forwards the text parts of the first candidate. Thought parts are
// skipped; the usage of the last response is sent once the stream ends.
func (p *Provider) pump(ctx context.Context, req provider.Request, out chan<- provider.Chunk) {
	var usage *genai.GenerateContentResponseUsageMetadata
	for resp, err := range p.models.GenerateContentStream(ctx, req.Model, userTurn(req.Prompt), nil) {
		if err != nil {
			out <- provider.Chunk{Err: err}
			return
		}
		if resp.UsageMetadata != nil {
			usage = resp.UsageMetadata
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" && !part.Thought {
				out <- provider.Chunk{Text: part.Text}
			}
		}
	}
	if usage != nil {
		out <- provider.Chunk{Usage: &provider.Usage{
			InputTokens:  int(usage.PromptTokenCount),
			OutputTokens: int(usage.CandidatesTokenCount),
		}}
	}
}
