// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import "context"

// Provider streams a model's reply to a single prompt. The channel returned
// by Stream is closed when the reply ends; a Chunk carrying Err is always the
// last one sent.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
	Close() error
}

// Request is one question for a model.
type Request struct {
	Model  string
	Prompt string
}

// Chunk is a piece of a streamed reply.
type Chunk struct {
	Text  string
	Usage *Usage
	Err   error
}

// Usage is the token count a backend reported for one reply.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Label is how a provider is named to the user. Name prefixes failure
// messages ("Gemini Error: ...") and Source is the provenance tag
// ("(Gemini AI)").
type Label struct {
	Name   string
	Source string
}

var labels = map[string]Label{
	"google":    {Name: "Gemini", Source: "Gemini AI"},
	"openai":    {Name: "OpenAI", Source: "OpenAI"},
	"anthropic": {Name: "Claude", Source: "Claude"},
}

// LabelFor returns the display label of the named provider. Unknown
// providers are labelled with their own name.
func LabelFor(name string) Label {
	if l, ok := labels[name]; ok {
		return l
	}
	return Label{Name: name, Source: name}
}
