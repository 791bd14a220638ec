// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package google_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/studyhelper/studyhelper/internal/provider"
	"github.com/studyhelper/studyhelper/internal/provider/google"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

var _ provider.Provider = (*google.Provider)(nil)

func response(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

// replay yields each item in turn: responses as results, errors as failures.
func replay(items ...any) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, it := range items {
			var more bool
			switch v := it.(type) {
			case error:
				more = yield(nil, v)
			case *genai.GenerateContentResponse:
				more = yield(v, nil)
			}
			if !more {
				return
			}
		}
	}
}

func constant(items ...any) google.StreamFunc {
	return func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return replay(items...)
	}
}

func TestNew(t *testing.T) {
	_, err := google.New(google.Config{})
	require.Error(t, err)
	assert.True(t, sherr.HasCode(err, sherr.CodeProviderRequestInvalid))

	p, err := google.New(google.Config{APIKey: "test-key", Endpoint: "http://localhost:9"})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.NoError(t, p.Close())
}

func TestStream_SendsPromptAsUserTurn(t *testing.T) {
	var gotModel string
	var gotContents []*genai.Content
	var gotConfig *genai.GenerateContentConfig
	p := google.NewWithStream(func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		gotModel, gotContents, gotConfig = model, contents, cfg
		last := response(&genai.Part{Text: "Paris."})
		last.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 2}
		return replay(response(&genai.Part{Text: "The capital is "}), last)
	})

	reply, err := provider.Complete(context.Background(), p, provider.Request{Model: "gemini-2.5-flash", Prompt: "capital of France?"})
	require.NoError(t, err)
	assert.Equal(t, "The capital is Paris.", reply.Text)
	assert.Equal(t, provider.Usage{InputTokens: 7, OutputTokens: 2}, reply.Usage)

	assert.Equal(t, "gemini-2.5-flash", gotModel)
	assert.Nil(t, gotConfig)
	require.Len(t, gotContents, 1)
	assert.Equal(t, "user", gotContents[0].Role)
	assert.Equal(t, "capital of France?", gotContents[0].Parts[0].Text)
}

func TestStream_SkipsThoughtsAndOtherCandidates(t *testing.T) {
	resp := response(
		&genai.Part{Text: "let me think", Thought: true},
		&genai.Part{Text: "42"},
	)
	resp.Candidates = append(resp.Candidates, &genai.Candidate{
		Content: &genai.Content{Parts: []*genai.Part{{Text: "43"}}},
	})
	p := google.NewWithStream(constant(&genai.GenerateContentResponse{}, resp))

	reply, err := provider.Complete(context.Background(), p, provider.Request{Model: "m", Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "42", reply.Text)
}

func TestStream_ErrorEndsStream(t *testing.T) {
	p := google.NewWithStream(constant(response(&genai.Part{Text: "partial"}), errors.New("Error 429, RESOURCE_EXHAUSTED")))

	ch, err := p.Stream(context.Background(), provider.Request{Model: "m", Prompt: "q"})
	require.NoError(t, err)
	var chunks []provider.Chunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	require.Len(t, chunks, 2)
	assert.Equal(t, "partial", chunks[0].Text)
	require.Error(t, chunks[1].Err)

	_, err = provider.Complete(context.Background(), p, provider.Request{Model: "m", Prompt: "q"})
	require.Error(t, err)
	assert.True(t, sherr.IsUpstreamFailure(err))
	assert.True(t, provider.IsRetryable(err))
	assert.Contains(t, err.Error(), "RESOURCE_EXHAUSTED")
}
