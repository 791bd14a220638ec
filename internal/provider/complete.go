// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"context"
	"errors"
	"strings"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Reply is a finished model answer.
type Reply struct {
	Text  string
	Usage Usage
}

// Complete streams req from p and joins the chunks into one answer, trimmed
// of surrounding whitespace. A stream error, an expired context and an empty
// answer are all errors.
func Complete(ctx context.Context, p Provider, req Request) (Reply, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Reply{}, sherr.New(sherr.CodeProviderRequestInvalid, "prompt is empty", sherr.FieldProvider(p.Name()))
	}

	chunks, err := p.Stream(ctx, req)
	if err != nil {
		return Reply{}, classify(ctx, err, p.Name(), req.Model)
	}

	var (
		text      strings.Builder
		usage     Usage
		streamErr error
	)
	for c := range chunks {
		switch {
		case c.Err != nil:
			streamErr = c.Err
		case c.Usage != nil:
			usage = *c.Usage
		default:
			text.WriteString(c.Text)
		}
	}

	if streamErr == nil {
		streamErr = ctx.Err()
	}
	if streamErr != nil {
		return Reply{}, classify(ctx, streamErr, p.Name(), req.Model)
	}

	answer := strings.TrimSpace(text.String())
	if answer == "" {
		return Reply{}, sherr.New(sherr.CodeProviderResponseInvalid, "empty response from model",
			sherr.FieldProvider(p.Name()),
			sherr.Field("model", req.Model),
		)
	}
	return Reply{Text: answer, Usage: usage}, nil
}

func classify(ctx context.Context, err error, name, model string) error {
	attrs := []sherr.Attr{sherr.FieldProvider(name), sherr.Field("model", model)}
	if sherr.HasArea(err, "provider") {
		return sherr.With(err, attrs...)
	}
	code := sherr.CodeProviderUpstreamFailure
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		code = sherr.CodeProviderCallTimeout
	}
	return sherr.Wrap(err, code, "calling model", attrs...)
}
