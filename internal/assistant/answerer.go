// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package assistant answers questions from the knowledge base and falls back
// to a remote model, learning every successful remote answer.
package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/studyhelper/studyhelper/internal/knowledge"
	"github.com/studyhelper/studyhelper/internal/matcher"
	"github.com/studyhelper/studyhelper/internal/provider"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Generator produces an answer for a prompt from a remote model.
// *provider.Caller implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Label() provider.Label
}

// Answerer picks between a stored answer and a remote one.
type Answerer struct {
	store  knowledge.Store
	gen    Generator
	logger *slog.Logger
}

// NewAnswerer returns an Answerer that persists learned pairs to store.
func NewAnswerer(store knowledge.Store, gen Generator, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		store:  store,
		gen:    gen,
		logger: logger,
	}
}

// Label returns the display label of the remote model.
func (a *Answerer) Label() provider.Label {
	return a.gen.Label()
}

// Answer returns the stored answer of the closest question in kb, or asks the
// remote model. A successful remote answer is appended to kb and the whole
// base is saved before returning. A failed remote call comes back as a
// KindError Result with kb untouched. The error return is reserved for
// storage failures.
func (a *Answerer) Answer(ctx context.Context, query string, kb *knowledge.Base) (Result, error) {
	if kb == nil {
		return Result{}, sherr.New(sherr.CodeAssistantInputInvalid, "knowledge base is nil")
	}

	if match, ok := matcher.FindBestMatch(query, kb.Questions()); ok {
		if rec, found := kb.Lookup(match); found {
			if a.logger.Enabled(ctx, slog.LevelDebug) {
				a.logger.Debug("answered from knowledge base",
					"source", SourceLocal,
					"score", matcher.Similarity(query, match),
					"matched", rec.Question,
				)
			}
			return okResult(rec.Answer, SourceLocal), nil
		}
	}

	text, err := a.gen.Generate(ctx, query)
	if err != nil {
		a.logger.Warn("remote answer failed", "source", SourceRemote, "code", sherr.CodeOf(err), "error", err)
		return errorResult(err), nil
	}
	text = strings.TrimSpace(text)

	n := kb.Len()
	kb.Append(knowledge.Record{Question: query, Answer: text})
	if err := a.store.Save(ctx, kb); err != nil {
		// Keep memory and storage in step.
		kb.Records = kb.Records[:n]
		return Result{}, err
	}

	a.logger.Debug("learned remote answer", "source", SourceRemote, "records", kb.Len(), "path", a.store.Location())
	return okResult(text, SourceRemote), nil
}
