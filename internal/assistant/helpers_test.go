// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package assistant_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/knowledge"
	"github.com/studyhelper/studyhelper/internal/provider"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls = append(g.calls, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGenerator) Label() provider.Label { return provider.LabelFor("google") }

// countingStore wraps a real store and counts writes.
type countingStore struct {
	knowledge.Store
	saves   int
	saveErr error
	loadErr error
	closes  int
}

func (s *countingStore) Load(ctx context.Context) (*knowledge.Base, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Store.Load(ctx)
}

func (s *countingStore) Save(ctx context.Context, b *knowledge.Base) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, b)
}

func (s *countingStore) Close() error {
	s.closes++
	return s.Store.Close()
}

// newStore returns a JSON store in a temp dir seeded with content, or with no
// file at all when content is empty.
func newStore(t *testing.T, content string) (*countingStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatbot.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return &countingStore{Store: knowledge.NewJSONStore(path)}, path
}

func reload(t *testing.T, path string) *knowledge.Base {
	t.Helper()
	kb, err := knowledge.NewJSONStore(path).Load(context.Background())
	require.NoError(t, err)
	return kb
}

var errQuota = errors.New("429 RESOURCE_EXHAUSTED: quota exceeded")
