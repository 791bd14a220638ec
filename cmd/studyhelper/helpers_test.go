// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/config"
	"github.com/studyhelper/studyhelper/internal/knowledge"
	"github.com/studyhelper/studyhelper/internal/provider"
)

// runCLI executes a fresh root command with args and returns what it wrote
// to stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// isolate gives a test a fresh global viper, a temporary HOME and no
// inherited provider keys.
func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	for _, name := range config.KnownProviders {
		t.Setenv("STUDYHELPER_PROVIDERS_"+strings.ToUpper(name)+"_API_KEY", "")
	}
}

// writeKB writes records to dir/chatbot.json and returns the path.
func writeKB(t *testing.T, dir string, records ...knowledge.Record) string {
	t.Helper()
	data, err := knowledge.EncodeJSON(knowledge.NewBase(records...))
	require.NoError(t, err)
	path := filepath.Join(dir, "chatbot.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readKB(t *testing.T, path string) *knowledge.Base {
	t.Helper()
	base, err := knowledge.NewJSONStore(path).Load(context.Background())
	require.NoError(t, err)
	return base
}

// stubProvider answers every prompt with the same text, or fails with a
// stream error when errText is set.
type stubProvider struct {
	name    string
	text    string
	errText string

	mu     sync.Mutex
	calls  int
	prompt string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Close() error { return nil }

func (s *stubProvider) Stream(_ context.Context, req provider.Request) (<-chan provider.Chunk, error) {
	s.mu.Lock()
	s.calls++
	s.prompt = req.Prompt
	s.mu.Unlock()

	ch := make(chan provider.Chunk, 1)
	if s.errText != "" {
		ch <- provider.Chunk{Err: errors.New(s.errText)}
	} else {
		ch <- provider.Chunk{Text: s.text}
	}
	close(ch)
	return ch, nil
}

func (s *stubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// useStubProvider registers stub as the google backend and configures a
// key for it.
func useStubProvider(t *testing.T, stub *stubProvider) {
	t.Helper()
	orig := builtinProviderFactories
	builtinProviderFactories = map[string]providerFactory{
		"google": func(pc config.ProviderConfig) (provider.Provider, error) {
			require.Equal(t, "test-key", pc.APIKey)
			return stub, nil
		},
	}
	t.Cleanup(func() { builtinProviderFactories = orig })
	t.Setenv("STUDYHELPER_PROVIDERS_GOOGLE_API_KEY", "test-key")
}
