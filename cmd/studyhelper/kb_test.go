// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/knowledge"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func TestKBList(t *testing.T) {
	tests := []struct {
		name    string
		records []knowledge.Record
		want    string
	}{
		{
			name: "empty",
			want: "Knowledge base is empty.\n",
		},
		{
			name: "two records",
			records: []knowledge.Record{
				{Question: "What is Go?", Answer: "A language."},
				{Question: "What is a slice?", Answer: "A view of an array."},
			},
			want: "1. What is Go?\n   A language.\n2. What is a slice?\n   A view of an array.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			writeKB(t, dir, tt.records...)

			out, _, err := runCLI(t, "kb", "list", "--data-dir", dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestKBList_MissingFileIsEmpty(t *testing.T) {
	isolate(t)

	out, _, err := runCLI(t, "kb", "list", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Knowledge base is empty.\n", out)
}

func TestKBList_CorruptFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chatbot.json"), []byte("{not json"), 0o644))

	_, _, err := runCLI(t, "kb", "list", "--data-dir", dir)
	require.Error(t, err)
	assert.True(t, sherr.HasCode(err, sherr.CodeKnowledgeLoadInvalidFormat))
}

func TestKBExport(t *testing.T) {
	records := []knowledge.Record{{Question: "What is Go?", Answer: "A <typed> language."}}

	t.Run("json", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		path := writeKB(t, dir, records...)

		out, _, err := runCLI(t, "kb", "export", "--data-dir", dir)
		require.NoError(t, err)
		want, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(want), out)
	})

	t.Run("yaml", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		writeKB(t, dir, records...)

		out, _, err := runCLI(t, "kb", "export", "--format", "yaml", "--data-dir", dir)
		require.NoError(t, err)
		assert.Equal(t, "questions:\n  - question: What is Go?\n    answer: A <typed> language.\n", out)
	})

	t.Run("unknown format", func(t *testing.T) {
		isolate(t)

		_, _, err := runCLI(t, "kb", "export", "--format", "csv", "--data-dir", t.TempDir())
		require.Error(t, err)
		assert.True(t, sherr.HasCode(err, sherr.CodeCLIInputInvalid))
	})
}

func TestKBPath_DefaultBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, _, err := runCLI(t, "kb", "path", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chatbot.json")+" (json)\n", out)
}
