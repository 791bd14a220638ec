// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func init() {
	RegisterBackend("json", func(path string) (Store, error) {
		return NewJSONStore(path), nil
	})
}

// JSONStore keeps the Base in a single indented JSON document.
type JSONStore struct {
	path string
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore returns a store for the document at path. The file is not
// touched until the first Load or Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Location() string { return s.path }

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadFailure, "loading knowledge base", sherr.FieldPath(s.path))
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewBase(), nil
	}
	if err != nil {
		return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadFailure, "reading knowledge base", sherr.FieldPath(s.path))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return NewBase(), nil
	}

	var base Base
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadInvalidFormat, "decoding knowledge base", sherr.FieldPath(s.path))
	}
	return base.normalize(), nil
}

// Save writes base to a temp file beside the target and renames it into
// place, so a failed write never truncates the existing document.
func (s *JSONStore) Save(ctx context.Context, base *Base) error {
	if base == nil {
		return sherr.New(sherr.CodeKnowledgeInvalidInput, "saving nil knowledge base", sherr.FieldPath(s.path))
	}
	if err := ctx.Err(); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "saving knowledge base", sherr.FieldPath(s.path))
	}

	data, err := EncodeJSON(base)
	if err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "encoding knowledge base", sherr.FieldPath(s.path))
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "creating knowledge directory", sherr.FieldPath(dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "creating temp file", sherr.FieldPath(s.path))
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "writing knowledge base", sherr.FieldPath(s.path))
	}
	if err := tmp.Close(); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "flushing knowledge base", sherr.FieldPath(s.path))
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "setting knowledge base mode", sherr.FieldPath(s.path))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "replacing knowledge base", sherr.FieldPath(s.path))
	}
	return nil
}

// EncodeJSON renders base with 4-space indentation and without HTML
// escaping, ending in a newline.
func EncodeJSON(base *Base) ([]byte, error) {
	normalized := Base{Records: base.Records}
	normalized.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(&normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
