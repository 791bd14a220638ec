// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// DefaultConfigYAML is the commented config written on first run.
//
//go:embed studyhelper.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns the per-user config file,
// ~/.config/studyhelper/studyhelper.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", sherr.Errorf(sherr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "studyhelper", "studyhelper.yaml"), nil
}

// WriteDefaultConfig creates path holding DefaultConfigYAML, readable by the
// owner only. An existing file is never touched: it reports false and no
// error.
func WriteDefaultConfig(path string) (bool, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, sherr.Wrap(err, sherr.CodeConfigWriteFailure, "creating config directory", sherr.FieldPath(dir))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, sherr.Wrap(err, sherr.CodeConfigWriteFailure, "creating config file", sherr.FieldPath(path))
	}

	_, err = f.Write(DefaultConfigYAML)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return false, sherr.Wrap(err, sherr.CodeConfigWriteFailure, "writing config file", sherr.FieldPath(path))
	}
	return true, nil
}

// BootstrapConfig writes the default config on first run and returns its
// path, or "" when nothing was written. Running on defaults works without a
// file, so problems are only logged at debug.
func BootstrapConfig() string {
	path, err := DefaultConfigPath()
	if err == nil {
		var created bool
		if created, err = WriteDefaultConfig(path); created {
			slog.Info("created default config", "path", path)
			return path
		}
	}
	if err != nil {
		slog.Debug("config bootstrap skipped", "error", err)
	}
	return ""
}
