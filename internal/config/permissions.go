// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// sharedBits are the mode bits that give anyone but the owner access.
const sharedBits fs.FileMode = 0o077

// ExposedMode reports the permission bits of the config file at path when
// they let other users read or modify it. A config may hold inline API keys.
func ExposedMode(path string) (fs.FileMode, bool) {
	if path == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("config permission check skipped", "path", path, "error", err)
		return 0, false
	}
	perm := info.Mode().Perm()
	return perm, perm&sharedBits != 0
}

// WarnInsecurePermissions logs a warning when ExposedMode flags path.
// It never fails.
func WarnInsecurePermissions(path string) {
	if perm, exposed := ExposedMode(path); exposed {
		slog.Warn("config file is accessible to other users; inline api keys may leak",
			"path", path,
			"mode", perm,
			"recommended", "0600",
		)
	}
}
