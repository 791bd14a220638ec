// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

//go:build windows

package config

import "io/fs"

// ExposedMode always reports false on Windows, where access is governed by
// ACLs rather than mode bits.
func ExposedMode(string) (fs.FileMode, bool) { return 0, false }

// WarnInsecurePermissions is a no-op on Windows.
func WarnInsecurePermissions(string) {}
