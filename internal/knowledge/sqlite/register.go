// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package sqlite provides the "sqlite" knowledge backend. Import it for its
// side effect of registering with the knowledge package.
package sqlite

import "github.com/studyhelper/studyhelper/internal/knowledge"

func init() {
	knowledge.RegisterBackend("sqlite", func(path string) (knowledge.Store, error) {
		st, err := New(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	})
}
