// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package knowledge

import (
	"context"
	"sort"
	"sync"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// DefaultBackend is used when no backend name is configured.
const DefaultBackend = "json"

// Store loads and saves a Base.
type Store interface {
	// Load reads the backing store. A store that does not exist yet yields
	// an empty Base and no error. Unreadable or corrupt data yields a
	// knowledge.load.* error.
	Load(ctx context.Context) (*Base, error)

	// Save overwrites the backing store with the full Base.
	Save(ctx context.Context, base *Base) error

	// Location describes where the data lives, for display.
	Location() string

	Close() error
}

// Factory opens a Store at path.
type Factory func(path string) (Store, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a named backend. Backend packages call this from
// init(). It is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates the Store for backend at path. An empty backend selects
// DefaultBackend.
func Open(backend, path string) (Store, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	if path == "" {
		return nil, sherr.New(sherr.CodeKnowledgeInvalidInput, "knowledge path must not be empty")
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, sherr.New(sherr.CodeKnowledgeBackendUnsupported, "unsupported knowledge backend",
			sherr.Field("backend", backend),
			sherr.Field("available", Backends()),
		)
	}

	return factory(path)
}
