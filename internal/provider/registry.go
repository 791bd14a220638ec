// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"slices"
	"strings"
	"sync"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

type entry struct {
	p      Provider
	health *HealthTracker
}

// Registry holds the configured providers, each with its own health record,
// and resolves "provider/model" references against them.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultRef string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds p under name. Registering a name again replaces the provider
// and resets its health.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	r.entries[name] = entry{p: p, health: MustHealthTracker()}
	r.mu.Unlock()
}

func notFound(name string) error {
	return sherr.New(sherr.CodeProviderNotFound, "provider not found: "+name, sherr.FieldProvider(name))
}

// Health returns the health record of the named provider.
func (r *Registry) Health(name string) (*HealthTracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.health, ok
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetDefault makes ref the model used when Route gets no reference. Its
// provider must already be registered.
func (r *Registry) SetDefault(ref string) error {
	name, model, err := ParseRef(ref)
	if err != nil {
		return err
	}
	if model == "" {
		return sherr.Errorf(sherr.CodeProviderInvalidModelRef, "model ref %q has no model part", ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return sherr.New(sherr.CodeProviderNotFound, "default provider not registered: "+name, sherr.FieldProvider(name))
	}
	r.defaultRef = ref
	return nil
}

func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultRef
}

// Route resolves ref, or the default when ref is empty or "default", to a
// provider and a bare model name. A provider in its failure cooldown is
// still returned since there is nothing to fail over to.
func (r *Registry) Route(ref string) (Provider, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ref == "" || ref == "default" {
		ref = r.defaultRef
	}
	if ref == "" {
		return nil, "", sherr.New(sherr.CodeProviderNoDefault, "no default provider configured")
	}

	name, model, err := ParseRef(ref)
	if err != nil {
		return nil, "", err
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, "", notFound(name)
	}
	return e.p, model, nil
}

// Close closes every registered provider and joins their errors.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range r.entries {
		if err := e.p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return sherr.Join(errs...)
}

// ParseRef splits "provider/model" at the first slash, so model names may
// themselves contain slashes.
func ParseRef(ref string) (name, model string, err error) {
	name, model, ok := strings.Cut(ref, "/")
	if !ok || name == "" {
		return "", "", sherr.Errorf(sherr.CodeProviderInvalidModelRef,
			"model ref %q must use provider/model format", ref)
	}
	return name, model, nil
}
