// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"context"
	"log/slog"
	"sort"

	"github.com/spf13/viper"

	"github.com/studyhelper/studyhelper/internal/assistant"
	"github.com/studyhelper/studyhelper/internal/config"
	"github.com/studyhelper/studyhelper/internal/knowledge"
	_ "github.com/studyhelper/studyhelper/internal/knowledge/sqlite" // register sqlite backend
	"github.com/studyhelper/studyhelper/internal/provider"
	anthropicprov "github.com/studyhelper/studyhelper/internal/provider/anthropic"
	googleprov "github.com/studyhelper/studyhelper/internal/provider/google"
	openaiprov "github.com/studyhelper/studyhelper/internal/provider/openai"
	"github.com/studyhelper/studyhelper/internal/secrets"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// App holds the wired subsystems of one session and manages their lifecycle.
type App struct {
	Config   *config.Config
	Registry *provider.Registry
	Caller   *provider.Caller
	Session  *assistant.Session
}

// loadConfig resolves keyring references in the global viper and decodes
// the result. An unresolvable reference leaves that provider unconfigured.
func loadConfig() (*config.Config, error) {
	v := viper.GetViper()
	if err := secrets.ResolveViperSecrets(v, secretStoreFactory()); err != nil {
		slog.Warn("unresolved keyring references", "error", err)
	}
	return config.FromViper(v)
}

// openKnowledge opens the configured knowledge backend.
func openKnowledge(cfg *config.Config) (knowledge.Store, error) {
	store, err := knowledge.Open(cfg.Knowledge.Backend, cfg.KnowledgePath())
	if err != nil {
		return nil, sherr.Wrapf(err, sherr.CodeCLISetupFailure, "opening %s knowledge base", cfg.Knowledge.Backend)
	}
	return store, nil
}

// WireApp creates the provider registry, the knowledge store and a Session
// on top of them. A missing key for the default provider is fatal.
func WireApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	reg := provider.NewRegistry()
	registerBuiltinProviders(cfg, reg, logger)

	if err := reg.SetDefault(cfg.Models.Default); err != nil {
		_ = reg.Close()
		if sherr.HasCode(err, sherr.CodeProviderNotFound) {
			name := cfg.DefaultProvider()
			return nil, sherr.New(sherr.CodeCLISetupFailure,
				"no API key configured for "+name+"; run `studyhelper secret set "+name+"` or set providers."+name+".api_key",
				sherr.FieldProvider(name),
			)
		}
		return nil, sherr.Wrapf(err, sherr.CodeCLISetupFailure, "setting default model %s", cfg.Models.Default)
	}

	store, err := openKnowledge(cfg)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	caller := provider.NewCaller(reg, provider.CallerOptions{
		MaxRetries: cfg.Models.MaxRetries,
		Timeout:    cfg.Models.Timeout,
		Logger:     logger,
	})
	answerer := assistant.NewAnswerer(store, caller, logger)

	return &App{
		Config:   cfg,
		Registry: reg,
		Caller:   caller,
		Session:  assistant.NewSession(ctx, store, answerer, logger),
	}, nil
}

// Close closes the session, which closes the knowledge store, and then the
// providers.
func (a *App) Close() error {
	return sherr.Join(a.Session.Close(), a.Registry.Close())
}

// providerFactory builds a provider.Provider from a ProviderConfig.
type providerFactory func(config.ProviderConfig) (provider.Provider, error)

// builtinProviderFactories maps provider names to their constructors.
// Declared as a variable so tests can inject fakes.
var builtinProviderFactories = map[string]providerFactory{
	"anthropic": func(pc config.ProviderConfig) (provider.Provider, error) {
		return anthropicprov.New(anthropicprov.Config{APIKey: pc.APIKey, BaseURL: pc.Endpoint})
	},
	"google": func(pc config.ProviderConfig) (provider.Provider, error) {
		return googleprov.New(googleprov.Config{APIKey: pc.APIKey, Endpoint: pc.Endpoint})
	},
	"openai": func(pc config.ProviderConfig) (provider.Provider, error) {
		return openaiprov.New(openaiprov.Config{APIKey: pc.APIKey, BaseURL: pc.Endpoint})
	},
}

// registerBuiltinProviders registers every configured provider that has an
// API key. Unknown names, empty keys and constructor failures are logged and
// skipped; WireApp decides whether the default survived.
func registerBuiltinProviders(cfg *config.Config, reg *provider.Registry, logger *slog.Logger) {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		if pc.APIKey == "" {
			logger.Debug("skipping provider with empty API key", "provider", name)
			continue
		}
		factory, ok := builtinProviderFactories[name]
		if !ok {
			logger.Warn("unknown provider in config, skipping", "provider", name)
			continue
		}
		p, err := factory(pc)
		if err != nil {
			logger.Warn("failed to create provider", "provider", name, "error", err)
			continue
		}
		reg.Register(name, p)
		logger.Debug("registered provider", "provider", name)
	}
}
