// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/config"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studyhelper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, config.KnowledgeConfig{Backend: "json", Path: "chatbot.json"}, cfg.Knowledge)
		assert.Equal(t, config.ModelsConfig{Default: "google/gemini-2.5-flash"}, cfg.Models)
		assert.Equal(t, config.LoggingConfig{Level: "info", Format: "text"}, cfg.Logging)
	})

	t.Run("file", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, `
knowledge:
  backend: sqlite
  path: kb.db
models:
  default: openai/gpt-4o-mini
  max_retries: 3
  timeout: 45s
providers:
  openai:
    api_key: test-key
    endpoint: http://localhost:8080/v1
`))
		require.NoError(t, err)
		assert.Equal(t, config.KnowledgeConfig{Backend: "sqlite", Path: "kb.db"}, cfg.Knowledge)
		assert.Equal(t, config.ModelsConfig{Default: "openai/gpt-4o-mini", MaxRetries: 3, Timeout: 45 * time.Second}, cfg.Models)
		assert.Equal(t, config.ProviderConfig{APIKey: "test-key", Endpoint: "http://localhost:8080/v1"}, cfg.Providers["openai"])
		assert.Equal(t, "openai", cfg.DefaultProvider())
	})

	t.Run("environment wins over defaults", func(t *testing.T) {
		t.Setenv("STUDYHELPER_KNOWLEDGE_PATH", "/tmp/elsewhere.json")
		t.Setenv("STUDYHELPER_PROVIDERS_GOOGLE_API_KEY", "env-key")
		t.Setenv("STUDYHELPER_MODELS_TIMEOUT", "5s")

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/elsewhere.json", cfg.Knowledge.Path)
		assert.Equal(t, "env-key", cfg.Providers["google"].APIKey)
		assert.Equal(t, 5*time.Second, cfg.Models.Timeout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, sherr.HasCode(err, sherr.CodeConfigLoadReadFailure))
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "knowledge:\n  backend: postgres\n"))
		require.Error(t, err)
		assert.True(t, sherr.HasCode(err, sherr.CodeConfigValidateInvalidValue))
		assert.Contains(t, err.Error(), "knowledge.backend")
	})

	t.Run("bundled default file", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, string(config.DefaultConfigYAML)))
		require.NoError(t, err)
		assert.Equal(t, "google/gemini-2.5-flash", cfg.Models.Default)
		assert.Equal(t, "json", cfg.Knowledge.Backend)
	})
}

func TestFromViper_SharedInstance(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("models.default", "anthropic/claude-sonnet-4-5")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.DefaultProvider())
}

func baseConfig() *config.Config {
	return &config.Config{
		Knowledge: config.KnowledgeConfig{Backend: "json", Path: "chatbot.json"},
		Models:    config.ModelsConfig{Default: "google/gemini-2.5-flash"},
		Logging:   config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string // one substring per expected error, in order
	}{
		{"base config", func(*config.Config) {}, nil},
		{"sqlite backend", func(c *config.Config) { c.Knowledge.Backend = "sqlite" }, nil},
		{"unknown backend", func(c *config.Config) { c.Knowledge.Backend = "postgres" }, []string{"knowledge.backend"}},
		{"blank path", func(c *config.Config) { c.Knowledge.Path = "  " }, []string{"knowledge.path"}},
		{"openai default", func(c *config.Config) { c.Models.Default = "openai/gpt-4o-mini" }, nil},
		{"anthropic default", func(c *config.Config) { c.Models.Default = "anthropic/claude-sonnet-4-5" }, nil},
		{"empty default", func(c *config.Config) { c.Models.Default = "" }, []string{"models.default must not be empty"}},
		{"default without provider", func(c *config.Config) { c.Models.Default = "gemini-2.5-flash" }, []string{"provider/model"}},
		{"default with unknown provider", func(c *config.Config) { c.Models.Default = "mistral/large" }, []string{"unknown provider"}},
		{"negative retry and timeout", func(c *config.Config) {
			c.Models.MaxRetries = -1
			c.Models.Timeout = -time.Second
		}, []string{"models.max_retries", "models.timeout"}},
		{"upper case level", func(c *config.Config) { c.Logging.Level = "WARN" }, nil},
		{"json logs", func(c *config.Config) { c.Logging.Format = "json" }, nil},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "trace" }, []string{"logging.level"}},
		{"unknown format", func(c *config.Config) { c.Logging.Format = "logfmt" }, []string{"logging.format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, len(tt.want), "%v", errs)
			for i, want := range tt.want {
				assert.Contains(t, errs[i].Error(), want)
				assert.True(t, sherr.HasCode(errs[i], sherr.CodeConfigValidateInvalidValue))
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	// backend, path, models.default, logging.level, logging.format
	assert.Len(t, (&config.Config{}).Validate(), 5)
}

func TestPaths(t *testing.T) {
	cfg := baseConfig()
	assert.Equal(t, "chatbot.json", cfg.KnowledgePath())
	assert.Equal(t, config.DefaultLogFileName, cfg.LogPath())

	cfg.DataDir = "/var/lib/studyhelper"
	assert.Equal(t, "/var/lib/studyhelper/chatbot.json", cfg.KnowledgePath())
	assert.Equal(t, "/var/lib/studyhelper/studyhelper.log", cfg.LogPath())

	cfg.Knowledge.Path = "/srv/kb.json"
	cfg.Logging.File = "/var/log/sh.log"
	assert.Equal(t, "/srv/kb.json", cfg.KnowledgePath(), "absolute paths ignore the data dir")
	assert.Equal(t, "/var/log/sh.log", cfg.LogPath())
}

func TestProviderFromModel(t *testing.T) {
	for ref, want := range map[string]string{
		"google/gemini-2.5-flash": "google",
		"openai/org/model":        "openai",
		"plain":                   "plain",
		"/leading":                "/leading",
	} {
		assert.Equal(t, want, config.ProviderFromModel(ref), ref)
	}
}
