// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package config

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// EnvPrefix is the prefix for environment variable overrides
// (e.g. STUDYHELPER_MODELS_DEFAULT).
const EnvPrefix = "STUDYHELPER"

// DefaultLogFileName is the chat log written under the data directory when
// logging.file is unset.
const DefaultLogFileName = "studyhelper.log"

// Config is the top-level studyhelper configuration.
type Config struct {
	DataDir   string                    `mapstructure:"data_dir"`
	Verbose   bool                      `mapstructure:"verbose"`
	Knowledge KnowledgeConfig           `mapstructure:"knowledge"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    ModelsConfig              `mapstructure:"models"`
	Logging   LoggingConfig             `mapstructure:"logging"`
}

// KnowledgeConfig selects where learned question/answer pairs live.
type KnowledgeConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// ProviderConfig holds credentials and endpoint for an LLM provider.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// ModelsConfig controls model selection and the remote call policy.
type ModelsConfig struct {
	Default    string        `mapstructure:"default"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LoggingConfig controls the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// KnownProviders lists the provider names that have a backend.
var KnownProviders = []string{"google", "openai", "anthropic"}

var (
	validBackends = map[string]bool{"json": true, "sqlite": true}
	validLevels   = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats  = map[string]bool{"text": true, "json": true}
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("verbose", false)
	v.SetDefault("knowledge.backend", "json")
	v.SetDefault("knowledge.path", "chatbot.json")
	v.SetDefault("models.default", "google/gemini-2.5-flash")
	v.SetDefault("models.max_retries", 0)
	v.SetDefault("models.timeout", time.Duration(0))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	// Provider keys have no default, but registering them lets AutomaticEnv
	// pick up STUDYHELPER_PROVIDERS_<NAME>_API_KEY during Unmarshal.
	for _, name := range KnownProviders {
		v.SetDefault("providers."+name+".api_key", "")
		v.SetDefault("providers."+name+".endpoint", "")
	}
}

// SetupEnv binds STUDYHELPER_-prefixed environment variables.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix STUDYHELPER_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sherr.Errorf(sherr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sherr.Errorf(sherr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sherr.Errorf(sherr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate reports every invalid setting in c, not just the first.
func (c *Config) Validate() []error {
	var p problems

	p.check(validBackends[c.Knowledge.Backend],
		"knowledge.backend must be one of [json, sqlite], got %q", c.Knowledge.Backend)
	p.check(strings.TrimSpace(c.Knowledge.Path) != "", "knowledge.path must not be empty")

	ref := c.Models.Default
	name, _, hasSlash := strings.Cut(ref, "/")
	switch {
	case ref == "":
		p.add("models.default must not be empty")
	case !hasSlash:
		p.add("models.default must be in \"provider/model\" format, got %q", ref)
	default:
		p.check(slices.Contains(KnownProviders, name),
			"models.default %q references unknown provider %q (known: %s)",
			ref, name, strings.Join(KnownProviders, ", "))
	}
	p.check(c.Models.MaxRetries >= 0, "models.max_retries must not be negative, got %d", c.Models.MaxRetries)
	p.check(c.Models.Timeout >= 0, "models.timeout must not be negative, got %s", c.Models.Timeout)

	p.check(validLevels[strings.ToLower(c.Logging.Level)],
		"logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level)
	p.check(validFormats[strings.ToLower(c.Logging.Format)],
		"logging.format must be one of [text, json], got %q", c.Logging.Format)

	return p
}

type problems []error

func (p *problems) add(format string, args ...any) {
	*p = append(*p, sherr.Errorf(sherr.CodeConfigValidateInvalidValue, "config: "+format, args...))
}

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		p.add(format, args...)
	}
}

// KnowledgePath returns the knowledge base location. Relative paths are
// resolved against DataDir when one is set, otherwise against the working
// directory.
func (c *Config) KnowledgePath() string {
	return c.resolve(c.Knowledge.Path)
}

// LogPath returns the file the interactive chat logs to.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return c.resolve(c.Logging.File)
	}
	return c.resolve(DefaultLogFileName)
}

// DefaultProvider returns the provider half of models.default.
func (c *Config) DefaultProvider() string {
	return ProviderFromModel(c.Models.Default)
}

func (c *Config) resolve(p string) string {
	if c.DataDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// ProviderFromModel extracts the provider prefix from a "provider/model" string.
func ProviderFromModel(model string) string {
	if idx := strings.Index(model, "/"); idx > 0 {
		return model[:idx]
	}
	return model
}
