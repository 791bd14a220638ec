// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/config"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func TestGenerateConfigYAML(t *testing.T) {
	tests := []struct {
		provider string
		checks   []string
	}{
		{"google", []string{"keyring://studyhelper/google", "google/gemini-2.5-flash"}},
		{"openai", []string{"keyring://studyhelper/openai", "openai/gpt-4o-mini"}},
		{"anthropic", []string{"keyring://studyhelper/anthropic", "anthropic/claude-sonnet-4-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			result := initResult{Provider: tt.provider, APIKey: "plain-secret-value"}
			yaml := GenerateConfigYAML(result)
			for _, check := range tt.checks {
				assert.Contains(t, yaml, check)
			}
			assert.NotContains(t, yaml, result.APIKey, "plain-text API key must not appear in YAML")
		})
	}
}

func TestGenerateConfigYAML_LoadsAsValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyhelper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(GenerateConfigYAML(initResult{Provider: "anthropic"})), 0o600))

	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", cfg.Models.Default)
	assert.Equal(t, "keyring://studyhelper/anthropic", cfg.Providers["anthropic"].APIKey)
}

func TestStoreSecretAndWriteConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "studyhelper.yaml")
	origPath := configPathForWrite
	configPathForWrite = func() (string, error) { return cfgPath, nil }
	t.Cleanup(func() { configPathForWrite = origPath })

	store := newMemStore()
	result := initResult{Provider: "google", APIKey: "AIza-secret"}

	path, err := storeSecretAndWriteConfig(result, store, false)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
	assert.Equal(t, "AIza-secret", store.data["google"])

	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "AIza-secret")

	// A second run refuses to overwrite without force.
	_, err = storeSecretAndWriteConfig(result, store, false)
	require.Error(t, err)
	assert.True(t, sherr.HasCode(err, sherr.CodeConfigWriteAlreadyExists))

	_, err = storeSecretAndWriteConfig(initResult{Provider: "openai", APIKey: "sk"}, store, true)
	require.NoError(t, err)
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openai/gpt-4o-mini")
}

func TestInitCommand_RequiresTerminal(t *testing.T) {
	isolate(t)

	_, err := runCLIWithInput(t, "", "init")
	require.Error(t, err)
	assert.True(t, sherr.HasCode(err, sherr.CodeCLISetupFailure))
}
