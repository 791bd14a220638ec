// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package secrets_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhelper/studyhelper/internal/secrets"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func TestParseKeyringURI(t *testing.T) {
	tests := []struct {
		uri       string
		isKeyring bool
		service   string
		key       string
	}{
		{uri: "keyring://studyhelper/google", isKeyring: true, service: "studyhelper", key: "google"},
		{uri: "keyring://studyhelper/exam/prep", isKeyring: true, service: "studyhelper", key: "exam/prep"},
		{uri: "keyring://studyhelper/", isKeyring: true},
		{uri: "keyring:///google", isKeyring: true},
		{uri: "keyring://studyhelper", isKeyring: true},
		{uri: "keyring://", isKeyring: true},
		{uri: "AIza-plain-key"},
		{uri: "${GEMINI_API_KEY}"},
		{uri: ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.isKeyring, secrets.IsKeyringURI(tt.uri))

			svc, key, err := secrets.ParseKeyringURI(tt.uri)
			if tt.key == "" {
				require.Error(t, err)
				assert.True(t, sherr.HasCode(err, sherr.CodeSecretInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.service, svc)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestProviderKeyURI_RoundTrips(t *testing.T) {
	for _, name := range []string{"google", "openai", "anthropic"} {
		uri := secrets.ProviderKeyURI(name)
		assert.Equal(t, "keyring://studyhelper/"+name, uri)

		svc, key, err := secrets.ParseKeyringURI(uri)
		require.NoError(t, err)
		assert.Equal(t, secrets.DefaultService, svc)
		assert.Equal(t, name, key)
	}
}

func TestResolveKeyringURI(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store("resolve", "google", "AIza-resolved"))

	got, err := secrets.ResolveKeyringURI(ks, "keyring://resolve/google")
	require.NoError(t, err)
	assert.Equal(t, "AIza-resolved", got)

	got, err = secrets.ResolveKeyringURI(ks, "AIza-literal")
	require.NoError(t, err)
	assert.Equal(t, "AIza-literal", got, "plain values pass through")

	_, err = secrets.ResolveKeyringURI(ks, "keyring://resolve/openai")
	require.Error(t, err)
	assert.True(t, sherr.HasArea(err, "secret"))

	_, err = secrets.ResolveKeyringURI(ks, "keyring://resolve")
	assert.True(t, sherr.HasCode(err, sherr.CodeSecretInvalidInput))
}

func TestResolveViperSecrets(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store(secrets.DefaultService, "google", "AIza-from-keyring"))

	v := viper.New()
	v.Set("providers.google.api_key", secrets.ProviderKeyURI("google"))
	v.Set("providers.openai.api_key", "sk-inline")
	v.Set("providers.anthropic.api_key", secrets.ProviderKeyURI("anthropic"))
	v.Set("knowledge.path", "chatbot.json")

	err := secrets.ResolveViperSecrets(v, ks)

	// The anthropic reference has no entry: reported, and cleared so the
	// provider reads as unconfigured.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers.anthropic.api_key")
	assert.Empty(t, v.GetString("providers.anthropic.api_key"))

	assert.Equal(t, "AIza-from-keyring", v.GetString("providers.google.api_key"))
	assert.Equal(t, "sk-inline", v.GetString("providers.openai.api_key"))
	assert.Equal(t, "chatbot.json", v.GetString("knowledge.path"))
}

func TestResolveViperSecrets_NothingToResolve(t *testing.T) {
	v := viper.New()
	v.Set("models.default", "google/gemini-2.5-flash")
	assert.NoError(t, secrets.ResolveViperSecrets(v, secrets.NewKeyringStore()))
}
