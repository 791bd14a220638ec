// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider

import (
	"context"
	"io"
	"net/http"
	"strings"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Default model-listing endpoints used to check an API key.
var keyCheckURLs = map[string]string{
	"google":    "https://generativelanguage.googleapis.com/v1beta/models",
	"openai":    "https://api.openai.com/v1/models",
	"anthropic": "https://api.anthropic.com/v1/models",
}

// ValidateKey makes one lightweight request to the provider's model list to
// confirm key is accepted. A non-empty baseURL replaces the default endpoint,
// matching providers.<name>.endpoint.
func ValidateKey(ctx context.Context, client *http.Client, name, key, baseURL string) error {
	url, ok := keyCheckURLs[name]
	if !ok {
		return sherr.Errorf(sherr.CodeProviderKeyInvalid, "unknown provider: %s", name)
	}
	if baseURL != "" {
		url = strings.TrimRight(baseURL, "/") + "/models"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sherr.Errorf(sherr.CodeProviderKeyCheckFailed, "building validation request: %w", err)
	}
	switch name {
	case "google":
		req.Header.Set("x-goog-api-key", key)
	case "openai":
		req.Header.Set("Authorization", "Bearer "+key)
	case "anthropic":
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", "2023-06-01")
	}

	resp, err := client.Do(req)
	if err != nil {
		return sherr.Errorf(sherr.CodeProviderKeyCheckFailed, "validating %s key: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return sherr.Errorf(sherr.CodeProviderKeyInvalid, "invalid %s API key (HTTP %d)", name, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest && name == "google":
		// The Gemini API answers 400 API_KEY_INVALID for unknown keys.
		return sherr.Errorf(sherr.CodeProviderKeyInvalid, "invalid %s API key (HTTP %d)", name, resp.StatusCode)
	case resp.StatusCode >= 400:
		return sherr.Errorf(sherr.CodeProviderKeyCheckFailed, "%s validation failed (HTTP %d)", name, resp.StatusCode)
	}
	return nil
}
