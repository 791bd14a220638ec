// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package secrets keeps provider API keys out of the config file by storing
// them in the OS keyring and resolving keyring:// references after load.
package secrets

// DefaultService is the keyring service that `studyhelper secret set` writes
// provider keys under.
const DefaultService = "studyhelper"

// Store provides secure secret storage operations.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	// A missing key yields CodeSecretNotFound.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	// A missing key yields CodeSecretNotFound.
	Delete(service, key string) error

	// List returns all key names stored under the given service.
	List(service string) ([]string, error)
}

// ProviderKeyURI returns the config reference for a provider key stored
// under DefaultService, e.g. keyring://studyhelper/google.
func ProviderKeyURI(provider string) string {
	return keyringScheme + DefaultService + "/" + provider
}
