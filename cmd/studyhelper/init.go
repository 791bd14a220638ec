// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyhelper/studyhelper/internal/config"
	"github.com/studyhelper/studyhelper/internal/provider"
	"github.com/studyhelper/studyhelper/internal/secrets"
	"github.com/studyhelper/studyhelper/internal/tui"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// initResult is what the setup wizard collected.
type initResult struct {
	Provider string
	APIKey   string
}

// GenerateConfigYAML produces a minimal studyhelper.yaml from the wizard
// result. The API key is referenced via a keyring:// URI; the secret itself
// is stored separately by storeSecretAndWriteConfig.
func GenerateConfigYAML(result initResult) string {
	var sb strings.Builder
	sb.WriteString("# studyhelper configuration, generated by studyhelper init\n\n")

	sb.WriteString("knowledge:\n")
	sb.WriteString("  backend: json\n")
	sb.WriteString("  path: chatbot.json\n\n")

	sb.WriteString("models:\n")
	sb.WriteString(fmt.Sprintf("  default: %q\n", defaultModelForProvider(result.Provider)))
	sb.WriteString("  max_retries: 0\n")
	sb.WriteString("  timeout: 0s\n\n")

	sb.WriteString("providers:\n")
	sb.WriteString(fmt.Sprintf("  %s:\n", result.Provider))
	sb.WriteString(fmt.Sprintf("    api_key: %q\n\n", secrets.ProviderKeyURI(result.Provider)))

	sb.WriteString("logging:\n")
	sb.WriteString("  level: info\n")
	sb.WriteString("  format: text\n")

	return sb.String()
}

// defaultModelForProvider returns the model the wizard configures for p.
func defaultModelForProvider(p string) string {
	switch p {
	case "google":
		return "google/gemini-2.5-flash"
	case "openai":
		return "openai/gpt-4o-mini"
	case "anthropic":
		return "anthropic/claude-sonnet-4-5"
	default:
		return p + "/default"
	}
}

// storeSecretAndWriteConfig saves the key to the OS keyring and writes the
// config YAML to the default config path.
//
// When forceOverwrite is false and the config file already exists, an error
// is returned asking the user to pass --force. A keyring entry stored before
// a failed write is left in place and overwritten by the next run.
func storeSecretAndWriteConfig(result initResult, store secrets.Store, forceOverwrite bool) (string, error) {
	if err := store.Store(serviceName, result.Provider, result.APIKey); err != nil {
		return "", sherr.Errorf(sherr.CodeSecretStoreFailure, "storing %s API key: %w", result.Provider, err)
	}

	cfgPath, err := configPathForWrite()
	if err != nil {
		return "", err
	}

	if !forceOverwrite {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			return "", sherr.Errorf(sherr.CodeConfigWriteAlreadyExists,
				"config file already exists at %s; use --force to overwrite", cfgPath)
		}
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", sherr.Errorf(sherr.CodeConfigWriteFailure, "creating config directory %s: %w", dir, err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateConfigYAML(result)), 0o600); err != nil {
		return "", sherr.Errorf(sherr.CodeConfigWriteFailure, "writing config to %s: %w", cfgPath, err)
	}

	return cfgPath, nil
}

// configPathForWrite returns the config path init writes to. It is a
// variable so tests can override it.
var configPathForWrite = config.DefaultConfigPath

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactive setup wizard",
		Long: `Pick the model used for new questions, check its API key and store it in
the OS keyring. The generated config refers to the key through a keyring://
URI, so the secret never lands on disk in plain text.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	if !isTerminal(cmd.InOrStdin()) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"studyhelper init requires an interactive terminal.\n"+
				"Use 'studyhelper secret set <provider>' and edit ~/.config/studyhelper/studyhelper.yaml instead.")
		return sherr.New(sherr.CodeCLISetupFailure, "studyhelper init: not an interactive terminal")
	}

	force, _ := cmd.Flags().GetBool("force")
	store := secretStoreFactory()

	res, err := tui.RunSetup(cmd.Context(), tui.SetupOptions{
		Providers: config.KnownProviders,
		Describe:  func(p string) string { return provider.LabelFor(p).Source },
		Validate: func(ctx context.Context, name, key string) error {
			return provider.ValidateKey(ctx, keyCheckClient, name, key, "")
		},
		Save: func(name, key string) (string, error) {
			return storeSecretAndWriteConfig(initResult{Provider: name, APIKey: key}, store, force)
		},
	})
	if err != nil {
		return sherr.Wrap(err, sherr.CodeCLISetupFailure, "init failed")
	}
	if res.Completed {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\nRun 'studyhelper doctor' to check the setup.\n", res.ConfigPath)
	}
	return nil
}
