// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studyhelper/studyhelper/internal/provider"
	"github.com/studyhelper/studyhelper/internal/secrets"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// serviceName is the keyring service name under which studyhelper stores secrets.
const serviceName = secrets.DefaultService

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

// keyCheckClient is the HTTP client used to validate provider keys.
// Exposed as a variable so tests can replace it.
var keyCheckClient = &http.Client{Timeout: 10 * time.Second}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys stored in the OS keyring",
		Long: `Store, list and delete secrets kept under the studyhelper service in the
operating system keyring. A key stored as "google" is referenced from the
config as keyring://studyhelper/google.`,
	}

	set := &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
	set.Flags().Bool("validate", false, "check the key against the provider named <name> before storing it")

	cmd.AddCommand(
		set,
		&cobra.Command{
			Use:   "list",
			Short: "List all stored secret names",
			Args:  cobra.NoArgs,
			RunE:  runSecretList,
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a secret by name",
			Args:  cobra.ExactArgs(1),
			RunE:  runSecretDelete,
		},
	)

	return cmd
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" || strings.Contains(name, "/") {
		return sherr.Errorf(sherr.CodeSecretInvalidInput, "invalid secret name %q", args[0])
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Enter value for %s: ", name)
	}
	value, err := readLine(in)
	if err != nil {
		return sherr.Errorf(sherr.CodeSecretInvalidInput, "reading secret value: %w", err)
	}
	if value == "" {
		return sherr.New(sherr.CodeSecretInvalidInput, "secret value must not be empty")
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		endpoint := viper.GetString("providers." + name + ".endpoint")
		if err := provider.ValidateKey(cmd.Context(), keyCheckClient, name, value, endpoint); err != nil {
			return err
		}
	}

	if err := secretStoreFactory().Store(serviceName, name, value); err != nil {
		return sherr.Errorf(sherr.CodeSecretStoreFailure, "storing secret %q: %w", name, err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Stored secret: %s\n", name)
	_, _ = fmt.Fprintf(out, "Reference it in config as: %s\n", secrets.ProviderKeyURI(name))
	return nil
}

// runSecretList prints stored names in order, noting the providers whose
// configured api_key points at them.
func runSecretList(cmd *cobra.Command, _ []string) error {
	keys, err := secretStoreFactory().List(serviceName)
	if err != nil {
		return sherr.Errorf(sherr.CodeSecretListFailure, "listing secrets: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(out, "No secrets stored.")
		return nil
	}

	slices.Sort(keys)
	for _, k := range keys {
		if ref := secrets.ProviderKeyURI(k); viper.GetString("providers."+k+".api_key") == ref {
			_, _ = fmt.Fprintf(out, "%s (used by providers.%s)\n", k, k)
			continue
		}
		_, _ = fmt.Fprintln(out, k)
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(serviceName, name); err != nil {
		if sherr.IsNotFound(err) {
			return sherr.Errorf(sherr.CodeSecretNotFound, "secret %q not found", name)
		}
		return sherr.Errorf(sherr.CodeSecretDeleteFailure, "deleting secret %q: %w", name, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}

// readLine returns the first line of r with surrounding whitespace removed.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
