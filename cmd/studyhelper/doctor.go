// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/studyhelper/studyhelper/internal/config"
	"github.com/studyhelper/studyhelper/internal/provider"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, config file, knowledge base, provider API keys and disk space.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}

	cmd.Flags().Bool("check-keys", false, "send one request per configured provider to validate its key")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	checkKeys, _ := cmd.Flags().GetBool("check-keys")

	cfg, cfgErr := loadConfig()

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", func() string { return checkConfig(cfgErr) }},
		{"Knowledge", func() string { return checkKnowledge(cmd.Context(), cfg) }},
		{"Default Model", func() string { return checkDefaultModel(cfg) }},
		{"Providers", func() string { return checkProviders(cmd.Context(), cfg, checkKeys) }},
		{"Disk Space", func() string { return checkDiskSpace(resolveDataDir()) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

// resolveDataDir returns the data directory from viper or the working
// directory, which is what relative paths resolve against.
func resolveDataDir() string {
	if dataDir := viper.GetString("data_dir"); dataDir != "" {
		return dataDir
	}
	wd, _ := os.Getwd()
	return wd
}

func checkBinary() string {
	return fmt.Sprintf("studyhelper %s (%s/%s)", buildVersion(), runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(cfgErr error) string {
	if cfgErr != nil {
		return fmt.Sprintf("invalid: %s", cfgErr)
	}
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		if perm, exposed := config.ExposedMode(cfgFile); exposed {
			return fmt.Sprintf("loaded from %s (mode %s is open to other users, chmod 600)", cfgFile, perm)
		}
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkKnowledge(ctx context.Context, cfg *config.Config) string {
	if cfg == nil {
		return "skipped (config invalid)"
	}
	path := cfg.KnowledgePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Sprintf("not created yet at %s (%s)", path, cfg.Knowledge.Backend)
	}

	store, err := openKnowledge(cfg)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	defer func() { _ = store.Close() }()

	base, err := store.Load(ctx)
	switch {
	case sherr.IsInvalidInput(err):
		return fmt.Sprintf("corrupt at %s, sessions start empty: %s", path, err)
	case err != nil:
		return fmt.Sprintf("unreadable at %s: %s", path, err)
	}
	return fmt.Sprintf("%d record(s) in %s (%s)", base.Len(), path, cfg.Knowledge.Backend)
}

func checkDefaultModel(cfg *config.Config) string {
	if cfg == nil {
		return "skipped (config invalid)"
	}
	name := cfg.DefaultProvider()
	if cfg.Providers[name].APIKey == "" {
		return fmt.Sprintf("%s (no API key: run 'studyhelper secret set %s')", cfg.Models.Default, name)
	}
	return fmt.Sprintf("%s via %s", cfg.Models.Default, provider.LabelFor(name).Source)
}

func checkProviders(ctx context.Context, cfg *config.Config, validate bool) string {
	if cfg == nil {
		return "skipped (config invalid)"
	}

	parts := make([]string, 0, len(config.KnownProviders))
	for _, name := range config.KnownProviders {
		pc := cfg.Providers[name]
		switch {
		case pc.APIKey == "":
			parts = append(parts, name+" (no key)")
		case !validate:
			parts = append(parts, name+" (key set)")
		default:
			err := provider.ValidateKey(ctx, keyCheckClient, name, pc.APIKey, pc.Endpoint)
			switch {
			case err == nil:
				parts = append(parts, name+" (key ok)")
			case sherr.IsUnauthorized(err):
				parts = append(parts, fmt.Sprintf("%s (key rejected: %s)", name, err))
			default:
				parts = append(parts, fmt.Sprintf("%s (key not checked: %s)", name, err))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func checkDiskSpace(dataDir string) string {
	path := dataDir
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Fall back to the parent if the data dir doesn't exist yet.
		path = filepath.Dir(path)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
