// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studyhelper/studyhelper/internal/config"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// NewRootCmd creates the root studyhelper command with all subcommands
// registered. Run without a subcommand it starts the interactive chat.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyhelper",
		Short: "Study helper: answers from your notes first, then from an LLM",
		Long: `studyhelper answers questions from a small local knowledge base using fuzzy
matching. When nothing close enough is known it asks the configured model
(Gemini by default) and remembers the answer for next time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), viper.GetViper()))
			config.WarnInsecurePermissions(viper.ConfigFileUsed())
			return nil
		},
		RunE: runChat,
	}

	// Global flags, mapped to viper keys in initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "directory relative knowledge and log paths resolve against")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newChatCmd(),
		newAskCmd(),
		newKBCmd(),
		newSecretCmd(),
		newDoctorCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return sherr.Errorf(sherr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is left unset so Viper never tries the bare name,
		// which would match a ./studyhelper binary.
		v.SetConfigName("studyhelper")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studyhelper")
		v.AddConfigPath("/etc/studyhelper")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return sherr.Errorf(sherr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return sherr.Errorf(sherr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	if err := v.BindPFlag("data_dir", cmd.Root().PersistentFlags().Lookup("data-dir")); err != nil {
		return sherr.Errorf(sherr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return sherr.Errorf(sherr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
