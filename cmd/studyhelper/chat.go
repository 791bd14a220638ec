// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studyhelper/studyhelper/internal/tui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive study session",
		Long: `Open the chat UI. Each question is answered from the knowledge base when a
stored question is similar enough, otherwise by the default model. Logs go to
logging.file so they do not disturb the screen.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile, viper.GetViper())
	slog.SetDefault(logger)

	app, err := WireApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if h, ok := app.Caller.Health(); ok {
			logger.Info("provider health at exit", "failures", h.FailureCount, "available", h.Available)
		}
		if err := app.Close(); err != nil {
			logger.Warn("closing session", "error", err)
		}
	}()

	return tui.Run(cmd.Context(), app.Session)
}
