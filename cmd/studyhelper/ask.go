// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question and exit",
		Long: `Answer one question the same way the chat does, then print the answer and
where it came from. A model failure is printed as the answer; only a failure
to save the knowledge base makes the command exit non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.Default()
	app, err := WireApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("closing session", "error", err)
		}
	}()

	turn, err := app.Session.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", turn.Content, turn.Provenance); err != nil {
		return sherr.Wrap(err, sherr.CodeCLIOutputFailure, "writing answer")
	}
	return nil
}
