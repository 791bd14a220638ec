// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhelper/studyhelper/internal/knowledge"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect the knowledge base",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the knowledge base to stdout",
		Args:  cobra.NoArgs,
		RunE:  runKBExport,
	}
	export.Flags().StringP("format", "f", knowledge.FormatJSON, "output format (json or yaml)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored questions and answers",
			Args:  cobra.NoArgs,
			RunE:  runKBList,
		},
		export,
		&cobra.Command{
			Use:   "path",
			Short: "Print where the knowledge base is stored",
			Args:  cobra.NoArgs,
			RunE:  runKBPath,
		},
	)

	return cmd
}

// loadKnowledge reads the configured knowledge base. Unlike a chat session,
// an unreadable store is an error here.
func loadKnowledge(cmd *cobra.Command) (*knowledge.Base, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openKnowledge(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return store.Load(cmd.Context())
}

func runKBList(cmd *cobra.Command, _ []string) error {
	base, err := loadKnowledge(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if base.Len() == 0 {
		_, _ = fmt.Fprintln(out, "Knowledge base is empty.")
		return nil
	}
	for i, r := range base.Records {
		_, _ = fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, r.Question, r.Answer)
	}
	return nil
}

func runKBExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	base, err := loadKnowledge(cmd)
	if err != nil {
		return err
	}
	return knowledge.Export(cmd.OutOrStdout(), base, format)
}

func runKBPath(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", cfg.KnowledgePath(), cfg.Knowledge.Backend)
	return err
}
