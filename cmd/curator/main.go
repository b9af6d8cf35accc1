// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/config"
	"github.com/autobrr/curator/internal/services/stalled"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "curator",
		Short:         "Release decisions, library imports and stalled download handling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		RunServeCommand(),
		RunDecideCommand(),
		RunImportCommand(),
		RunItemCommand(),
		RunProfileCommand(),
		RunDelayProfileCommand(),
		RunDBCommand(),
		RunConfigCommand(),
		RunVersionCommand(),
	)
	return root
}

// openApp loads the configuration and opens the database for a one-shot
// command. No download client is contacted.
func openApp(configDir string) (*app, error) {
	cfg, err := config.New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.SetupLogger(); err != nil {
		return nil, err
	}

	a, err := newApp(cfg, stalled.NewTracker(), nil)
	if err != nil {
		_ = cfg.Close()
		return nil, err
	}
	return a, nil
}
