// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/config"
)

func RunConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update the configuration file",
	}
	cmd.AddCommand(runConfigShowCommand(), runConfigLogCommand())
	return cmd
}

func runConfigShowCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configDir)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg.Current().Redacted())
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func runConfigLogCommand() *cobra.Command {
	var (
		configDir  string
		level      string
		logPath    string
		maxSize    int
		maxBackups int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Persist log settings to the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configDir)
			if err != nil {
				return err
			}

			current := cfg.Current()
			if !cmd.Flags().Changed("level") {
				level = current.LogLevel
			}
			if !cmd.Flags().Changed("path") {
				logPath = current.LogPath
			}
			if !cmd.Flags().Changed("max-size") {
				maxSize = current.LogMaxSize
			}
			if !cmd.Flags().Changed("max-backups") {
				maxBackups = current.LogMaxBackups
			}

			if err := cfg.UpdateLogSettings(level, logPath, maxSize, maxBackups); err != nil {
				return err
			}
			cmd.Printf("Log settings saved to %s\n", cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().StringVar(&level, "level", "", "Log level: ERROR, WARN, INFO, DEBUG or TRACE")
	cmd.Flags().StringVar(&logPath, "path", "", "Log file, empty logs to stderr only")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "Megabytes before the log file rotates")
	cmd.Flags().IntVar(&maxBackups, "max-backups", 0, "Rotated files to keep")

	return cmd
}
