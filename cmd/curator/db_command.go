// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/config"
	"github.com/autobrr/curator/internal/database"
)

func RunDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database operations",
	}

	cmd.AddCommand(runDBMigrateCommand())
	return cmd
}

func runDBMigrateCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and list applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configDir)
			if err != nil {
				return err
			}

			path := cfg.GetDatabasePath()
			db, err := database.New(path)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.QueryContext(cmd.Context(), "SELECT filename, applied_at FROM migrations ORDER BY filename")
			if err != nil {
				return err
			}
			defer rows.Close()

			cmd.Printf("Database: %s\n", path)
			count := 0
			for rows.Next() {
				var filename, appliedAt string
				if err := rows.Scan(&filename, &appliedAt); err != nil {
					return err
				}
				cmd.Printf("  - %s (%s)\n", filename, appliedAt)
				count++
			}
			if err := rows.Err(); err != nil {
				return err
			}
			cmd.Printf("Migrations applied: %d\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}
