// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/services/importer"
)

type importResultView struct {
	Path    string   `json:"path"`
	Result  string   `json:"result"`
	Reasons []string `json:"reasons,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func RunImportCommand() *cobra.Command {
	var (
		configDir  string
		itemID     int
		mode       string
		downloadID string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "import PATH",
		Short: "Import a downloaded file or folder into a library item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if itemID <= 0 {
				return errors.New("--item-id is required")
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.items.Get(cmd.Context(), itemID)
			if err != nil {
				return err
			}

			path := args[0]
			var dci *models.DownloadClientItem
			if id := strings.TrimSpace(downloadID); id != "" {
				// the grab recorded for the download supplies quality and flags
				dci = &models.DownloadClientItem{
					DownloadID:   id,
					Title:        importer.FolderName(path),
					Status:       models.DownloadCompleted,
					OutputPath:   path,
					CanMoveFiles: true,
					AddedAt:      time.Now(),
				}
			}

			results, err := a.importer.ImportPath(cmd.Context(), path, item, dci, importer.ParseImportMode(mode))
			if err != nil {
				return err
			}

			views := make([]importResultView, 0, len(results))
			imported := 0
			for _, r := range results {
				v := importResultView{Result: string(r.Result), Reasons: r.Decision.Reasons(), Errors: r.Errors}
				if lf := r.Decision.Subject; lf != nil {
					v.Path = lf.Path
				}
				if r.Imported() {
					imported++
				}
				views = append(views, v)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			for _, v := range views {
				line := v.Result + "  " + v.Path
				if detail := strings.Join(slices.Concat(v.Reasons, v.Errors), ", "); detail != "" {
					line += ": " + detail
				}
				cmd.Println(line)
			}
			cmd.Printf("Imported %d of %d files into %q\n", imported, len(views), item.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().IntVar(&itemID, "item-id", 0, "Library item to import into")
	cmd.Flags().StringVar(&mode, "mode", "auto", "Import mode: auto, move or copy")
	cmd.Flags().StringVar(&downloadID, "download-id", "", "Download client id of the grab, used to look up its history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
