// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/services/releases"
)

type releaseDecisionView struct {
	Title    string   `json:"title"`
	Indexer  string   `json:"indexer,omitempty"`
	ItemID   int      `json:"itemId,omitempty"`
	Quality  string   `json:"quality,omitempty"`
	Approved bool     `json:"approved"`
	Outcome  string   `json:"outcome"`
	Reasons  []string `json:"reasons"`
}

func RunDecideCommand() *cobra.Command {
	var (
		configDir string
		input     string
		itemID    int
		best      bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide and rank release reports read as JSON",
		Long:  "Reads a JSON array of release reports from --input (or stdin) and prints one decision per report, best candidates first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := readReports(cmd, input)
			if err != nil {
				return err
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			var criteria *models.SearchCriteria
			if itemID > 0 {
				item, err := a.items.Get(cmd.Context(), itemID)
				if err != nil {
					return err
				}
				criteria = &models.SearchCriteria{Item: item, Units: item.MonitoredUnits(), UserInvoked: true}
			}

			decisions := a.releases.Prioritize(a.releases.DecideReleases(cmd.Context(), reports, criteria))
			if best {
				decisions = releases.BestPerItem(decisions)
			}

			views := make([]releaseDecisionView, 0, len(decisions))
			for _, d := range decisions {
				views = append(views, viewReleaseDecision(d))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			for i, d := range decisions {
				v := views[i]
				if v.Approved {
					cmd.Printf("%2d. approved  %s [%s, %s]\n", i+1, v.Title, v.Quality, humanize.IBytes(uint64(max(d.Subject.Release.Size, 0))))
					continue
				}
				cmd.Printf("%2d. %-9s %s: %s\n", i+1, v.Outcome, v.Title, d.ReasonString())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().StringVar(&input, "input", "-", "JSON file with release reports, - for stdin")
	cmd.Flags().IntVar(&itemID, "item-id", 0, "Only consider this library item")
	cmd.Flags().BoolVar(&best, "best", false, "Print only the best approved release per item")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print decisions as JSON")

	return cmd
}

func readReports(cmd *cobra.Command, input string) ([]models.ReleaseInfo, error) {
	var r io.Reader = cmd.InOrStdin()
	if input != "" && input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}

	var reports []models.ReleaseInfo
	if err := json.NewDecoder(r).Decode(&reports); err != nil {
		return nil, errors.Wrap(err, "decode release reports")
	}
	return reports, nil
}

func viewReleaseDecision(d releases.Decision) releaseDecisionView {
	v := releaseDecisionView{
		Approved: d.Approved(),
		Outcome:  d.Outcome(),
		Reasons:  d.Reasons(),
	}
	if r := d.Subject; r != nil {
		v.Title = r.Release.Title
		v.Indexer = r.Release.Indexer
		if r.Parsed != nil {
			v.Quality = r.Quality().String()
		}
		if r.Item != nil {
			v.ItemID = r.Item.ID
		}
	}
	return v
}
