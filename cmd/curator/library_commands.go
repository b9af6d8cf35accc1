// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/curator/internal/models"
)

func RunProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage quality profiles",
	}
	cmd.AddCommand(runProfileAddCommand(), runProfileListCommand())
	return cmd
}

func runProfileAddCommand() *cobra.Command {
	var (
		configDir string
		name      string
		qualities []string
		languages []string
		cutoff    string
		upgrade   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a quality profile; qualities and languages are listed worst to best",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &models.QualityProfile{Name: name, UpgradeAllowed: upgrade}
			for _, n := range qualities {
				q, ok := models.QualityByName(n)
				if !ok {
					return fmt.Errorf("unknown quality %q", n)
				}
				p.Items = append(p.Items, models.QualityProfileItem{Quality: q, Allowed: true})
			}
			for _, n := range languages {
				l, ok := models.LanguageByName(n)
				if !ok {
					return fmt.Errorf("unknown language %q", n)
				}
				p.Languages = append(p.Languages, models.LanguageProfileItem{Language: l, Allowed: true})
			}
			if cutoff != "" {
				q, ok := models.QualityByName(cutoff)
				if !ok {
					return fmt.Errorf("unknown cutoff quality %q", cutoff)
				}
				p.Cutoff = q.ID
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.profiles.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			cmd.Printf("Profile %d '%s' created\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	cmd.Flags().StringSliceVar(&qualities, "quality", nil, "Allowed qualities, worst first")
	cmd.Flags().StringSliceVar(&languages, "language", []string{"English"}, "Allowed languages, worst first")
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "Quality at which upgrades stop")
	cmd.Flags().BoolVar(&upgrade, "upgrade-allowed", true, "Allow upgrades up to the cutoff")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("quality")

	return cmd
}

func runProfileListCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quality profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range profiles {
				names := make([]string, 0, len(p.Items))
				for _, it := range p.Items {
					names = append(names, it.Quality.Name)
				}
				cmd.Printf("%d\t%s\t%s\tcutoff=%s\n", p.ID, p.Name, strings.Join(names, ","), p.CutoffQuality().Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func RunItemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage library items",
	}
	cmd.AddCommand(runItemAddCommand(), runItemListCommand())
	return cmd
}

func runItemAddCommand() *cobra.Command {
	var (
		configDir   string
		item        models.MediaItem
		unitTitles  []string
		unmonitored bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a monitored library item; --unit may repeat, one per track, chapter or episode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			item.Monitored = !unmonitored
			for i, title := range unitTitles {
				item.Units = append(item.Units, models.MediaUnit{Number: i + 1, Title: title, Monitored: true})
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.items.Create(cmd.Context(), &item)
			if err != nil {
				return err
			}
			cmd.Printf("Item %d '%s' created with %d units\n", created.ID, created.Title, len(created.Units))
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().StringVar(&item.Title, "title", "", "Item title")
	cmd.Flags().StringVar(&item.ParentTitle, "parent", "", "Author, artist or series")
	cmd.Flags().IntVar(&item.Year, "year", 0, "Release year")
	cmd.Flags().IntVar(&item.ProfileID, "profile-id", 0, "Quality profile")
	cmd.Flags().StringVar(&item.Path, "path", "", "Item folder inside the root folder")
	cmd.Flags().StringVar(&item.RootFolder, "root-folder", "", "Library root folder")
	cmd.Flags().StringSliceVar(&item.Tags, "tag", nil, "Tags matched against delay profiles")
	cmd.Flags().StringArrayVar(&unitTitles, "unit", nil, "Unit title, numbered in order")
	cmd.Flags().BoolVar(&unmonitored, "unmonitored", false, "Add the item without monitoring it")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runItemListCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.items.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				cmd.Printf("%d\t%s\t%d units\t%d files\t%s\n", it.ID, it.Title, len(it.Units), len(it.Files), it.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func RunDelayProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delay-profile",
		Short: "Manage delay profiles",
	}
	cmd.AddCommand(runDelayProfileAddCommand(), runDelayProfileListCommand(), runDelayProfileRemoveCommand())
	return cmd
}

func runDelayProfileAddCommand() *cobra.Command {
	var (
		configDir string
		profile   models.DelayProfile
		preferred string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a delay profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile.PreferredProtocol = models.ParseDownloadProtocol(preferred)
			if !profile.EnableTorrent && !profile.EnableUsenet {
				return fmt.Errorf("enable at least one protocol")
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.delays.Create(cmd.Context(), profile)
			if err != nil {
				return err
			}
			cmd.Printf("Delay profile %d created\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	cmd.Flags().IntVar(&profile.Order, "order", 0, "Evaluation order, lowest first")
	cmd.Flags().StringVar(&preferred, "preferred", "torrent", "Preferred protocol: torrent or usenet")
	cmd.Flags().BoolVar(&profile.EnableTorrent, "torrent", true, "Allow torrent releases")
	cmd.Flags().BoolVar(&profile.EnableUsenet, "usenet", true, "Allow usenet releases")
	cmd.Flags().DurationVar(&profile.TorrentDelay, "torrent-delay", 0, "Wait before grabbing torrents")
	cmd.Flags().DurationVar(&profile.UsenetDelay, "usenet-delay", 0, "Wait before grabbing usenet releases")
	cmd.Flags().BoolVar(&profile.BypassIfHighestQuality, "bypass-highest", false, "Skip the delay for the profile's best quality")
	cmd.Flags().StringSliceVar(&profile.Tags, "tag", nil, "Item tags this profile applies to")

	return cmd
}

func runDelayProfileListCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delay profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.delays.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range profiles {
				cmd.Printf("%d\torder=%d\tpreferred=%s\ttorrent=%s\tusenet=%s\ttags=%s\n",
					d.ID, d.Order, d.PreferredProtocol, delayLabel(d.EnableTorrent, d.TorrentDelay),
					delayLabel(d.EnableUsenet, d.UsenetDelay), strings.Join(d.Tags, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func runDelayProfileRemoveCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a delay profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			if _, err := fmt.Sscan(args[0], &id); err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := openApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.delays.Delete(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Delay profile %d removed\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func delayLabel(enabled bool, delay time.Duration) string {
	if !enabled {
		return "off"
	}
	return delay.String()
}
