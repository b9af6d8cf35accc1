// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/autobrr/curator/internal/models"
)

// Evaluation is the context every release rule of one batch reads.
type Evaluation struct {
	Criteria *models.SearchCriteria
	Settings Settings
	Now      time.Time

	filter    *vm.Program
	filterErr error
}

// NewEvaluation compiles the filter expression once for the batch. A broken
// expression is reported by the rule that uses it, per release.
func NewEvaluation(criteria *models.SearchCriteria, settings Settings, now time.Time) *Evaluation {
	ev := &Evaluation{Criteria: criteria, Settings: settings, Now: now}
	if code := strings.TrimSpace(settings.FilterExpression); code != "" {
		ev.filter, ev.filterErr = CompileFilter(code)
	}
	return ev
}

// UserInvoked reports whether the batch comes from a manual search.
func (ev *Evaluation) UserInvoked() bool {
	return ev != nil && ev.Criteria != nil && ev.Criteria.UserInvoked
}

// FilterEnv is what a release filter expression can see.
type FilterEnv struct {
	Title     string   `expr:"title"`
	Indexer   string   `expr:"indexer"`
	Protocol  string   `expr:"protocol"`
	Size      int64    `expr:"size"`
	Seeders   int      `expr:"seeders"`
	Peers     int      `expr:"peers"`
	AgeHours  float64  `expr:"ageHours"`
	Quality   string   `expr:"quality"`
	Language  string   `expr:"language"`
	Group     string   `expr:"group"`
	Flags     []string `expr:"flags"`
	ItemTitle string   `expr:"itemTitle"`
}

// CompileFilter compiles a boolean release filter.
func CompileFilter(code string) (*vm.Program, error) {
	program, err := expr.Compile(code, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile release filter: %w", err)
	}
	return program, nil
}

func newFilterEnv(r *models.RemoteItem, now time.Time) FilterEnv {
	env := FilterEnv{
		Title:    r.Release.Title,
		Indexer:  r.Release.Indexer,
		Protocol: string(r.Release.DownloadProtocol),
		Size:     r.Release.Size,
		Seeders:  r.Release.Seeders,
		Peers:    r.Release.Peers,
		AgeHours: r.Release.Age(now).Hours(),
		Quality:  r.Quality().Quality.Name,
		Language: r.Language().Name,
		Flags:    r.Release.IndexerFlags.Names(),
	}
	if r.Parsed != nil {
		env.Group = r.Parsed.ReleaseGroup
	}
	if r.Item != nil {
		env.ItemTitle = r.Item.Title
	}
	return env
}

func (ev *Evaluation) matchesFilter(r *models.RemoteItem) (bool, bool, error) {
	if ev.filterErr != nil {
		return false, true, ev.filterErr
	}
	if ev.filter == nil {
		return true, false, nil
	}
	out, err := expr.Run(ev.filter, newFilterEnv(r, ev.Now))
	if err != nil {
		return false, true, fmt.Errorf("run release filter: %w", err)
	}
	ok, _ := out.(bool)
	return ok, true, nil
}
