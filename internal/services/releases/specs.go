// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/models"
)

// Spec is a release rule.
type Spec = decision.Spec[*models.RemoteItem, *Evaluation]

// DefaultSpecs returns the release rule set.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "quality allowed by profile", Priority: decision.PriorityDefault, Evaluate: qualityAllowed},
		{Name: "language allowed", Priority: decision.PriorityDefault, Evaluate: languageAllowed},
		{Name: "protocol enabled", Priority: decision.PriorityDefault, Evaluate: protocolEnabled},
		{Name: "maximum size", Priority: decision.PriorityDefault, Evaluate: maximumSize},
		{Name: "minimum seeders", Priority: decision.PriorityDefault, Evaluate: minimumSeeders},
		{Name: "retention", Priority: decision.PriorityDefault, Evaluate: retention},
		{Name: "release restrictions", Priority: decision.PriorityDefault, Evaluate: releaseRestrictions},
		{Name: "monitored", Priority: decision.PriorityDefault, Evaluate: monitored},
		{Name: "minimum age", Priority: decision.PriorityMetadata, Type: decision.Temporary, Evaluate: minimumAge},
		{Name: "upgrade disk", Priority: decision.PriorityDatabase, Evaluate: upgradeDisk},
		{Name: "cutoff", Priority: decision.PriorityDatabase, Evaluate: cutoff},
		{Name: "upgrade allowed", Priority: decision.PriorityDatabase, Evaluate: upgradeAllowed},
		{Name: "queue", Priority: decision.PriorityDatabase, Evaluate: queue},
		{Name: "recent grab history", Priority: decision.PriorityDatabase, Evaluate: recentGrabHistory},
		{Name: "repack", Priority: decision.PriorityDatabase, Evaluate: repack},
		{Name: "delay", Priority: decision.PriorityDatabase, Type: decision.Temporary, Evaluate: delay},
	}
}

// NewRegistry returns a registry holding the default release rules.
func NewRegistry() *decision.Registry[*models.RemoteItem, *Evaluation] {
	return decision.NewRegistry[*models.RemoteItem, *Evaluation]().MustRegister(DefaultSpecs()...)
}

func upgrader(r *models.RemoteItem) models.UpgradableSpecification {
	return models.UpgradableSpecification{Profile: profileOf(r), CompareLanguage: true}
}

func existingFiles(r *models.RemoteItem) []models.MediaFile {
	if r.Item == nil {
		return nil
	}
	return r.Item.FilesForUnits(r.Units)
}

func tagsOf(r *models.RemoteItem) []string {
	if r.Item == nil {
		return nil
	}
	return r.Item.Tags
}

func qualityAllowed(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	p := profileOf(r)
	if p == nil {
		return decision.Reject("Item has no quality profile"), nil
	}
	q := r.Quality().Quality
	if !p.IsQualityAllowed(q) {
		return decision.Rejectf("%s is not wanted in profile", q).ForProfile(p.ID), nil
	}
	return decision.Accept(), nil
}

func languageAllowed(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	p := profileOf(r)
	if p == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	if l := r.Language(); !p.IsLanguageAllowed(l) {
		return decision.Rejectf("%s is not allowed in profile", l).ForProfile(p.ID), nil
	}
	return decision.Accept(), nil
}

func protocolEnabled(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	protocol := r.Release.DownloadProtocol
	if protocol != models.ProtocolUsenet && protocol != models.ProtocolTorrent {
		return decision.Reject("Unknown download protocol"), nil
	}
	dp := ev.Settings.DelayProfiles.ForTags(tagsOf(r))
	if !dp.Enabled(protocol) {
		return decision.Rejectf("%s is disabled by delay profile", protocol), nil
	}
	return decision.Accept(), nil
}

func maximumSize(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	limit := ev.Settings.MaximumSize
	if limit <= 0 || r.Release.Size <= 0 {
		return decision.Accept(), nil
	}
	if r.Release.Size > limit {
		return decision.Rejectf("%s is too large, maximum size is %s",
			humanize.IBytes(uint64(r.Release.Size)), humanize.IBytes(uint64(limit))), nil
	}
	return decision.Accept(), nil
}

func minimumSeeders(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if r.Release.DownloadProtocol != models.ProtocolTorrent {
		return decision.Result{}, decision.ErrNotApplicable
	}
	if minimum := ev.Settings.MinimumSeeders; minimum > 0 && r.Release.Seeders < minimum {
		return decision.Rejectf("Not enough seeders: %d. Minimum seeders: %d", r.Release.Seeders, minimum), nil
	}
	return decision.Accept(), nil
}

func retention(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if r.Release.DownloadProtocol != models.ProtocolUsenet {
		return decision.Result{}, decision.ErrNotApplicable
	}
	days := ev.Settings.RetentionDays
	if days <= 0 {
		return decision.Accept(), nil
	}
	if r.Release.Age(ev.Now) > time.Duration(days)*24*time.Hour {
		return decision.Rejectf("Older than configured retention of %d days", days), nil
	}
	return decision.Accept(), nil
}

func containsTerm(title string, terms []string) (string, bool) {
	lower := strings.ToLower(title)
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t != "" && strings.Contains(lower, t) {
			return term, true
		}
	}
	return "", false
}

func releaseRestrictions(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	s := ev.Settings
	if len(s.RequiredTerms) > 0 {
		if _, ok := containsTerm(r.Release.Title, s.RequiredTerms); !ok {
			return decision.Rejectf("Does not contain one of the required terms: %s", strings.Join(s.RequiredTerms, ", ")), nil
		}
	}
	if term, ok := containsTerm(r.Release.Title, s.IgnoredTerms); ok {
		return decision.Rejectf("Contains ignored term: %s", term), nil
	}

	matched, applied, err := ev.matchesFilter(r)
	if err != nil {
		return decision.Result{}, err
	}
	if applied && !matched {
		return decision.Reject("Rejected by release filter"), nil
	}
	return decision.Accept(), nil
}

func monitored(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if ev.UserInvoked() {
		return decision.Accept(), nil
	}
	if r.Item == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	if !r.Item.Monitored {
		return decision.Reject("Item is not monitored"), nil
	}
	if slices.ContainsFunc(r.Units, func(u models.MediaUnit) bool { return !u.Monitored }) {
		return decision.Reject("One or more units is not monitored"), nil
	}
	return decision.Accept(), nil
}

func minimumAge(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if r.Release.DownloadProtocol != models.ProtocolUsenet {
		return decision.Result{}, decision.ErrNotApplicable
	}
	minAge := ev.Settings.MinimumAge
	if minAge <= 0 {
		return decision.Accept(), nil
	}
	if age := r.Release.Age(ev.Now); age < minAge {
		return decision.Rejectf("Only %s old, minimum age is %s", age.Round(time.Minute), minAge), nil
	}
	return decision.Accept(), nil
}

func upgradeDisk(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	up := upgrader(r)
	if up.Profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	for _, f := range existingFiles(r) {
		if !up.IsUpgradable(f.Quality, f.Language, r.Quality(), r.Language()) {
			return decision.Rejectf("Existing file on disk is of equal or higher preference: %s", f.Quality).ForProfile(up.Profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func cutoff(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	up := upgrader(r)
	if up.Profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	candidate := r.Quality()
	for _, f := range existingFiles(r) {
		if !up.CutoffNotMet(f.Quality, f.Language, &candidate) {
			return decision.Rejectf("Existing file meets cutoff: %s", up.Profile.CutoffQuality()).ForProfile(up.Profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func upgradeAllowed(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	up := upgrader(r)
	if up.Profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	for _, f := range existingFiles(r) {
		if !up.IsUpgradeAllowed(f.Quality, f.Language, r.Quality(), r.Language()) {
			return decision.Reject("Quality profile does not allow upgrades").ForProfile(up.Profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func sharesUnit(ids []int, units []models.MediaUnit) bool {
	for _, u := range units {
		if slices.Contains(ids, u.ID) {
			return true
		}
	}
	return false
}

func queue(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	up := upgrader(r)
	if up.Profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	candidate := r.Quality()
	for _, q := range r.Queued {
		if q.ItemID != r.ItemID() || !sharesUnit(q.UnitIDs, r.Units) {
			continue
		}
		if !up.CutoffNotMet(q.Quality, q.Language, &candidate) {
			return decision.Reject("Release in queue already meets cutoff").ForProfile(up.Profile.ID), nil
		}
		if !up.IsUpgradable(q.Quality, q.Language, candidate, r.Language()) {
			return decision.Rejectf("Release in queue is of equal or higher preference: %s", q.Quality).ForProfile(up.Profile.ID), nil
		}
		if !up.IsUpgradeAllowed(q.Quality, q.Language, candidate, r.Language()) {
			return decision.Reject("Release in queue and quality profile does not allow upgrades").ForProfile(up.Profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func recentGrabHistory(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if ev.UserInvoked() {
		return decision.Accept(), nil
	}
	up := upgrader(r)
	if up.Profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	window := ev.Settings.RecentGrabWindow
	candidate := r.Quality()
	unitIDs := models.UnitIDs(r.Units)
	for _, h := range r.History {
		if h.EventType != models.HistoryGrabbed || !slices.Contains(unitIDs, h.UnitID) {
			continue
		}
		if window > 0 && ev.Now.Sub(h.Date) > window {
			continue
		}
		if !up.CutoffNotMet(h.Quality, h.Language, &candidate) {
			return decision.Rejectf("Recent grab event in history already meets cutoff: %s", h.Quality).ForProfile(up.Profile.ID), nil
		}
		if !up.IsUpgradable(h.Quality, h.Language, candidate, r.Language()) {
			return decision.Rejectf("Recent grab event in history is of equal or higher preference: %s", h.Quality).ForProfile(up.Profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func repack(r *models.RemoteItem, _ *Evaluation) (decision.Result, error) {
	candidate := r.Quality()
	if !candidate.Revision.IsRepack {
		return decision.Result{}, decision.ErrNotApplicable
	}
	group := ""
	if r.Parsed != nil {
		group = r.Parsed.ReleaseGroup
	}
	for _, f := range existingFiles(r) {
		if f.Quality.Quality.ID != candidate.Quality.ID || f.Quality.Revision.Compare(candidate.Revision) >= 0 {
			continue
		}
		if f.ReleaseGroup == "" {
			continue
		}
		if group == "" || !strings.EqualFold(f.ReleaseGroup, group) {
			return decision.Rejectf("Repack is from a different release group: %s vs %s", orUnknown(group), f.ReleaseGroup), nil
		}
	}
	return decision.Accept(), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func delay(r *models.RemoteItem, ev *Evaluation) (decision.Result, error) {
	if ev.UserInvoked() {
		return decision.Accept(), nil
	}
	p := profileOf(r)
	dp := ev.Settings.DelayProfiles.ForTags(tagsOf(r))
	protocol := r.Release.DownloadProtocol
	wait := dp.Delay(protocol)
	if wait <= 0 {
		return decision.Accept(), nil
	}

	candidate := r.Quality()
	if p != nil && dp.BypassIfHighestQuality && protocol == dp.PreferredProtocol {
		if best, ok := p.HighestAllowed(); ok && best.ID == candidate.Quality.ID {
			return decision.Accept(), nil
		}
	}

	// Revision upgrades of files already on disk are not held back.
	up := upgrader(r)
	for _, f := range existingFiles(r) {
		if up.IsRevisionUpgrade(f.Quality, candidate) {
			return decision.Accept(), nil
		}
	}

	if age := r.Release.Age(ev.Now); age < wait {
		return decision.Rejectf("Waiting for better quality release, delay ends in %s", (wait - age).Round(time.Minute)), nil
	}
	return decision.Accept(), nil
}
