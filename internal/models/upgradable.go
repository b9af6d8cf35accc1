// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

// UpgradableSpecification answers upgrade questions against one quality profile.
// It is shared by release and file rules; CompareLanguage controls whether the
// language ladder takes part after quality and revision.
type UpgradableSpecification struct {
	Profile         *QualityProfile
	CompareLanguage bool
}

// IsUpgradable reports whether the candidate is strictly better than the current
// file. Ties on quality, revision and (when enabled) language are not upgrades.
func (u UpgradableSpecification) IsUpgradable(current QualityModel, currentLang Language, candidate QualityModel, candidateLang Language) bool {
	p := u.Profile
	if c := compareInt(p.QualityRank(candidate.Quality), p.QualityRank(current.Quality)); c != 0 {
		return c > 0
	}
	if c := candidate.Revision.Compare(current.Revision); c != 0 {
		return c > 0
	}
	if u.CompareLanguage {
		return p.CompareLanguage(candidateLang, currentLang) > 0
	}
	return false
}

// IsRevisionUpgrade reports whether candidate is the same quality at a newer revision.
func (u UpgradableSpecification) IsRevisionUpgrade(current, candidate QualityModel) bool {
	return current.Quality.ID == candidate.Quality.ID && candidate.Revision.Compare(current.Revision) > 0
}

// CutoffNotMet reports whether the current file is below the profile cutoff.
// A revision upgrade of a file sitting exactly at the cutoff also counts.
func (u UpgradableSpecification) CutoffNotMet(current QualityModel, currentLang Language, candidate *QualityModel) bool {
	p := u.Profile
	cutoffRank := p.QualityRank(p.CutoffQuality())
	currentRank := p.QualityRank(current.Quality)
	if currentRank < cutoffRank {
		return true
	}
	if u.CompareLanguage && p.CutoffLanguage != 0 && len(p.Languages) > 0 {
		for _, l := range p.Languages {
			if l.Language.ID == p.CutoffLanguage {
				if p.LanguageRank(currentLang) < p.LanguageRank(l.Language) {
					return true
				}
				break
			}
		}
	}
	if candidate != nil && currentRank == cutoffRank && u.IsRevisionUpgrade(current, *candidate) {
		return true
	}
	return false
}

// IsUpgradeAllowed reports whether the profile permits replacing current with
// candidate. Profiles with upgrades disabled still accept revision upgrades.
func (u UpgradableSpecification) IsUpgradeAllowed(current QualityModel, currentLang Language, candidate QualityModel, candidateLang Language) bool {
	p := u.Profile
	if p == nil || p.UpgradeAllowed {
		return true
	}
	if p.QualityRank(candidate.Quality) > p.QualityRank(current.Quality) {
		return false
	}
	if u.CompareLanguage && p.CompareLanguage(candidateLang, currentLang) > 0 {
		return false
	}
	return true
}
