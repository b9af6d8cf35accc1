// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TitleDistance returns the Levenshtein distance between two titles after
// matching normalization, scaled by the longer title into [0,1].
// Leading articles are ignored. Identical titles score 0.
func TitleDistance(a, b string) float64 {
	na := StripLeadingArticle(NormalizeForMatching(a))
	nb := StripLeadingArticle(NormalizeForMatching(b))
	if na == nb {
		return 0
	}
	if na == "" || nb == "" {
		return 1
	}
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	return min(float64(fuzzy.LevenshteinDistance(na, nb))/float64(longest), 1)
}

// ContainsTitle reports whether title occurs in text on word boundaries after
// matching normalization.
func ContainsTitle(text, title string) bool {
	nt := NormalizeForMatching(title)
	if nt == "" {
		return false
	}
	padded := " " + NormalizeForMatching(text) + " "
	return strings.Contains(padded, " "+nt+" ")
}

// FuzzyContains reports whether the characters of title appear in order in
// text, ignoring case and diacritics.
func FuzzyContains(text, title string) bool {
	return fuzzy.MatchNormalizedFold(NormalizeForMatching(title), NormalizeForMatching(text))
}
