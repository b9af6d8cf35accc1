// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unicodeNormalizer  = NewNormalizer(defaultNormalizerTTL, foldUnicode)
	matchingNormalizer = NewNormalizer(defaultNormalizerTTL, foldForMatching)

	// letters NFKD leaves alone
	letterFolds = strings.NewReplacer(
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
		"ø", "o", "Ø", "O",
		"ß", "ss",
		"ð", "d", "Ð", "D",
		"þ", "th", "Þ", "TH",
		"ł", "l", "Ł", "L",
	)

	// release and file names use these as word separators
	separatorFolds = strings.NewReplacer(
		".", " ", "_", " ", "-", " ", "/", " ", "+", " ",
		"&", " and ",
	)

	dropped = strings.NewReplacer(
		"'", "", "’", "", "‘", "", "`", "",
		":", "", ",", "", "!", "", "?", "", "\"", "",
		"(", "", ")", "", "[", "", "]", "",
	)
)

func foldUnicode(s string) string {
	s = letterFolds.Replace(s)
	// transform.Chain keeps state, build one per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func foldForMatching(s string) string {
	s = unicodeNormalizer.Normalize(s)
	s = strings.ToLower(s)
	s = dropped.Replace(s)
	s = separatorFolds.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeUnicode strips diacritics and expands ligatures: "Shōgun" → "Shogun", "Ærø" → "AEro".
func NormalizeUnicode(s string) string {
	return unicodeNormalizer.Normalize(s)
}

// NormalizeForMatching folds a title for comparison against release or file names:
// diacritics removed, lower-cased, punctuation dropped, dots/underscores/hyphens
// turned into spaces, "&" spelled "and", runs of spaces collapsed.
//
//	"The.Left.Hand.of.Darkness" → "the left hand of darkness"
//	"Bob's Burgers: S01"        → "bobs burgers s01"
func NormalizeForMatching(s string) string {
	return matchingNormalizer.Normalize(s)
}

// StripLeadingArticle removes a leading "the", "a" or "an" from a normalized title.
func StripLeadingArticle(s string) string {
	for _, article := range []string{"the ", "a ", "an "} {
		if rest, ok := strings.CutPrefix(s, article); ok && rest != "" {
			return rest
		}
	}
	return s
}
