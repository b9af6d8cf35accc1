// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"strings"
)

// Canonical sources.
const (
	SourceRemux  = "REMUX"
	SourceBluray = "BLURAY"
	SourceWEBDL  = "WEBDL"
	SourceWEBRip = "WEBRIP"
	SourceHDTV   = "HDTV"
	SourceDVD    = "DVD"
	SourceSDTV   = "SDTV"
)

// sourceAliases maps rls source spellings to a canonical source.
var sourceAliases = map[string]string{
	"UHD.BLURAY": SourceBluray,
	"BLURAY":     SourceBluray,
	"BLU-RAY":    SourceBluray,
	"BDRIP":      SourceBluray,
	"BRRIP":      SourceBluray,
	"BD":         SourceBluray,
	"WEB-DL":     SourceWEBDL,
	"WEBDL":      SourceWEBDL,
	"WEB":        SourceWEBDL,
	"WEBRIP":     SourceWEBRip,
	"HDTV":       SourceHDTV,
	"UHDTV":      SourceHDTV,
	"DVDRIP":     SourceDVD,
	"DVD":        SourceDVD,
	"DVDR":       SourceDVD,
	"SDTV":       SourceSDTV,
	"PDTV":       SourceSDTV,
	"TV":         SourceSDTV,
}

// NormalizeSource converts a source string to its canonical form.
// Returns the original (uppercased) string if no alias mapping exists.
func NormalizeSource(source string) string {
	upper := strings.ToUpper(strings.TrimSpace(source))
	if canonical, ok := sourceAliases[upper]; ok {
		return canonical
	}
	return upper
}

// IsRemux reports whether the release carries a REMUX marker.
func IsRemux(source string, other []string) bool {
	if strings.Contains(strings.ToUpper(source), "REMUX") {
		return true
	}
	for _, o := range other {
		if strings.EqualFold(o, "REMUX") {
			return true
		}
	}
	return false
}

// ResolutionHeight returns the vertical resolution for tags like "1080p" or
// "2160p", mapping "4k"/"uhd" to 2160. Unknown values return 0.
func ResolutionHeight(resolution string) int {
	r := strings.ToLower(strings.TrimSpace(resolution))
	switch r {
	case "":
		return 0
	case "4k", "uhd":
		return 2160
	}
	r = strings.TrimSuffix(strings.TrimSuffix(r, "p"), "i")
	height := 0
	for _, c := range r {
		if c < '0' || c > '9' {
			return 0
		}
		height = height*10 + int(c-'0')
	}
	return height
}

// BookFormat returns the lower-case ebook format found in the extension,
// container or other tags, or "".
func BookFormat(ext, container string, other []string) string {
	candidates := append([]string{ext, container}, other...)
	for _, c := range candidates {
		switch f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), ".")); f {
		case "epub", "mobi", "azw3", "pdf":
			return f
		}
	}
	return ""
}

// AudioFormat returns "flac" or "mp3" when the audio tags, extension or
// container name one of them, or "".
func AudioFormat(ext, container string, audio []string) string {
	candidates := append([]string{ext, container}, audio...)
	for _, c := range candidates {
		switch f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), ".")); f {
		case "flac":
			return "flac"
		case "mp3":
			return "mp3"
		}
	}
	return ""
}
