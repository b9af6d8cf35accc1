// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"strings"

	"github.com/moistari/rls"
)

// ContentType is the broad kind of media a release carries.
type ContentType string

const (
	ContentMovie     ContentType = "movie"
	ContentTV        ContentType = "tv"
	ContentMusic     ContentType = "music"
	ContentAudiobook ContentType = "audiobook"
	ContentBook      ContentType = "book"
	ContentComic     ContentType = "comic"
	ContentUnknown   ContentType = "unknown"
)

// IsVideo reports whether the content type is a movie or tv release.
func (c ContentType) IsVideo() bool {
	return c == ContentMovie || c == ContentTV
}

var videoTitleHints = []string{
	"2160p", "1080p", "720p", "576p", "480p", "remux", "hdr10",
	"bluray", "blu-ray", "bdrip", "web-dl", "webdl", "webrip", "hdtv", "x264", "x265", "hevc",
}

var videoCodecHints = []string{"x264", "x265", "h264", "h265", "hevc", "av1", "xvid", "divx"}

// looksLikeVideo catches video releases rls classified as music because of
// dash-separated names.
func looksLikeVideo(r *rls.Release) bool {
	if r.Resolution != "" || len(r.HDR) > 0 {
		return true
	}
	for _, codec := range r.Codec {
		if containsAny(codec, videoCodecHints) {
			return true
		}
	}
	return containsAny(r.Title, videoTitleHints) || containsAny(r.Group, videoTitleHints)
}

func containsAny(value string, tokens []string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// DetermineContentType returns a best-effort content type for a parsed release.
func DetermineContentType(r *rls.Release) ContentType {
	if r == nil {
		return ContentUnknown
	}

	switch r.Type {
	case rls.Movie:
		return ContentMovie
	case rls.Episode, rls.Series:
		return ContentTV
	case rls.Music:
		if looksLikeVideo(r) {
			if r.Series > 0 || r.Episode > 0 {
				return ContentTV
			}
			return ContentMovie
		}
		return ContentMusic
	case rls.Audiobook:
		return ContentAudiobook
	case rls.Book, rls.Education, rls.Magazine:
		return ContentBook
	case rls.Comic:
		return ContentComic
	}

	switch {
	case BookFormat(r.Ext, r.Container, r.Other) != "":
		return ContentBook
	case AudioFormat(r.Ext, r.Container, r.Audio) != "" && !looksLikeVideo(r):
		return ContentMusic
	case r.Series > 0 || r.Episode > 0:
		return ContentTV
	case r.Year > 0 && looksLikeVideo(r):
		return ContentMovie
	default:
		return ContentUnknown
	}
}
