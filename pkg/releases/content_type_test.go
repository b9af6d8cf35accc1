// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"testing"

	"github.com/moistari/rls"
	"github.com/stretchr/testify/assert"
)

func TestDetermineContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		release *rls.Release
		want    ContentType
	}{
		{"nil", nil, ContentUnknown},
		{"movie", &rls.Release{Type: rls.Movie}, ContentMovie},
		{"episode", &rls.Release{Type: rls.Episode, Series: 1, Episode: 2}, ContentTV},
		{"book", &rls.Release{Type: rls.Book}, ContentBook},
		{"magazine", &rls.Release{Type: rls.Magazine}, ContentBook},
		{"audiobook", &rls.Release{Type: rls.Audiobook}, ContentAudiobook},
		{"music", &rls.Release{Type: rls.Music, Audio: []string{"FLAC"}}, ContentMusic},
		{"music misparsed video", &rls.Release{Type: rls.Music, Resolution: "1080p"}, ContentMovie},
		{"music misparsed episode", &rls.Release{Type: rls.Music, Resolution: "720p", Series: 2}, ContentTV},
		{"unknown epub", &rls.Release{Type: rls.Unknown, Ext: "epub"}, ContentBook},
		{"unknown flac", &rls.Release{Type: rls.Unknown, Ext: "flac"}, ContentMusic},
		{"unknown episode numbers", &rls.Release{Type: rls.Unknown, Episode: 3}, ContentTV},
		{"unknown", &rls.Release{Type: rls.Unknown}, ContentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetermineContentType(tt.release))
		})
	}
}

func TestContentType_IsVideo(t *testing.T) {
	t.Parallel()

	assert.True(t, ContentMovie.IsVideo())
	assert.True(t, ContentTV.IsVideo())
	assert.False(t, ContentBook.IsVideo())
}

func TestNormalizeSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SourceWEBDL, NormalizeSource("web-dl"))
	assert.Equal(t, SourceWEBDL, NormalizeSource(" WEB "))
	assert.Equal(t, SourceWEBRip, NormalizeSource("WEBRip"))
	assert.Equal(t, SourceBluray, NormalizeSource("BluRay"))
	assert.Equal(t, SourceBluray, NormalizeSource("UHD.BluRay"))
	assert.Equal(t, "LASERDISC", NormalizeSource("laserdisc"))
}

func TestIsRemux(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRemux("BluRay REMUX", nil))
	assert.True(t, IsRemux("BluRay", []string{"REMUX"}))
	assert.False(t, IsRemux("BluRay", []string{"PROPER"}))
}

func TestResolutionHeight(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"1080p": 1080,
		"720p":  720,
		"1080i": 1080,
		"2160p": 2160,
		"4K":    2160,
		"":      0,
		"hd":    0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ResolutionHeight(in), in)
	}
}

func TestBookAndAudioFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "epub", BookFormat(".EPUB", "", nil))
	assert.Equal(t, "azw3", BookFormat("", "", []string{"RETAiL", "AZW3"}))
	assert.Empty(t, BookFormat("mkv", "mkv", nil))

	assert.Equal(t, "flac", AudioFormat("", "", []string{"FLAC"}))
	assert.Equal(t, "mp3", AudioFormat("mp3", "", nil))
	assert.Empty(t, AudioFormat("", "", []string{"DDP"}))
}
