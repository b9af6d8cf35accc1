// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, NewParser(time.Minute).cache)
	assert.NotNil(t, NewDefaultParser().cache)
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("nil parser returns empty release", func(t *testing.T) {
		t.Parallel()

		var parser *Parser
		assert.NotNil(t, parser.Parse("Some.Book.2024.EPUB"))
	})

	t.Run("blank names return empty release", func(t *testing.T) {
		t.Parallel()

		parser := NewDefaultParser()
		assert.Empty(t, parser.Parse("").Title)
		assert.Empty(t, parser.Parse("   ").Title)
	})

	t.Run("extracts metadata", func(t *testing.T) {
		t.Parallel()

		r := NewDefaultParser().Parse("Movie.Title.2024.1080p.WEB-DL.x264-GROUP")
		require.NotNil(t, r)
		assert.Equal(t, 2024, r.Year)
		assert.Equal(t, "1080p", r.Resolution)
		assert.Equal(t, "GROUP", r.Group)
	})

	t.Run("caches by trimmed name", func(t *testing.T) {
		t.Parallel()

		parser := NewDefaultParser()
		first := parser.Parse("  Test.Movie.2024.720p.HDTV  ")
		second := parser.Parse("Test.Movie.2024.720p.HDTV")
		assert.Same(t, first, second)
	})
}

func TestParser_Clear(t *testing.T) {
	t.Parallel()

	var nilParser *Parser
	assert.NotPanics(t, func() { nilParser.Clear("test") })

	parser := NewDefaultParser()
	assert.NotPanics(t, func() { parser.Clear("") })

	name := "Test.Movie.2024.720p.HDTV"
	first := parser.Parse(name)
	parser.Clear("  " + name + "  ")
	second := parser.Parse(name)

	assert.NotSame(t, first, second)
	assert.Equal(t, *first, *second)
}
