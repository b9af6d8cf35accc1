// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases wraps the rls release-name parser with a TTL cache and
// normalizes the fields the library cares about.
package releases

import (
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/moistari/rls"
)

const defaultParserTTL = 10 * time.Minute

// Parser caches rls parse results by trimmed name. Safe for concurrent use.
type Parser struct {
	cache *ttlcache.Cache[string, *rls.Release]
}

// NewParser returns a parser that keeps results for ttl.
func NewParser(ttl time.Duration) *Parser {
	return &Parser{
		cache: ttlcache.New(ttlcache.Options[string, *rls.Release]{}.SetDefaultTTL(ttl)),
	}
}

// NewDefaultParser returns a parser with the default cache lifetime.
func NewDefaultParser() *Parser {
	return NewParser(defaultParserTTL)
}

// Parse returns the parsed release. It never returns nil; a nil parser or a
// blank name yields an empty release.
func (p *Parser) Parse(name string) *rls.Release {
	name = strings.TrimSpace(name)
	if p == nil || name == "" {
		return &rls.Release{}
	}
	if cached, ok := p.cache.Get(name); ok {
		return cached
	}
	r := rls.ParseString(name)
	p.cache.Set(name, &r, ttlcache.DefaultTTL)
	return &r
}

// Clear drops the cached result for name.
func (p *Parser) Clear(name string) {
	name = strings.TrimSpace(name)
	if p == nil || name == "" {
		return
	}
	p.cache.Delete(name)
}
