// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

const defaultNormalizerTTL = 5 * time.Minute

// TransformFunc transforms K to V.
type TransformFunc[K, V any] func(K) V

// Normalizer memoizes a transform behind a TTL cache. Safe for concurrent use.
type Normalizer[K comparable, V any] struct {
	cache     *ttlcache.Cache[K, V]
	transform TransformFunc[K, V]
}

// NewNormalizer returns a normalizer that caches transform results for ttl.
func NewNormalizer[K comparable, V any](ttl time.Duration, transform TransformFunc[K, V]) *Normalizer[K, V] {
	return &Normalizer[K, V]{
		cache:     ttlcache.New(ttlcache.Options[K, V]{}.SetDefaultTTL(ttl)),
		transform: transform,
	}
}

// NewDefaultNormalizer lower-cases and trims.
func NewDefaultNormalizer() *Normalizer[string, string] {
	return NewNormalizer(defaultNormalizerTTL, defaultTransform)
}

func defaultTransform(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize returns the cached transform of key, computing it on a miss.
func (n *Normalizer[K, V]) Normalize(key K) V {
	if cached, ok := n.cache.Get(key); ok {
		return cached
	}
	v := n.transform(key)
	n.cache.Set(key, v, ttlcache.DefaultTTL)
	return v
}

// Clear drops a cached entry.
func (n *Normalizer[K, V]) Clear(key K) {
	n.cache.Delete(key)
}

// DefaultNormalizer is shared by callers that only need case folding.
var DefaultNormalizer = NewDefaultNormalizer()
