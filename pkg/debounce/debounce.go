// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package debounce delays work until a burst of triggers has settled.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently submitted function once no new submission
// has arrived for the configured delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	latest  func()
	stopped bool
}

// New creates a new Debouncer with the specified delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn. Each call within the delay replaces the pending function
// and restarts the wait. After Stop, fn runs immediately.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		fn()
		return
	}
	d.latest = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.latest
	d.latest = nil
	d.timer = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Queued reports whether a function is waiting to run.
func (d *Debouncer) Queued() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest != nil
}

// Stop cancels the timer and runs any pending function before returning.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.latest
	d.latest = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Keyed debounces independently per key. A key's debouncer is dropped once
// its function has run.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[K]*Debouncer
}

// NewKeyed creates a keyed debouncer.
func NewKeyed[K comparable](delay time.Duration) *Keyed[K] {
	return &Keyed[K]{delay: delay, pending: make(map[K]*Debouncer)}
}

// Do schedules fn for key.
func (k *Keyed[K]) Do(key K, fn func()) {
	k.mu.Lock()
	d, ok := k.pending[key]
	if !ok {
		d = New(k.delay)
		k.pending[key] = d
	}
	k.mu.Unlock()

	d.Do(func() {
		k.mu.Lock()
		if k.pending[key] == d {
			delete(k.pending, key)
		}
		k.mu.Unlock()
		fn()
	})
}

// Pending returns the number of keys waiting to fire.
func (k *Keyed[K]) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending)
}

// Stop flushes every pending key.
func (k *Keyed[K]) Stop() {
	k.mu.Lock()
	pending := make([]*Debouncer, 0, len(k.pending))
	for _, d := range k.pending {
		pending = append(pending, d)
	}
	k.mu.Unlock()

	for _, d := range pending {
		d.Stop()
	}
}
