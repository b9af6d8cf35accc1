// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type candidate struct {
	name string
	size int64
}

type criteria struct {
	maxSize int64
}

func pass(name string, p Priority) Spec[candidate, criteria] {
	return Spec[candidate, criteria]{
		Name:     name,
		Priority: p,
		Evaluate: func(candidate, criteria) (Result, error) { return Accept(), nil },
	}
}

func fail(name string, p Priority, reason string) Spec[candidate, criteria] {
	return Spec[candidate, criteria]{
		Name:     name,
		Priority: p,
		Evaluate: func(candidate, criteria) (Result, error) { return Reject(reason), nil },
	}
}

func counting(name string, p Priority, calls *atomic.Int32) Spec[candidate, criteria] {
	return Spec[candidate, criteria]{
		Name:     name,
		Priority: p,
		Evaluate: func(candidate, criteria) (Result, error) {
			calls.Add(1)
			return Accept(), nil
		},
	}
}

func TestEngine_ApprovedWhenNoRejections(t *testing.T) {
	t.Parallel()

	engine := NewEngine(pass("a", PriorityDefault), pass("b", PriorityDatabase))
	d := engine.Decide(candidate{name: "x"}, criteria{})

	assert.True(t, d.Approved())
	assert.False(t, d.TemporarilyRejected())
	assert.Empty(t, d.Rejections)
	assert.Equal(t, "x", d.Subject.name)
}

func TestEngine_StopsAfterFirstRejectingTier(t *testing.T) {
	t.Parallel()

	var sameTier, laterTier atomic.Int32
	engine := NewEngine(
		counting("later", PriorityDatabase, &laterTier),
		fail("size", PriorityDefault, "too big"),
		counting("sibling", PriorityDefault, &sameTier),
		pass("ok", PriorityDefault),
	)

	d := engine.Decide(candidate{}, criteria{})

	require.False(t, d.Approved())
	assert.Equal(t, []string{"too big"}, d.Reasons())
	assert.Equal(t, int32(1), sameTier.Load(), "rules in the rejecting tier still run")
	assert.Equal(t, int32(0), laterTier.Load(), "later tiers must not run once a tier rejected")
}

func TestEngine_CollectsAllRejectionsOfTier(t *testing.T) {
	t.Parallel()

	engine := NewEngine(
		fail("a", PriorityMetadata, "first"),
		fail("b", PriorityMetadata, "second"),
		fail("c", PriorityDisk, "never"),
	)

	d := engine.Decide(candidate{}, criteria{})
	assert.Equal(t, []string{"first", "second"}, d.Reasons())
}

func TestEngine_TiersRunInAscendingOrder(t *testing.T) {
	t.Parallel()

	var order []string
	record := func(name string, p Priority) Spec[candidate, criteria] {
		return Spec[candidate, criteria]{
			Name:     name,
			Priority: p,
			Evaluate: func(candidate, criteria) (Result, error) {
				order = append(order, name)
				return Accept(), nil
			},
		}
	}

	engine := NewEngine(record("disk", PriorityDisk), record("db", PriorityDatabase), record("default", PriorityDefault))
	engine.Decide(candidate{}, criteria{})

	assert.Equal(t, []string{"default", "db", "disk"}, order)
}

func TestEngine_FaultBecomesPermanentRejection(t *testing.T) {
	t.Parallel()

	var sibling atomic.Int32
	broken := Spec[candidate, criteria]{
		Name:     "broken",
		Priority: PriorityDefault,
		Type:     Temporary,
		Evaluate: func(candidate, criteria) (Result, error) {
			return Result{}, errors.New("boom")
		},
	}

	d := NewEngine(broken, counting("sibling", PriorityDefault, &sibling)).Decide(candidate{}, criteria{})

	require.Len(t, d.Rejections, 1)
	assert.Equal(t, Permanent, d.Rejections[0].Type)
	assert.Contains(t, d.Rejections[0].Reason, "broken")
	assert.Contains(t, d.Rejections[0].Reason, "boom")
	assert.Equal(t, int32(1), sibling.Load())
}

func TestEngine_PanicBecomesRejection(t *testing.T) {
	t.Parallel()

	panicky := Spec[candidate, criteria]{
		Name: "panicky",
		Evaluate: func(c candidate, _ criteria) (Result, error) {
			var m map[string]int
			m[c.name] = 1
			return Accept(), nil
		},
	}

	var d Decision[candidate]
	require.NotPanics(t, func() {
		d = NewEngine(panicky).Decide(candidate{name: "x"}, criteria{})
	})
	require.Len(t, d.Rejections, 1)
	assert.Equal(t, Permanent, d.Rejections[0].Type)
	assert.Contains(t, d.Rejections[0].Reason, "panicky")
}

func TestEngine_NotApplicableIsPass(t *testing.T) {
	t.Parallel()

	skip := Spec[candidate, criteria]{
		Name: "skip",
		Evaluate: func(candidate, criteria) (Result, error) {
			return Result{}, fmt.Errorf("torrent only: %w", ErrNotApplicable)
		},
	}

	d := NewEngine(skip).Decide(candidate{}, criteria{})
	assert.True(t, d.Approved())
}

func TestEngine_RejectionTypes(t *testing.T) {
	t.Parallel()

	tempDefault := Spec[candidate, criteria]{
		Name:     "delay",
		Priority: PriorityDefault,
		Type:     Temporary,
		Evaluate: func(candidate, criteria) (Result, error) { return Reject("wait"), nil },
	}
	override := Spec[candidate, criteria]{
		Name:     "size",
		Priority: PriorityDefault,
		Type:     Temporary,
		Evaluate: func(c candidate, cr criteria) (Result, error) {
			if c.size > cr.maxSize {
				return RejectWith(Permanent, "too big").ForProfile(4), nil
			}
			return Accept(), nil
		},
	}

	onlyTemp := NewEngine(tempDefault).Decide(candidate{size: 1}, criteria{maxSize: 10})
	assert.True(t, onlyTemp.TemporarilyRejected())
	assert.False(t, onlyTemp.PermanentlyRejected())

	mixed := NewEngine(tempDefault, override).Decide(candidate{size: 100}, criteria{maxSize: 10})
	assert.False(t, mixed.TemporarilyRejected())
	assert.True(t, mixed.PermanentlyRejected())
	assert.Equal(t, 4, mixed.Rejections[1].ProfileID)
}

func TestEngine_EmptyReasonFallsBackToSpecName(t *testing.T) {
	t.Parallel()

	silent := Spec[candidate, criteria]{
		Name:     "silent",
		Evaluate: func(candidate, criteria) (Result, error) { return Result{}, nil },
	}

	d := NewEngine(silent).Decide(candidate{}, criteria{})
	assert.Equal(t, []string{"silent"}, d.Reasons())
}

func TestDecision_RejectionsAreSealed(t *testing.T) {
	t.Parallel()

	rejections := []Rejection{NewRejection("a")}
	d := New(candidate{}, rejections...)
	rejections[0].Reason = "mutated"

	assert.Equal(t, "a", d.Rejections[0].Reason)
}

func TestDecision_ApprovedMatchesEmptyRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rejections []Rejection
		approved   bool
		temporary  bool
	}{
		{name: "none", approved: true},
		{name: "single temporary", rejections: []Rejection{NewTemporaryRejection("t")}, temporary: true},
		{name: "all temporary", rejections: []Rejection{NewTemporaryRejection("a"), NewTemporaryRejection("b")}, temporary: true},
		{name: "mixed", rejections: []Rejection{NewTemporaryRejection("a"), NewRejection("b")}},
		{name: "permanent", rejections: []Rejection{NewRejection("a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("subject", tt.rejections...)
			assert.Equal(t, tt.approved, d.Approved())
			assert.Equal(t, len(tt.rejections) == 0, d.Approved())
			assert.Equal(t, tt.temporary, d.TemporarilyRejected())
			switch {
			case tt.approved:
				assert.Equal(t, "approved", d.Outcome())
			case tt.temporary:
				assert.Equal(t, "temporary", d.Outcome())
			default:
				assert.Equal(t, "rejected", d.Outcome())
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[candidate, criteria]()
	require.NoError(t, reg.Register(pass("a", PriorityDefault)))
	require.Error(t, reg.Register(pass("a", PriorityDatabase)), "duplicate names are rejected")
	require.Error(t, reg.Register(Spec[candidate, criteria]{Name: "  "}))
	require.Error(t, reg.Register(Spec[candidate, criteria]{Name: "nil-eval"}))
	assert.Equal(t, 1, reg.Len())

	assert.Panics(t, func() { reg.MustRegister(pass("a", PriorityDefault)) })

	reg.MustRegister(fail("b", PriorityDatabase, "nope"))
	d := reg.Engine().Decide(candidate{}, criteria{})
	assert.Equal(t, []string{"nope"}, d.Reasons())
}

func TestRegistry_RegisterIsAllOrNothing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[candidate, criteria]()
	err := reg.Register(pass("a", PriorityDefault), pass("b", PriorityDefault), Spec[candidate, criteria]{Name: "c"})
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())

	require.Error(t, reg.Register(pass("a", PriorityDefault), pass("a", PriorityDatabase)), "duplicates within a batch")
	assert.Equal(t, 0, reg.Len())

	require.NoError(t, reg.Register(pass("a", PriorityDefault), pass("b", PriorityDefault)))
	assert.Equal(t, 2, reg.Len())
}
