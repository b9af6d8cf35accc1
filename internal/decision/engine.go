// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tier[T, C any] struct {
	priority Priority
	specs    []Spec[T, C]
}

// Engine evaluates subjects against priority-grouped specifications.
// An engine holds no mutable state and is safe for concurrent use.
type Engine[T, C any] struct {
	tiers  []tier[T, C]
	logger zerolog.Logger
}

// NewEngine groups specs by priority. Specs keep their registration order within a tier.
func NewEngine[T, C any](specs ...Spec[T, C]) *Engine[T, C] {
	sorted := slices.Clone(specs)
	slices.SortStableFunc(sorted, func(a, b Spec[T, C]) int {
		return int(a.Priority) - int(b.Priority)
	})

	var tiers []tier[T, C]
	for _, s := range sorted {
		if n := len(tiers); n > 0 && tiers[n-1].priority == s.Priority {
			tiers[n-1].specs = append(tiers[n-1].specs, s)
			continue
		}
		tiers = append(tiers, tier[T, C]{priority: s.Priority, specs: []Spec[T, C]{s}})
	}

	return &Engine[T, C]{tiers: tiers, logger: log.Logger}
}

// Engine builds an engine from the registered specifications.
func (r *Registry[T, C]) Engine() *Engine[T, C] {
	return NewEngine(r.specs...)
}

// WithLogger returns a copy of the engine that logs through logger.
func (e *Engine[T, C]) WithLogger(logger zerolog.Logger) *Engine[T, C] {
	clone := *e
	clone.logger = logger
	return &clone
}

// Decide runs the tiers in ascending priority. It stops after the first tier
// that produced a rejection and returns only that tier's rejections.
func (e *Engine[T, C]) Decide(subject T, ctx C) Decision[T] {
	for _, t := range e.tiers {
		var rejections []Rejection
		for _, s := range t.specs {
			if r, rejected := e.evaluate(s, subject, ctx); rejected {
				rejections = append(rejections, r)
			}
		}
		if len(rejections) > 0 {
			return New(subject, rejections...)
		}
	}
	return New(subject)
}

func (e *Engine[T, C]) evaluate(s Spec[T, C], subject T, ctx C) (rej Rejection, rejected bool) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error().
				Str("spec", s.Name).
				Str("tier", s.Priority.String()).
				Interface("panic", p).
				Msg("decision: specification panicked")
			rej, rejected = NewRejection(fmt.Sprintf("%s: %v", s.Name, p)), true
		}
	}()

	result, err := s.Evaluate(subject, ctx)
	if err != nil {
		if errors.Is(err, ErrNotApplicable) {
			e.logger.Trace().Str("spec", s.Name).Msg("decision: specification not applicable")
			return Rejection{}, false
		}
		e.logger.Error().
			Err(err).
			Str("spec", s.Name).
			Str("tier", s.Priority.String()).
			Msg("decision: specification failed")
		return NewRejection(fmt.Sprintf("%s: %v", s.Name, err)), true
	}

	if result.Accepted() {
		e.logger.Trace().Str("spec", s.Name).Msg("decision: accepted")
		return Rejection{}, false
	}

	reason := result.reason
	if reason == "" {
		reason = s.Name
	}
	e.logger.Debug().
		Str("spec", s.Name).
		Str("reason", reason).
		Msg("decision: rejected")
	return Rejection{Reason: reason, Type: s.rejectionType(result), ProfileID: result.profileID}, true
}
