// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"slices"
	"strings"
)

// Decision is the outcome of one evaluation pass over a subject.
// The rejection list is sealed when the decision is returned.
type Decision[T any] struct {
	Subject    T           `json:"subject"`
	Rejections []Rejection `json:"rejections,omitempty"`
}

// New returns a decision with a private copy of rejections.
func New[T any](subject T, rejections ...Rejection) Decision[T] {
	return Decision[T]{Subject: subject, Rejections: slices.Clone(rejections)}
}

// Approved reports whether no specification rejected the subject.
func (d Decision[T]) Approved() bool {
	return len(d.Rejections) == 0
}

// TemporarilyRejected reports whether the subject was rejected and every
// rejection is temporary.
func (d Decision[T]) TemporarilyRejected() bool {
	if len(d.Rejections) == 0 {
		return false
	}
	for _, r := range d.Rejections {
		if r.Type != Temporary {
			return false
		}
	}
	return true
}

// PermanentlyRejected reports whether at least one rejection is permanent.
func (d Decision[T]) PermanentlyRejected() bool {
	for _, r := range d.Rejections {
		if r.Type == Permanent {
			return true
		}
	}
	return false
}

// Reasons returns the rejection reasons in evaluation order.
func (d Decision[T]) Reasons() []string {
	out := make([]string, 0, len(d.Rejections))
	for _, r := range d.Rejections {
		out = append(out, r.Reason)
	}
	return out
}

// ReasonString joins the rejection reasons for logging and user-facing messages.
func (d Decision[T]) ReasonString() string {
	return strings.Join(d.Reasons(), ", ")
}

// Outcome labels a decision for logs and metrics: approved, temporary or rejected.
func (d Decision[T]) Outcome() string {
	switch {
	case d.Approved():
		return "approved"
	case d.TemporarilyRejected():
		return "temporary"
	default:
		return "rejected"
	}
}

// Observer receives one call per finished decision.
type Observer interface {
	ObserveDecision(pipeline, outcome string)
}

// NopObserver discards observations.
type NopObserver struct{}

func (NopObserver) ObserveDecision(string, string) {}
