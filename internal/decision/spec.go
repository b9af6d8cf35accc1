// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package decision

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Priority orders specifications into tiers. Lower tiers run first.
type Priority int

const (
	// PriorityDefault is for cheap in-memory checks.
	PriorityDefault Priority = 0
	// PriorityMetadata is for checks that depend on resolved metadata.
	PriorityMetadata Priority = 10
	// PriorityDatabase is for checks against history, queue and existing files.
	PriorityDatabase Priority = 20
	// PriorityDisk is for checks that probe the filesystem.
	PriorityDisk Priority = 30
)

func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityMetadata:
		return "metadata"
	case PriorityDatabase:
		return "database"
	case PriorityDisk:
		return "disk"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ErrNotApplicable signals that a specification does not apply to the subject.
// The engine treats it as a pass.
var ErrNotApplicable = errors.New("specification not applicable")

// Result is the outcome of a single specification.
type Result struct {
	accepted  bool
	reason    string
	typ       RejectionType
	profileID int
}

// Accept passes the subject.
func Accept() Result {
	return Result{accepted: true}
}

// Reject fails the subject with the specification's default rejection type.
func Reject(reason string) Result {
	return Result{reason: reason}
}

// Rejectf is Reject with formatting.
func Rejectf(format string, args ...any) Result {
	return Result{reason: fmt.Sprintf(format, args...)}
}

// RejectWith fails the subject with an explicit rejection type.
func RejectWith(typ RejectionType, reason string) Result {
	return Result{reason: reason, typ: typ}
}

// ForProfile links a rejection to the quality profile that caused it.
func (r Result) ForProfile(profileID int) Result {
	r.profileID = profileID
	return r
}

// Accepted reports whether the result is a pass.
func (r Result) Accepted() bool {
	return r.accepted
}

// EvaluateFunc evaluates a subject against a context.
type EvaluateFunc[T, C any] func(subject T, ctx C) (Result, error)

// Spec is a named, stateless predicate over subjects of type T evaluated with context C.
type Spec[T, C any] struct {
	Name     string
	Priority Priority
	// Type is the default rejection type; empty means Permanent.
	Type     RejectionType
	Evaluate EvaluateFunc[T, C]
}

func (s Spec[T, C]) rejectionType(r Result) RejectionType {
	if r.typ != "" {
		return r.typ
	}
	if s.Type != "" {
		return s.Type
	}
	return Permanent
}

// Registry collects specifications explicitly at startup.
type Registry[T, C any] struct {
	specs []Spec[T, C]
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry[T, C any]() *Registry[T, C] {
	return &Registry[T, C]{names: make(map[string]struct{})}
}

// Register adds specs to the registry. Names must be unique and non-empty.
// Either every spec is added or none is.
func (r *Registry[T, C]) Register(specs ...Spec[T, C]) error {
	batch := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return errors.New("specification name is required")
		}
		if s.Evaluate == nil {
			return fmt.Errorf("specification %q has no evaluate function", name)
		}
		if _, exists := r.names[name]; exists {
			return fmt.Errorf("specification %q already registered", name)
		}
		if _, exists := batch[name]; exists {
			return fmt.Errorf("specification %q already registered", name)
		}
		batch[name] = struct{}{}
	}

	for name := range batch {
		r.names[name] = struct{}{}
	}
	r.specs = append(r.specs, specs...)
	return nil
}

// MustRegister is Register that panics on error. Intended for static rule sets.
func (r *Registry[T, C]) MustRegister(specs ...Spec[T, C]) *Registry[T, C] {
	if err := r.Register(specs...); err != nil {
		panic(err)
	}
	return r
}

// Specs returns a copy of the registered specifications.
func (r *Registry[T, C]) Specs() []Spec[T, C] {
	return slices.Clone(r.specs)
}

// Len returns the number of registered specifications.
func (r *Registry[T, C]) Len() int {
	return len(r.specs)
}
