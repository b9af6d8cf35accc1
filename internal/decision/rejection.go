// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package decision implements the generic specification pipeline used to accept
// or reject candidate releases and candidate files.
package decision

import "fmt"

// RejectionType tells callers whether a rejected candidate may become acceptable later.
type RejectionType string

const (
	// Permanent rejections never clear on their own.
	Permanent RejectionType = "permanent"
	// Temporary rejections may clear later (delays, minimum age).
	Temporary RejectionType = "temporary"
)

// Rejection is a single reason a candidate failed one specification.
type Rejection struct {
	Reason string        `json:"reason"`
	Type   RejectionType `json:"type"`
	// ProfileID links the rejection to a quality profile, 0 when unrelated.
	ProfileID int `json:"profileId,omitempty"`
}

// NewRejection builds a permanent rejection.
func NewRejection(reason string) Rejection {
	return Rejection{Reason: reason, Type: Permanent}
}

// NewTemporaryRejection builds a temporary rejection.
func NewTemporaryRejection(reason string) Rejection {
	return Rejection{Reason: reason, Type: Temporary}
}

func (r Rejection) String() string {
	return fmt.Sprintf("[%s] %s", r.Type, r.Reason)
}
