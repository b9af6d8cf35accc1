// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RedactedStr replaces secrets in printed or logged configuration.
const RedactedStr = "<redacted>"

// RedactString returns RedactedStr for any non-empty s.
func RedactString(s string) string {
	if len(s) == 0 {
		return ""
	}
	return RedactedStr
}

// IsRedactedString reports whether s is the redaction placeholder, so a
// round-tripped redacted value can be told apart from a real secret.
func IsRedactedString(s string) bool {
	return s == RedactedStr
}
