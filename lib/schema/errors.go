// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// ValidationError reports the first invalid field of a record.
type ValidationError struct {
	// Field is the dotted field path, e.g. "venue.capacity".
	Field string

	// Reason describes the failed constraint, e.g. "must be > 0, got -3".
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
