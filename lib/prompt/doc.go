// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt builds a ticket interactively, one field at a time.
// Each answer is checked with the lib/schema validators and the field
// is asked again until it is acceptable, so a completed [Prompter.Ticket]
// always passes [schema.Ticket.ValidateContent].
package prompt
