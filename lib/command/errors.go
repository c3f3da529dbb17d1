// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand matches every [*UnknownCommandError].
	ErrUnknownCommand = errors.New("unknown command")

	// ErrPayloadRequired is returned when a payload command is
	// executed without a ticket.
	ErrPayloadRequired = errors.New("command requires a ticket payload")
)

// UnknownCommandError reports a name the registry does not know (or
// does not show to the caller).
type UnknownCommandError struct {
	Name string

	// Suggestion is the closest visible command name, or empty.
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %q?); type help for the command list", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q; type help for the command list", e.Name)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// UsageError reports wrong arguments for a known command.
type UsageError struct {
	Command string
	Usage   string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (usage: %s)", e.Command, e.Reason, e.Usage)
}
