// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// Kind classifies whether a command consumes a ticket payload.
type Kind int

const (
	// KindPlain commands take only positional arguments.
	KindPlain Kind = iota

	// KindPayload commands also take a ticket. Over the wire the
	// server asks for it with a need_payload response before running
	// the command.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Origin identifies who issued a call.
type Origin int

const (
	// OriginClient is a remote connection (or a script it submitted).
	OriginClient Origin = iota

	// OriginConsole is the server operator's stdin console.
	OriginConsole
)

func (o Origin) String() string {
	if o == OriginConsole {
		return "console"
	}
	return "client"
}

// Command describes one named command.
type Command struct {
	// Name is the command name as typed (e.g., "remove_by_id").
	Name string

	// Summary is a one-line description shown by help.
	Summary string

	// Args names the required positional arguments, in order. A call
	// must supply exactly this many.
	Args []string

	// Kind says whether the command takes a ticket payload.
	Kind Kind

	// ConsoleOnly hides the command from remote callers.
	ConsoleOnly bool

	// Run executes the command and returns the text to report. An
	// error is reported to the caller as a failed result.
	Run func(ctx context.Context, call Call) (string, error)
}

// Usage returns the command synopsis, e.g. "update <id> {ticket}".
func (c *Command) Usage() string {
	var builder strings.Builder
	builder.WriteString(c.Name)
	for _, arg := range c.Args {
		builder.WriteString(" <")
		builder.WriteString(arg)
		builder.WriteString(">")
	}
	if c.Kind == KindPayload {
		builder.WriteString(" {ticket}")
	}
	return builder.String()
}

// visibleTo reports whether origin may see and run the command.
func (c *Command) visibleTo(origin Origin) bool {
	return !c.ConsoleOnly || origin == OriginConsole
}

// Call is one invocation of a command.
type Call struct {
	Name    string
	Args    []string
	Payload *schema.Ticket
	Origin  Origin
}

// Result is the outcome of a dispatched call.
type Result struct {
	Message string
	OK      bool
}

// Dispatcher runs calls. [*Registry] implements it; the script engine
// and the connection protocol depend on this interface.
type Dispatcher interface {
	Resolve(call Call) (*Command, error)
	Execute(ctx context.Context, cmd *Command, call Call) Result
	Dispatch(ctx context.Context, call Call) Result
}
