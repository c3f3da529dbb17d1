// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// RequestKind discriminates request messages.
type RequestKind string

const (
	// RequestCommand invokes a named command with positional args.
	RequestCommand RequestKind = "command"

	// RequestPayload answers a need_payload response with a ticket.
	RequestPayload RequestKind = "payload"

	// RequestScript submits a script for replay.
	RequestScript RequestKind = "script"
)

// Request is a client-to-server message.
type Request struct {
	Kind RequestKind `cbor:"kind"`

	// Name and Args are set for command requests.
	Name string   `cbor:"name,omitempty"`
	Args []string `cbor:"args,omitempty"`

	// Ticket is set for payload requests.
	Ticket *schema.Ticket `cbor:"ticket,omitempty"`

	// Path names the script and Content holds its text, for script
	// requests.
	Path    string `cbor:"path,omitempty"`
	Content string `cbor:"content,omitempty"`
}

// ResponseKind discriminates response messages.
type ResponseKind string

const (
	// ResponseInfo carries a command or script result.
	ResponseInfo ResponseKind = "info"

	// ResponseNeedPayload asks the client to send a payload request.
	ResponseNeedPayload ResponseKind = "need_payload"

	// ResponseError reports a failed command or a protocol violation.
	ResponseError ResponseKind = "error"
)

// Response is a server-to-client message.
type Response struct {
	Kind    ResponseKind `cbor:"kind"`
	OK      bool         `cbor:"ok"`
	Message string       `cbor:"message"`
}

// State is a session's position in the request/response cycle.
type State int

const (
	StateAwaitRequest State = iota
	StateDispatching
	StateAwaitPayload
	StateDispatchingWithPayload
	StateResponding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitRequest:
		return "await-request"
	case StateDispatching:
		return "dispatching"
	case StateAwaitPayload:
		return "await-payload"
	case StateDispatchingWithPayload:
		return "dispatching-with-payload"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProtocolError is a violation that ends the connection.
type ProtocolError struct {
	State  State
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error in %s: %s: %v", e.State, e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error in %s: %s", e.State, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
