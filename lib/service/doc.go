// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the boxoffice wire protocol: a TCP
// [Server] that runs one session per connection, and the matching
// [Client].
//
// Every message is a single CBOR value (see lib/codec). CBOR is
// self-delimiting, so a connection carries a plain sequence of values
// with no further framing. Clients send [Request] values; the server
// answers every request with exactly one [Response], except that a
// payload command is answered first with a need_payload response and
// then, after the client's payload request, with the result.
//
// A session is a small state machine:
//
//	AwaitRequest -> Dispatching -> (AwaitPayload -> DispatchingWithPayload)? -> Responding -> AwaitRequest
//
// Requests are processed strictly in order: the response to request N
// is written before request N+1 is read. Unknown commands and bad
// arguments are reported without entering the payload phase. Anything
// that leaves the stream in an undefined position (undecodable CBOR, a
// payload request outside the payload slot, a non-payload follow-up
// to need_payload, a timeout waiting for the payload) is a
// [*ProtocolError]: the server sends a final error response and closes
// the connection. Other connections are not affected.
//
// Script requests carry the script text (the client reads its own
// file). The server replays it through a [ScriptRunner] and returns
// the aggregated output as one info response.
//
// The server never touches the collection directly; all state flows
// through the command dispatcher.
package service
