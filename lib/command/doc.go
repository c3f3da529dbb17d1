// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package command provides the named-command registry and dispatcher
// that every boxoffice surface (TCP sessions, scripts, the operator
// console) executes through.
//
// A [Command] is classified on two axes. [Kind] says whether the
// command needs a ticket payload ([KindPayload]) or not
// ([KindPlain]). Args names the positional arguments the command
// requires; a call with missing or extra arguments is a
// [*UsageError] and the command body never runs. ConsoleOnly commands
// (save, shutdown) are invisible to remote callers: looking one up
// from [OriginClient] fails exactly like an unknown name.
//
// Each command has one entry point, Run, which receives a [Call]
// whose Payload is set for payload commands. Dispatch is split in two
// so the connection protocol can run the payload exchange in between:
//
//   - [Registry.Resolve] looks up the name and checks arguments. It
//     fails with [ErrUnknownCommand] (wrapped in an
//     [*UnknownCommandError] carrying a closest-name suggestion) or
//     a [*UsageError].
//   - [Registry.Execute] runs a resolved command. A payload command
//     without a payload is rejected with [ErrPayloadRequired].
//
// [Registry.Dispatch] does both and converts every failure into a
// [Result] with OK false. Failures never escape the dispatch boundary
// as errors; the caller only reports the text.
//
// [RegisterBuiltins] installs the ticket command set against a
// collection store.
package command
