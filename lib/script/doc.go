// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package script replays command scripts through a command
// dispatcher.
//
// A script is plain text, one command per line. Blank lines and lines
// starting with "#" are skipped. Every other line is split on
// whitespace into a command name and its arguments and dispatched
// exactly as if a client had sent it, without a payload. The result
// text of each line is appended to the script's output; failures are
// prefixed with "error: " and replay continues with the next line.
//
// "execute_script <path>" lines recurse. The nested script is fetched
// through a [Loader], which also turns a path into the identifier
// used for cycle detection ([FileLoader] cleans the path and resolves
// it against a root directory).
//
// Cycle detection uses a call stack that belongs to one top-level
// [Engine.Run]. The stack is an ordered list of identifiers passed by
// value down the recursion, so it is popped on every return path and
// two concurrent runs never see each other's stack. Entering a script
// that is already on the stack appends one line describing the
// [*RecursionError] and skips that branch. Running the same script
// twice in sequence is legal.
//
// Each script's output is framed with start and end banners naming
// the script; nested scripts use a distinct "nested script" banner.
package script
