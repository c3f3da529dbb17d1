// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for boxoffice
// packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that individual tests never call time.After directly.
// Server tests use them to bound waits on goroutines that drive a
// real TCP connection.
//
// [WriteFiles] lays out a directory of script or snapshot fixtures
// under t.TempDir and returns its path.
//
// [Logger] returns a slog.Logger that only reports errors, writing
// through t.Log so output is attached to the failing test.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation (ticket names, script names shared across
// connections).
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
