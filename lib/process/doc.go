// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the binary entrypoint helpers shared by the
// boxoffice server and client. [Fatal] is the one place where a
// binary writes to stderr without the structured logger, for errors
// returned by run() before or after the logger exists.
package process
