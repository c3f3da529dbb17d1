// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process [slog.Logger] from the level and
// format names carried in configuration. The "auto" format writes
// human-readable text when the destination is a terminal and JSON
// otherwise.
package logging
