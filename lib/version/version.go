// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns the --version line for a binary, e.g.
// "boxoffice-server 0.1.0-dev (abc1234, 2026-02-10T09:00:00Z)".
func Info(binary string) string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s %s (%s%s, %s)", binary, Version, GitCommit, dirty, BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full(binary string) string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(binary), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
