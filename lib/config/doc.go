// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the boxoffice server configuration.
//
// Configuration comes from at most one file, named either by the
// --config flag or the BOXOFFICE_CONFIG environment variable (see
// [Load]). There is no discovery: with neither set, [Default] applies.
// YAML is the primary format; files ending in .json or .jsonc are read
// as JSON with comments and trailing commas.
//
// The file may carry development and production sections that
// override base values when [Config].Environment matches. Production
// defaults to JSON logs.
//
// Path fields (storage.path, scripts.root) expand ${VAR} and
// ${VAR:-default} after loading. No other environment variables
// override config values.
//
// This package depends on no other boxoffice packages.
package config
