// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is the BLAKE3-256 hash of an uncompressed collection
// document.
type Digest [32]byte

// DigestOf hashes an encoded document.
func DigestOf(document []byte) Digest {
	return Digest(blake3.Sum256(document))
}

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, for log lines.
func (d Digest) Short() string {
	return d.String()[:12]
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
