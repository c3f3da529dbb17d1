// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration for the
// boxoffice wire protocol.
//
// Every message exchanged between the server and its clients is a CBOR
// value. CBOR is self-delimiting, so a persistent TCP connection
// carries a plain sequence of values with no additional framing: each
// side keeps one [Encoder] and one [Decoder] per connection.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Wire types carry `cbor` struct tags. The on-disk collection format
// is XML and uses separate document types in lib/snapshot, so no type
// carries both tag families.
package codec
