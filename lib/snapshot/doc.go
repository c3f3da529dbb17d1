// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot persists the ticket collection as an XML document.
//
// The document is an ordered list of tickets with nested coordinates
// and an optional nested venue:
//
//	<tickets>
//	    <ticket>
//	        <id>1</id>
//	        <name>Spring concert</name>
//	        <coordinates><x>1.5</x><y>-10</y></coordinates>
//	        <creationDate>2026-03-01T18:00:00Z</creationDate>
//	        <price>1200</price>
//	        <refundable>true</refundable>
//	        <type>VIP</type>
//	        <venue><id>1</id><name>Main hall</name><capacity>300</capacity><type>THEATRE</type></venue>
//	    </ticket>
//	</tickets>
//
// [Decode] parses leniently: every ticket element is converted and
// validated on its own, and a record that fails (a bad field, a
// duplicate ticket id, a venue id reused for a different venue) is
// dropped with a [Diagnostic] instead of failing the whole load. Only
// a document that is not well-formed XML is an error.
//
// A [File] adds what a server needs around the codec:
//
//   - Compression chosen by file extension: ".zst" for zstd, ".lz4"
//     for an LZ4 frame, anything else is plain XML.
//   - Atomic saves: the document is written to a temporary file in the
//     same directory, fsynced, and renamed into place.
//   - A BLAKE3 digest of the encoded document. Save skips the write
//     when the digest matches the last one loaded or saved.
//   - An optional advisory lock (flock on "<path>.lock") held from
//     Open to Close, so two servers never share one collection file.
package snapshot
