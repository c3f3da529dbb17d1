// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the boxoffice record model: [Ticket], the
// [Venue] it optionally references, [Coordinates], and the
// [TicketType] and [VenueType] enumerations.
//
// The same structs travel on the wire (CBOR, see lib/codec) and are
// held by the collection store. Persistence uses its own document
// types in lib/snapshot and converts through this package so that
// every loaded record passes the same validation as a record built
// interactively.
//
// Validation is split in two. [Ticket.ValidateContent] checks the
// fields a client supplies (name, coordinates, price, refundable,
// type, venue content). [Ticket.Validate] additionally checks the
// server-assigned fields (id, creation time, venue id) and is what
// the store and the snapshot loader enforce on stored records. Both
// return a [*ValidationError] naming the first invalid field.
//
// The per-field validators ([ValidateName], [ValidateY],
// [ValidatePrice], [ValidateVenueName], [ValidateCapacity]) are
// exported for the interactive prompter, which re-asks a single field
// instead of rejecting a whole record.
//
// Enumerations are ordered by declaration: VIP < USUAL < BUDGETARY <
// CHEAP, and BAR < LOFT < THEATRE < MALL < STADIUM. The zero value of
// each is "unset". An unset ticket type is legal; an unset venue type
// is not.
//
// This package depends on no other boxoffice packages.
package schema
