// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package collection implements the in-memory ticket store.
//
// A [Store] is an ordered sequence of tickets; insertion order is
// what show reports. The store owns its records: tickets are copied
// in on every mutation and cloned on every read, so no caller keeps a
// pointer into stored state.
//
// One mutex guards everything. Identifier allocation (max existing id
// plus one) happens inside the same critical section as the insertion
// that uses the id, and update finds and replaces its record without
// releasing the lock, so concurrent connections never observe or
// produce duplicate ids.
//
// Venue ids are store-assigned the same way: a venue arriving on an
// add or insert gets max(venue ids)+1, and an update that keeps a
// venue keeps that venue's id.
//
// Failures are sentinel errors: [ErrNotFound], [ErrEmpty], and
// [ErrOutOfRange]. Payload validation failures are
// [*schema.ValidationError] values. A failed operation never mutates
// the store.
package collection
