// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that stamps records with the current time accepts a [Clock]
// instead of calling time.Now directly. Production wiring passes
// [Real]; tests pass a [FakeClock] so creation timestamps are exact:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store := collection.New(c)
//	c.Advance(time.Minute)
package clock
