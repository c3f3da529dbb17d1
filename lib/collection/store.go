// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/boxoffice/lib/clock"
	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// CollectionType is reported by info as the kind of collection held.
const CollectionType = "ordered ticket list"

var (
	// ErrNotFound is returned by Update when no ticket has the id.
	ErrNotFound = errors.New("no ticket with that id")

	// ErrEmpty is returned by RemoveFirst on an empty collection.
	ErrEmpty = errors.New("collection is empty")

	// ErrOutOfRange is returned by InsertAt for a position outside
	// [0, size].
	ErrOutOfRange = errors.New("position out of range")
)

// Info summarizes the collection.
type Info struct {
	Count     int
	Type      string
	CreatedAt time.Time
}

// Store is the ordered, mutex-guarded ticket collection.
type Store struct {
	clock     clock.Clock
	createdAt time.Time

	mu      sync.Mutex
	tickets []schema.Ticket
}

// New creates an empty store whose creation time and ticket
// timestamps come from clk.
func New(clk clock.Clock) *Store {
	return &Store{
		clock:     clk,
		createdAt: clk.Now(),
	}
}

// Restore creates a store holding tickets, in the given order. The
// tickets are expected to be validated already (lib/snapshot does
// this on load); they are cloned, not retained.
func Restore(clk clock.Clock, tickets []schema.Ticket) *Store {
	store := New(clk)
	store.tickets = make([]schema.Ticket, 0, len(tickets))
	for i := range tickets {
		store.tickets = append(store.tickets, tickets[i].Clone())
	}
	return store
}

// Add validates ticket, assigns it a fresh id and creation time, and
// appends it. Returns the stored ticket.
func (s *Store) Add(ticket schema.Ticket) (schema.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(ticket, len(s.tickets))
}

// InsertAt validates ticket, assigns it a fresh id and creation time,
// and inserts it at position, shifting later tickets. position equal
// to the current size appends.
func (s *Store) InsertAt(ticket schema.Ticket, position int) (schema.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position > len(s.tickets) {
		return schema.Ticket{}, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, position, len(s.tickets))
	}
	return s.insertLocked(ticket, position)
}

func (s *Store) insertLocked(ticket schema.Ticket, position int) (schema.Ticket, error) {
	if err := ticket.ValidateContent(); err != nil {
		return schema.Ticket{}, err
	}

	stored := ticket.Clone()
	stored.ID = s.nextIDLocked()
	stored.CreatedAt = s.clock.Now()
	if stored.Venue != nil {
		stored.Venue.ID = s.nextVenueIDLocked()
	}

	s.tickets = slices.Insert(s.tickets, position, stored)
	return stored.Clone(), nil
}

// Update replaces every field of the ticket with the given id except
// the id and creation time. A venue that replaces an existing venue
// keeps the existing venue's id; a venue added to a ticket that had
// none gets a fresh one.
func (s *Store) Update(id int64, ticket schema.Ticket) (schema.Ticket, error) {
	if err := ticket.ValidateContent(); err != nil {
		return schema.Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexLocked(id)
	if index < 0 {
		return schema.Ticket{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	existing := s.tickets[index]

	replacement := ticket.Clone()
	replacement.ID = existing.ID
	replacement.CreatedAt = existing.CreatedAt
	if replacement.Venue != nil {
		if existing.Venue != nil {
			replacement.Venue.ID = existing.Venue.ID
		} else {
			replacement.Venue.ID = s.nextVenueIDLocked()
		}
	}

	s.tickets[index] = replacement
	return replacement.Clone(), nil
}

// RemoveByID removes every ticket with the given id and returns how
// many were removed. Zero is not an error.
func (s *Store) RemoveByID(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.tickets)
	s.tickets = slices.DeleteFunc(s.tickets, func(ticket schema.Ticket) bool {
		return ticket.ID == id
	})
	return before - len(s.tickets)
}

// RemoveFirst removes and returns the ticket at position 0.
func (s *Store) RemoveFirst() (schema.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tickets) == 0 {
		return schema.Ticket{}, ErrEmpty
	}
	removed := s.tickets[0]
	s.tickets = slices.Delete(s.tickets, 0, 1)
	return removed, nil
}

// Clear removes every ticket and returns how many there were.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.tickets)
	s.tickets = nil
	return count
}

// Snapshot returns a copy of the tickets in stored order.
func (s *Store) Snapshot() []schema.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyLocked()
}

// SortedByID returns a copy of the tickets in ascending id order.
// Stored order is not changed.
func (s *Store) SortedByID() []schema.Ticket {
	s.mu.Lock()
	tickets := s.copyLocked()
	s.mu.Unlock()

	slices.SortFunc(tickets, func(a, b schema.Ticket) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tickets
}

// CountTypeGreaterThan counts tickets whose type is set and ranks
// above ticketType.
func (s *Store) CountTypeGreaterThan(ticketType schema.TicketType) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.tickets {
		if s.tickets[i].Type.IsSet() && s.tickets[i].Type > ticketType {
			count++
		}
	}
	return count
}

// VenuesByCapacity returns the venues of tickets that have one, in
// ascending capacity order. Ties keep stored order.
func (s *Store) VenuesByCapacity() []schema.Venue {
	s.mu.Lock()
	venues := make([]schema.Venue, 0, len(s.tickets))
	for i := range s.tickets {
		if s.tickets[i].Venue != nil {
			venues = append(venues, *s.tickets[i].Venue)
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(venues, func(a, b schema.Venue) int {
		return cmp.Compare(a.Capacity, b.Capacity)
	})
	return venues
}

// PricesDescending returns every ticket's price, highest first.
func (s *Store) PricesDescending() []int64 {
	s.mu.Lock()
	prices := make([]int64, len(s.tickets))
	for i := range s.tickets {
		prices[i] = s.tickets[i].Price
	}
	s.mu.Unlock()

	slices.SortStableFunc(prices, func(a, b int64) int {
		return cmp.Compare(b, a)
	})
	return prices
}

// Len returns the number of tickets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tickets)
}

// Info reports the ticket count, collection type, and the time the
// store was created.
func (s *Store) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		Count:     len(s.tickets),
		Type:      CollectionType,
		CreatedAt: s.createdAt,
	}
}

func (s *Store) copyLocked() []schema.Ticket {
	tickets := make([]schema.Ticket, len(s.tickets))
	for i := range s.tickets {
		tickets[i] = s.tickets[i].Clone()
	}
	return tickets
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.tickets, func(ticket schema.Ticket) bool {
		return ticket.ID == id
	})
}

func (s *Store) nextIDLocked() int64 {
	var maximum int64
	for i := range s.tickets {
		maximum = max(maximum, s.tickets[i].ID)
	}
	return maximum + 1
}

func (s *Store) nextVenueIDLocked() int64 {
	var maximum int64
	for i := range s.tickets {
		if s.tickets[i].Venue != nil {
			maximum = max(maximum, s.tickets[i].Venue.ID)
		}
	}
	return maximum + 1
}
