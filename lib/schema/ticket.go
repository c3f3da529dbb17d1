// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxNameLength is the maximum length of a ticket name, in runes.
	MaxNameLength = 100

	// MinCoordinateY is the exclusive lower bound for Coordinates.Y.
	MinCoordinateY = -415
)

// Coordinates is a ticket's position. Both fields are required; Y
// must be greater than [MinCoordinateY].
type Coordinates struct {
	X float64 `cbor:"x"`
	Y float64 `cbor:"y"`
}

// Validate checks the Y bound. X is unconstrained.
func (c Coordinates) Validate() error {
	return ValidateY(c.Y)
}

// Venue is a place a ticket is valid for. ID is assigned by the
// store; a client-supplied ID is ignored.
type Venue struct {
	ID       int64     `cbor:"id,omitempty"`
	Name     string    `cbor:"name"`
	Capacity int64     `cbor:"capacity"`
	Type     VenueType `cbor:"type"`
}

// ValidateContent checks the client-supplied venue fields.
func (v Venue) ValidateContent() error {
	if err := ValidateVenueName(v.Name); err != nil {
		return err
	}
	if err := ValidateCapacity(v.Capacity); err != nil {
		return err
	}
	if v.Type != VenueTypeUnset && !v.Type.IsSet() {
		return &ValidationError{Field: "venue.type", Reason: "must be one of " + venueTypeList}
	}
	if !v.Type.IsSet() {
		return &ValidationError{Field: "venue.type", Reason: "is required"}
	}
	return nil
}

// Validate checks every venue field including the assigned ID.
func (v Venue) Validate() error {
	if v.ID <= 0 {
		return &ValidationError{Field: "venue.id", Reason: fmt.Sprintf("must be > 0, got %d", v.ID)}
	}
	return v.ValidateContent()
}

// Ticket is one record in the collection.
//
// Refundable is a pointer so that a payload omitting it is
// distinguishable from one that sets it to false; it is required
// either way.
type Ticket struct {
	ID          int64       `cbor:"id,omitempty"`
	Name        string      `cbor:"name"`
	Coordinates Coordinates `cbor:"coordinates"`
	CreatedAt   time.Time   `cbor:"created_at,omitempty"`
	Price       int64       `cbor:"price"`
	Refundable  *bool       `cbor:"refundable"`
	Type        TicketType  `cbor:"type,omitempty"`
	Venue       *Venue      `cbor:"venue,omitempty"`
}

// ValidateContent checks the fields a client supplies. ID and
// CreatedAt are ignored, as is the venue ID.
func (t *Ticket) ValidateContent() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if err := t.Coordinates.Validate(); err != nil {
		return err
	}
	if err := ValidatePrice(t.Price); err != nil {
		return err
	}
	if t.Refundable == nil {
		return &ValidationError{Field: "refundable", Reason: "is required"}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be one of " + ticketTypeList}
	}
	if t.Venue != nil {
		if err := t.Venue.ValidateContent(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every field of a stored ticket.
func (t *Ticket) Validate() error {
	if t.ID <= 0 {
		return &ValidationError{Field: "id", Reason: fmt.Sprintf("must be > 0, got %d", t.ID)}
	}
	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "creation_date", Reason: "is required"}
	}
	if t.Venue != nil && t.Venue.ID <= 0 {
		return &ValidationError{Field: "venue.id", Reason: fmt.Sprintf("must be > 0, got %d", t.Venue.ID)}
	}
	return t.ValidateContent()
}

// Clone returns a deep copy. The store hands out clones so that no
// caller holds a pointer into stored state.
func (t Ticket) Clone() Ticket {
	if t.Refundable != nil {
		refundable := *t.Refundable
		t.Refundable = &refundable
	}
	if t.Venue != nil {
		venue := *t.Venue
		t.Venue = &venue
	}
	return t
}

// Bool returns a pointer to b, for building tickets in literals.
func Bool(b bool) *bool {
	return &b
}

// ValidateName checks a ticket name: non-blank, at most
// [MaxNameLength] runes, and not made up only of digits.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	}
	if strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return &ValidationError{Field: "name", Reason: "must not be purely numeric"}
	}
	return nil
}

// ValidateY checks the coordinate Y bound.
func ValidateY(y float64) error {
	if !(y > MinCoordinateY) {
		return &ValidationError{Field: "coordinates.y", Reason: fmt.Sprintf("must be > %d, got %v", MinCoordinateY, y)}
	}
	return nil
}

// ValidatePrice checks that a price is positive.
func ValidatePrice(price int64) error {
	if price <= 0 {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("must be > 0, got %d", price)}
	}
	return nil
}

// ValidateVenueName checks that a venue name is non-blank.
func ValidateVenueName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "venue.name", Reason: "must not be empty"}
	}
	return nil
}

// ValidateCapacity checks that a venue capacity is positive.
func ValidateCapacity(capacity int64) error {
	if capacity <= 0 {
		return &ValidationError{Field: "venue.capacity", Reason: fmt.Sprintf("must be > 0, got %d", capacity)}
	}
	return nil
}
