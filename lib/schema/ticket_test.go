// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validTicket() Ticket {
	return Ticket{
		ID:          1,
		Name:        "Spring concert",
		Coordinates: Coordinates{X: 1.5, Y: -10},
		CreatedAt:   time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		Price:       1200,
		Refundable:  Bool(true),
		Type:        TicketTypeVIP,
		Venue: &Venue{
			ID:       1,
			Name:     "Main hall",
			Capacity: 300,
			Type:     VenueTypeTheatre,
		},
	}
}

func TestTicketValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Ticket)
		wantField string
	}{
		{"valid", func(*Ticket) {}, ""},
		{"no venue", func(ticket *Ticket) { ticket.Venue = nil }, ""},
		{"unset type", func(ticket *Ticket) { ticket.Type = TicketTypeUnset }, ""},
		{"zero id", func(ticket *Ticket) { ticket.ID = 0 }, "id"},
		{"missing creation date", func(ticket *Ticket) { ticket.CreatedAt = time.Time{} }, "creation_date"},
		{"blank name", func(ticket *Ticket) { ticket.Name = "   " }, "name"},
		{"numeric name", func(ticket *Ticket) { ticket.Name = "12345" }, "name"},
		{"long name", func(ticket *Ticket) { ticket.Name = strings.Repeat("a", MaxNameLength+1) }, "name"},
		{"name at limit", func(ticket *Ticket) { ticket.Name = strings.Repeat("ж", MaxNameLength) }, ""},
		{"y at bound", func(ticket *Ticket) { ticket.Coordinates.Y = MinCoordinateY }, "coordinates.y"},
		{"y above bound", func(ticket *Ticket) { ticket.Coordinates.Y = MinCoordinateY + 0.5 }, ""},
		{"zero price", func(ticket *Ticket) { ticket.Price = 0 }, "price"},
		{"missing refundable", func(ticket *Ticket) { ticket.Refundable = nil }, "refundable"},
		{"bad ticket type", func(ticket *Ticket) { ticket.Type = 9 }, "type"},
		{"unknown ticket type", func(ticket *Ticket) { ticket.Type = TicketTypeUnknown }, "type"},
		{"venue id", func(ticket *Ticket) { ticket.Venue.ID = 0 }, "venue.id"},
		{"venue name", func(ticket *Ticket) { ticket.Venue.Name = "" }, "venue.name"},
		{"venue capacity", func(ticket *Ticket) { ticket.Venue.Capacity = -1 }, "venue.capacity"},
		{"venue type", func(ticket *Ticket) { ticket.Venue.Type = VenueTypeUnset }, "venue.type"},
		{"unknown venue type", func(ticket *Ticket) { ticket.Venue.Type = VenueTypeUnknown }, "venue.type"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ticket := validTicket()
			test.modify(&ticket)
			err := ticket.Validate()
			if test.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var validationError *ValidationError
			if !errors.As(err, &validationError) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if validationError.Field != test.wantField {
				t.Errorf("Field = %q, want %q", validationError.Field, test.wantField)
			}
		})
	}
}

func TestValidateContentIgnoresAssignedFields(t *testing.T) {
	ticket := validTicket()
	ticket.ID = 0
	ticket.CreatedAt = time.Time{}
	ticket.Venue.ID = 0
	if err := ticket.ValidateContent(); err != nil {
		t.Fatalf("ValidateContent() = %v, want nil", err)
	}
	if err := ticket.Validate(); err == nil {
		t.Fatal("Validate() accepted a ticket without assigned fields")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := validTicket()
	clone := original.Clone()
	*clone.Refundable = false
	clone.Venue.Name = "Side stage"

	if !*original.Refundable {
		t.Error("mutating clone.Refundable changed the original")
	}
	if original.Venue.Name != "Main hall" {
		t.Error("mutating clone.Venue changed the original")
	}
}

func TestFormat(t *testing.T) {
	ticket := validTicket()
	formatted := ticket.Format()
	for _, want := range []string{
		`Ticket #1 "Spring concert"`,
		"coordinates: (1.5, -10)",
		"created:     2026-03-01T18:00:00Z",
		"price:       1200",
		"refundable:  true",
		"type:        VIP",
		`venue:       #1 "Main hall" (capacity 300, THEATRE)`,
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}

	ticket.Venue = nil
	ticket.Type = TicketTypeUnset
	formatted = ticket.Format()
	if !strings.Contains(formatted, "type:        -") || !strings.Contains(formatted, "venue:       -") {
		t.Errorf("Format() without type or venue:\n%s", formatted)
	}
}
