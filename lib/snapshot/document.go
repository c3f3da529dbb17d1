// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// Leaves are pointers so that a missing element is distinguishable
// from an empty one, and so that one bad value fails its record
// instead of the whole document.
type xmlDocument struct {
	XMLName xml.Name    `xml:"tickets"`
	Tickets []xmlTicket `xml:"ticket"`
}

type xmlTicket struct {
	ID           *string         `xml:"id"`
	Name         *string         `xml:"name"`
	Coordinates  *xmlCoordinates `xml:"coordinates"`
	CreationDate *string         `xml:"creationDate"`
	Price        *string         `xml:"price"`
	Refundable   *string         `xml:"refundable"`
	Type         *string         `xml:"type"`
	Venue        *xmlVenue       `xml:"venue"`
}

type xmlCoordinates struct {
	X *string `xml:"x"`
	Y *string `xml:"y"`
}

type xmlVenue struct {
	ID       *string `xml:"id"`
	Name     *string `xml:"name"`
	Capacity *string `xml:"capacity"`
	Type     *string `xml:"type"`
}

// Diagnostic describes one rejected record, or a condition of the
// load as a whole when Record is zero.
type Diagnostic struct {
	// Record is the 1-based position of the ticket element.
	Record int

	// TicketID is the record's id when it parsed, else zero.
	TicketID int64

	Message string
}

func (d Diagnostic) String() string {
	switch {
	case d.Record == 0:
		return d.Message
	case d.TicketID != 0:
		return fmt.Sprintf("ticket record %d (id %d): %s", d.Record, d.TicketID, d.Message)
	default:
		return fmt.Sprintf("ticket record %d: %s", d.Record, d.Message)
	}
}

// Decode parses a collection document. Records that fail conversion
// or validation are skipped and reported as diagnostics; the returned
// tickets are in document order and all pass [schema.Ticket.Validate].
func Decode(r io.Reader) ([]schema.Ticket, []Diagnostic, error) {
	var document xmlDocument
	if err := xml.NewDecoder(r).Decode(&document); err != nil {
		return nil, nil, fmt.Errorf("parsing collection document: %w", err)
	}

	var (
		tickets     = make([]schema.Ticket, 0, len(document.Tickets))
		diagnostics []Diagnostic
		ticketIDs   = make(map[int64]int)
		venues      = make(map[int64]schema.Venue)
	)
	for i := range document.Tickets {
		record := i + 1
		ticket, err := document.Tickets[i].toTicket()
		if err == nil {
			err = ticket.Validate()
		}
		if err == nil {
			if first, duplicate := ticketIDs[ticket.ID]; duplicate {
				err = fmt.Errorf("duplicate id, already used by record %d", first)
			}
		}
		if err == nil && ticket.Venue != nil {
			if existing, seen := venues[ticket.Venue.ID]; seen && existing != *ticket.Venue {
				err = fmt.Errorf("venue id %d already names a different venue (%s)", ticket.Venue.ID, existing)
			}
		}
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{Record: record, TicketID: ticket.ID, Message: err.Error()})
			continue
		}

		ticketIDs[ticket.ID] = record
		if ticket.Venue != nil {
			venues[ticket.Venue.ID] = *ticket.Venue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, diagnostics, nil
}

// Encode writes tickets as an indented collection document.
func Encode(w io.Writer, tickets []schema.Ticket) error {
	document := xmlDocument{Tickets: make([]xmlTicket, len(tickets))}
	for i := range tickets {
		document.Tickets[i] = fromTicket(&tickets[i])
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing collection document: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "    ")
	if err := encoder.Encode(document); err != nil {
		return fmt.Errorf("encoding collection document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoding collection document: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// toTicket converts a record. On failure the returned ticket still
// carries the id if that much parsed, for the diagnostic.
func (x *xmlTicket) toTicket() (schema.Ticket, error) {
	var ticket schema.Ticket
	var err error

	if ticket.ID, err = requiredInt(x.ID, "id"); err != nil {
		return ticket, err
	}
	if x.Name == nil {
		return ticket, missing("name")
	}
	ticket.Name = *x.Name

	if x.Coordinates == nil {
		return ticket, missing("coordinates")
	}
	if ticket.Coordinates.X, err = requiredFloat(x.Coordinates.X, "coordinates.x"); err != nil {
		return ticket, err
	}
	if ticket.Coordinates.Y, err = requiredFloat(x.Coordinates.Y, "coordinates.y"); err != nil {
		return ticket, err
	}

	if x.CreationDate == nil {
		return ticket, missing("creationDate")
	}
	if ticket.CreatedAt, err = parseCreationDate(*x.CreationDate); err != nil {
		return ticket, err
	}

	if ticket.Price, err = requiredInt(x.Price, "price"); err != nil {
		return ticket, err
	}

	if x.Refundable == nil {
		return ticket, missing("refundable")
	}
	refundable, err := strconv.ParseBool(strings.TrimSpace(*x.Refundable))
	if err != nil {
		return ticket, fmt.Errorf("refundable: %q is not a boolean", *x.Refundable)
	}
	ticket.Refundable = &refundable

	if x.Type != nil {
		if ticket.Type, err = schema.ParseTicketType(*x.Type); err != nil {
			return ticket, fmt.Errorf("type: %w", err)
		}
	}

	if x.Venue != nil {
		venue, err := x.Venue.toVenue()
		if err != nil {
			return ticket, err
		}
		ticket.Venue = &venue
	}
	return ticket, nil
}

func (x *xmlVenue) toVenue() (schema.Venue, error) {
	var venue schema.Venue
	var err error
	if venue.ID, err = requiredInt(x.ID, "venue.id"); err != nil {
		return venue, err
	}
	if x.Name == nil {
		return venue, missing("venue.name")
	}
	venue.Name = *x.Name
	if venue.Capacity, err = requiredInt(x.Capacity, "venue.capacity"); err != nil {
		return venue, err
	}
	if x.Type == nil {
		return venue, missing("venue.type")
	}
	if venue.Type, err = schema.ParseVenueType(*x.Type); err != nil {
		return venue, fmt.Errorf("venue.type: %w", err)
	}
	return venue, nil
}

func fromTicket(ticket *schema.Ticket) xmlTicket {
	record := xmlTicket{
		ID:   text(strconv.FormatInt(ticket.ID, 10)),
		Name: text(ticket.Name),
		Coordinates: &xmlCoordinates{
			X: text(strconv.FormatFloat(ticket.Coordinates.X, 'g', -1, 64)),
			Y: text(strconv.FormatFloat(ticket.Coordinates.Y, 'g', -1, 64)),
		},
		CreationDate: text(ticket.CreatedAt.Format(time.RFC3339Nano)),
		Price:        text(strconv.FormatInt(ticket.Price, 10)),
	}
	if ticket.Refundable != nil {
		record.Refundable = text(strconv.FormatBool(*ticket.Refundable))
	}
	if ticket.Type.IsSet() {
		record.Type = text(ticket.Type.String())
	}
	if ticket.Venue != nil {
		record.Venue = &xmlVenue{
			ID:       text(strconv.FormatInt(ticket.Venue.ID, 10)),
			Name:     text(ticket.Venue.Name),
			Capacity: text(strconv.FormatInt(ticket.Venue.Capacity, 10)),
			Type:     text(ticket.Venue.Type.String()),
		}
	}
	return record
}

// creationDateLayouts are tried in order. The minute-precision
// layouts cover zoned timestamps written without seconds.
var creationDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// parseCreationDate accepts RFC 3339 timestamps, optionally followed
// by a bracketed zone name ("2026-03-01T18:00+03:00[Europe/Moscow]"),
// which is dropped in favor of the numeric offset.
func parseCreationDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if open := strings.IndexByte(trimmed, '['); open >= 0 && strings.HasSuffix(trimmed, "]") {
		trimmed = trimmed[:open]
	}
	for _, layout := range creationDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("creationDate: %q is not a timestamp", value)
}

func requiredInt(value *string, field string) (int64, error) {
	if value == nil {
		return 0, missing(field)
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(*value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", field, *value)
	}
	return parsed, nil
}

func requiredFloat(value *string, field string) (float64, error) {
	if value == nil {
		return 0, missing(field)
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(*value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, *value)
	}
	return parsed, nil
}

func missing(field string) error {
	return errors.New(field + ": element is missing")
}

func text(value string) *string {
	return &value
}
