// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// ErrInputClosed is returned when input ends before the ticket is
// complete.
var ErrInputClosed = errors.New("input closed before the ticket was complete")

// Prompter asks questions on out and reads answers line by line from
// in. A Prompter is not safe for concurrent use.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// New returns a Prompter. Pass the same reader the caller uses for
// command lines only if no other buffered reader wraps it.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// NewScanner returns a Prompter sharing an existing scanner, so that
// a command loop and the prompter consume one input stream.
func NewScanner(scanner *bufio.Scanner, out io.Writer) *Prompter {
	return &Prompter{scanner: scanner, out: out}
}

// Ticket asks for every client-supplied ticket field. Type and venue
// are optional: a blank type leaves it unset and declining the venue
// leaves it nil.
func (p *Prompter) Ticket(ctx context.Context) (*schema.Ticket, error) {
	var ticket schema.Ticket
	var err error

	if ticket.Name, err = p.name(ctx, "ticket name", schema.ValidateName); err != nil {
		return nil, err
	}
	if ticket.Coordinates.X, err = p.float(ctx, "coordinate x", nil); err != nil {
		return nil, err
	}
	if ticket.Coordinates.Y, err = p.float(ctx, fmt.Sprintf("coordinate y (> %d)", schema.MinCoordinateY), schema.ValidateY); err != nil {
		return nil, err
	}
	if ticket.Price, err = p.integer(ctx, "price (> 0)", schema.ValidatePrice); err != nil {
		return nil, err
	}
	refundable, err := p.yesNo(ctx, "refundable")
	if err != nil {
		return nil, err
	}
	ticket.Refundable = schema.Bool(refundable)
	if ticket.Type, err = p.ticketType(ctx); err != nil {
		return nil, err
	}

	withVenue, err := p.yesNo(ctx, "add a venue")
	if err != nil {
		return nil, err
	}
	if withVenue {
		venue, err := p.venue(ctx)
		if err != nil {
			return nil, err
		}
		ticket.Venue = venue
	}
	return &ticket, nil
}

func (p *Prompter) venue(ctx context.Context) (*schema.Venue, error) {
	var venue schema.Venue
	var err error
	if venue.Name, err = p.name(ctx, "venue name", schema.ValidateVenueName); err != nil {
		return nil, err
	}
	if venue.Capacity, err = p.integer(ctx, "venue capacity (> 0)", schema.ValidateCapacity); err != nil {
		return nil, err
	}
	if venue.Type, err = p.venueType(ctx); err != nil {
		return nil, err
	}
	return &venue, nil
}

// ask prints label and returns the next trimmed line.
func (p *Prompter) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("reading %s: %w", label, err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *Prompter) retry(err error) {
	fmt.Fprintf(p.out, "  %v, try again\n", err)
}

func (p *Prompter) name(ctx context.Context, label string, validate func(string) error) (string, error) {
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return "", err
		}
		if err := validate(line); err != nil {
			p.retry(err)
			continue
		}
		return line, nil
	}
}

func (p *Prompter) float(ctx context.Context, label string, validate func(float64) error) (float64, error) {
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		if line == "" {
			p.retry(errors.New("a value is required"))
			continue
		}
		value, err := strconv.ParseFloat(line, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			p.retry(fmt.Errorf("%q is not a number", line))
			continue
		}
		if validate != nil {
			if err := validate(value); err != nil {
				p.retry(err)
				continue
			}
		}
		return value, nil
	}
}

func (p *Prompter) integer(ctx context.Context, label string, validate func(int64) error) (int64, error) {
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		value, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			p.retry(fmt.Errorf("%q is not a whole number", line))
			continue
		}
		if err := validate(value); err != nil {
			p.retry(err)
			continue
		}
		return value, nil
	}
}

func (p *Prompter) yesNo(ctx context.Context, label string) (bool, error) {
	for {
		line, err := p.ask(ctx, label+" (y/n)")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.retry(fmt.Errorf("answer y or n, not %q", line))
	}
}

func (p *Prompter) ticketType(ctx context.Context) (schema.TicketType, error) {
	label := fmt.Sprintf("ticket type (%s, blank for none)", typeNames(schema.TicketTypes()))
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return schema.TicketTypeUnset, err
		}
		value, err := schema.ParseTicketType(line)
		if err != nil {
			p.retry(err)
			continue
		}
		return value, nil
	}
}

func (p *Prompter) venueType(ctx context.Context) (schema.VenueType, error) {
	label := fmt.Sprintf("venue type (%s)", typeNames(schema.VenueTypes()))
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return schema.VenueTypeUnset, err
		}
		value, err := schema.ParseVenueType(line)
		if err == nil && !value.IsSet() {
			err = errors.New("a venue type is required")
		}
		if err != nil {
			p.retry(err)
			continue
		}
		return value, nil
	}
}

func typeNames[T fmt.Stringer](values []T) string {
	names := make([]string, len(values))
	for i, value := range values {
		names[i] = strings.ToLower(value.String())
	}
	return strings.Join(names, ", ")
}
