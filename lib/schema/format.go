// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// String renders a venue on one line.
func (v Venue) String() string {
	return fmt.Sprintf("#%d %q (capacity %d, %s)", v.ID, v.Name, v.Capacity, v.Type)
}

// String renders coordinates as "(x, y)".
func (c Coordinates) String() string {
	return "(" + formatFloat(c.X) + ", " + formatFloat(c.Y) + ")"
}

// Format renders a ticket as a multi-line block, the form used by
// show and sort.
func (t *Ticket) Format() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Ticket #%d %q\n", t.ID, t.Name)
	fmt.Fprintf(&builder, "  coordinates: %s\n", t.Coordinates)
	fmt.Fprintf(&builder, "  created:     %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&builder, "  price:       %d\n", t.Price)
	refundable := "unknown"
	if t.Refundable != nil {
		refundable = strconv.FormatBool(*t.Refundable)
	}
	fmt.Fprintf(&builder, "  refundable:  %s\n", refundable)
	ticketType := "-"
	if t.Type.IsSet() {
		ticketType = t.Type.String()
	}
	fmt.Fprintf(&builder, "  type:        %s\n", ticketType)
	if t.Venue != nil {
		fmt.Fprintf(&builder, "  venue:       %s\n", t.Venue)
	} else {
		builder.WriteString("  venue:       -\n")
	}
	return builder.String()
}

// String renders a ticket on one line.
func (t Ticket) String() string {
	return fmt.Sprintf("Ticket #%d %q price=%d", t.ID, t.Name, t.Price)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
