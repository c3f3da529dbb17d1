// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strings"
)

// TicketType classifies a ticket. The numeric value is the
// declaration rank used by ordering comparisons; zero means unset.
type TicketType int

// TicketTypeUnknown is what [TicketType.UnmarshalText] yields for a
// name outside the enum. It fails [TicketType.Valid].
const TicketTypeUnknown TicketType = -1

const (
	TicketTypeUnset TicketType = iota
	TicketTypeVIP
	TicketTypeUsual
	TicketTypeBudgetary
	TicketTypeCheap
)

var ticketTypeNames = []string{"", "VIP", "USUAL", "BUDGETARY", "CHEAP"}

var ticketTypeList = strings.Join(ticketTypeNames[1:], ", ")

// TicketTypes lists the settable ticket types in rank order.
func TicketTypes() []TicketType {
	return []TicketType{TicketTypeVIP, TicketTypeUsual, TicketTypeBudgetary, TicketTypeCheap}
}

// String returns the wire name ("VIP", "USUAL", ...), or "" for unset.
func (t TicketType) String() string {
	if t < 0 || int(t) >= len(ticketTypeNames) {
		return fmt.Sprintf("TicketType(%d)", int(t))
	}
	return ticketTypeNames[t]
}

// IsSet reports whether t names one of the four ticket types.
func (t TicketType) IsSet() bool {
	return t > TicketTypeUnset && int(t) < len(ticketTypeNames)
}

// Valid reports whether t is unset or one of the four ticket types.
func (t TicketType) Valid() bool {
	return t == TicketTypeUnset || t.IsSet()
}

// MarshalText encodes the type as its name.
func (t TicketType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ticket type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts a type name in any case. Empty text decodes
// to unset and an unrecognized name to [TicketTypeUnknown], so a bad
// value surfaces from validation rather than from the decoder.
func (t *TicketType) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketType(string(text))
	if err != nil {
		parsed = TicketTypeUnknown
	}
	*t = parsed
	return nil
}

// ParseTicketType parses a ticket type name, ignoring case and
// surrounding whitespace. An empty string parses as unset.
func ParseTicketType(value string) (TicketType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return TicketTypeUnset, nil
	}
	for i := 1; i < len(ticketTypeNames); i++ {
		if strings.EqualFold(value, ticketTypeNames[i]) {
			return TicketType(i), nil
		}
	}
	return TicketTypeUnset, fmt.Errorf("unknown ticket type %q (expected one of %s)",
		value, ticketTypeList)
}

// VenueType classifies a venue. Zero means unset, which fails
// validation.
type VenueType int

// VenueTypeUnknown is what [VenueType.UnmarshalText] yields for a
// name outside the enum.
const VenueTypeUnknown VenueType = -1

const (
	VenueTypeUnset VenueType = iota
	VenueTypeBar
	VenueTypeLoft
	VenueTypeTheatre
	VenueTypeMall
	VenueTypeStadium
)

var venueTypeNames = []string{"", "BAR", "LOFT", "THEATRE", "MALL", "STADIUM"}

var venueTypeList = strings.Join(venueTypeNames[1:], ", ")

// VenueTypes lists the venue types in rank order.
func VenueTypes() []VenueType {
	return []VenueType{VenueTypeBar, VenueTypeLoft, VenueTypeTheatre, VenueTypeMall, VenueTypeStadium}
}

func (t VenueType) String() string {
	if t < 0 || int(t) >= len(venueTypeNames) {
		return fmt.Sprintf("VenueType(%d)", int(t))
	}
	return venueTypeNames[t]
}

// IsSet reports whether t names one of the five venue types.
func (t VenueType) IsSet() bool {
	return t > VenueTypeUnset && int(t) < len(venueTypeNames)
}

func (t VenueType) MarshalText() ([]byte, error) {
	if t != VenueTypeUnset && !t.IsSet() {
		return nil, fmt.Errorf("invalid venue type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *VenueType) UnmarshalText(text []byte) error {
	parsed, err := ParseVenueType(string(text))
	if err != nil {
		parsed = VenueTypeUnknown
	}
	*t = parsed
	return nil
}

// ParseVenueType parses a venue type name, ignoring case and
// surrounding whitespace. An empty string parses as unset; callers
// that need a set type check [VenueType.IsSet].
func ParseVenueType(value string) (VenueType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return VenueTypeUnset, nil
	}
	for i := 1; i < len(venueTypeNames); i++ {
		if strings.EqualFold(value, venueTypeNames[i]) {
			return VenueType(i), nil
		}
	}
	return VenueTypeUnset, fmt.Errorf("unknown venue type %q (expected one of %s)",
		value, venueTypeList)
}
