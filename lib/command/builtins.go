// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/boxoffice/lib/collection"
	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// Persister writes the collection to durable storage and returns a
// short description of what it did.
type Persister interface {
	Persist(ctx context.Context) (string, error)
}

// Env is what the built-in commands operate on.
type Env struct {
	Store *collection.Store

	// Persister backs save and shutdown. When nil, neither command is
	// registered.
	Persister Persister

	// Shutdown is called by the shutdown command after a successful
	// persist. It must not block.
	Shutdown func()
}

// RegisterBuiltins installs the ticket command set into registry.
// execute_script is not included; the script engine registers it.
func RegisterBuiltins(registry *Registry, env Env) {
	store := env.Store

	registry.Register(&Command{
		Name:    "help",
		Summary: "list available commands",
		Run: func(_ context.Context, call Call) (string, error) {
			return registry.HelpText(call.Origin), nil
		},
	})

	registry.Register(&Command{
		Name:    "info",
		Summary: "show collection type, creation time, and size",
		Run: func(context.Context, Call) (string, error) {
			info := store.Info()
			return fmt.Sprintf("Collection type: %s\nCreated: %s\nElements: %d",
				info.Type, info.CreatedAt.Format(time.RFC3339), info.Count), nil
		},
	})

	registry.Register(&Command{
		Name:    "show",
		Summary: "list every ticket in stored order",
		Run: func(context.Context, Call) (string, error) {
			return formatTickets(store.Snapshot()), nil
		},
	})

	registry.Register(&Command{
		Name:    "add",
		Summary: "add a new ticket",
		Kind:    KindPayload,
		Run: func(_ context.Context, call Call) (string, error) {
			stored, err := store.Add(*call.Payload)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("added ticket #%d", stored.ID), nil
		},
	})

	registry.Register(&Command{
		Name:    "update",
		Summary: "replace the ticket with the given id",
		Args:    []string{"id"},
		Kind:    KindPayload,
		Run: func(_ context.Context, call Call) (string, error) {
			id, err := parseID("update", "update <id> {ticket}", call.Args[0])
			if err != nil {
				return "", err
			}
			stored, err := store.Update(id, *call.Payload)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("updated ticket #%d", stored.ID), nil
		},
	})

	registry.Register(&Command{
		Name:    "insert_at",
		Summary: "insert a new ticket at the given position",
		Args:    []string{"index"},
		Kind:    KindPayload,
		Run: func(_ context.Context, call Call) (string, error) {
			position, err := strconv.Atoi(call.Args[0])
			if err != nil {
				return "", &UsageError{Command: "insert_at", Usage: "insert_at <index> {ticket}", Reason: fmt.Sprintf("index %q is not an integer", call.Args[0])}
			}
			stored, err := store.InsertAt(*call.Payload, position)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("inserted ticket #%d at position %d", stored.ID, position), nil
		},
	})

	registry.Register(&Command{
		Name:    "remove_by_id",
		Summary: "remove the ticket with the given id",
		Args:    []string{"id"},
		Run: func(_ context.Context, call Call) (string, error) {
			id, err := parseID("remove_by_id", "remove_by_id <id>", call.Args[0])
			if err != nil {
				return "", err
			}
			if removed := store.RemoveByID(id); removed > 0 {
				return fmt.Sprintf("removed ticket #%d", id), nil
			}
			return fmt.Sprintf("no ticket with id %d", id), nil
		},
	})

	registry.Register(&Command{
		Name:    "remove_first",
		Summary: "remove the first ticket in stored order",
		Run: func(context.Context, Call) (string, error) {
			removed, err := store.RemoveFirst()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("removed ticket #%d", removed.ID), nil
		},
	})

	registry.Register(&Command{
		Name:    "clear",
		Summary: "remove every ticket",
		Run: func(context.Context, Call) (string, error) {
			return fmt.Sprintf("cleared %d ticket(s)", store.Clear()), nil
		},
	})

	registry.Register(&Command{
		Name:    "sort",
		Summary: "list every ticket in ascending id order",
		Run: func(context.Context, Call) (string, error) {
			return formatTickets(store.SortedByID()), nil
		},
	})

	registry.Register(&Command{
		Name:    "count_greater_than_type",
		Summary: "count tickets whose type ranks above the given type",
		Args:    []string{"type"},
		Run: func(_ context.Context, call Call) (string, error) {
			ticketType, err := schema.ParseTicketType(call.Args[0])
			if err == nil && !ticketType.IsSet() {
				err = errors.New("type must not be empty")
			}
			if err != nil {
				return "", &UsageError{Command: "count_greater_than_type", Usage: "count_greater_than_type <type>", Reason: err.Error()}
			}
			return strconv.Itoa(store.CountTypeGreaterThan(ticketType)), nil
		},
	})

	registry.Register(&Command{
		Name:    "print_field_ascending_venue",
		Summary: "list venues by ascending capacity",
		Run: func(context.Context, Call) (string, error) {
			venues := store.VenuesByCapacity()
			if len(venues) == 0 {
				return "no tickets have a venue", nil
			}
			lines := make([]string, len(venues))
			for i, venue := range venues {
				lines[i] = venue.String()
			}
			return strings.Join(lines, "\n"), nil
		},
	})

	registry.Register(&Command{
		Name:    "print_field_descending_price",
		Summary: "list ticket prices from highest to lowest",
		Run: func(context.Context, Call) (string, error) {
			prices := store.PricesDescending()
			if len(prices) == 0 {
				return "collection is empty", nil
			}
			lines := make([]string, len(prices))
			for i, price := range prices {
				lines[i] = strconv.FormatInt(price, 10)
			}
			return strings.Join(lines, "\n"), nil
		},
	})

	if env.Persister == nil {
		return
	}

	registry.Register(&Command{
		Name:        "save",
		Summary:     "write the collection to disk",
		ConsoleOnly: true,
		Run: func(ctx context.Context, _ Call) (string, error) {
			return env.Persister.Persist(ctx)
		},
	})

	registry.Register(&Command{
		Name:        "shutdown",
		Summary:     "write the collection to disk and stop the server",
		ConsoleOnly: true,
		Run: func(ctx context.Context, _ Call) (string, error) {
			message, err := env.Persister.Persist(ctx)
			if err != nil {
				return "", fmt.Errorf("not shutting down: %w", err)
			}
			if env.Shutdown != nil {
				env.Shutdown()
			}
			return message + "\nshutting down", nil
		},
	})
}

func parseID(command, usage, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, &UsageError{
			Command: command,
			Usage:   usage,
			Reason:  fmt.Sprintf("id %q is not a positive integer", value),
		}
	}
	return id, nil
}

func formatTickets(tickets []schema.Ticket) string {
	if len(tickets) == 0 {
		return "collection is empty"
	}
	blocks := make([]string, len(tickets))
	for i := range tickets {
		blocks[i] = strings.TrimSuffix(tickets[i].Format(), "\n")
	}
	return strings.Join(blocks, "\n")
}
