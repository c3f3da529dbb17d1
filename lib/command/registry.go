// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
)

// Registry maps command names to commands. Register every command
// before the first dispatch; the registry is read-only afterwards and
// safe for concurrent use from that point on.
type Registry struct {
	commands map[string]*Command
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		logger:   logger,
	}
}

// Register adds a command. Panics on a duplicate name or a command
// without Run, both of which are programming errors.
func (r *Registry) Register(cmd *Command) {
	if cmd.Run == nil {
		panic(fmt.Sprintf("command %q has no Run function", cmd.Name))
	}
	if _, exists := r.commands[cmd.Name]; exists {
		panic(fmt.Sprintf("command %q registered twice", cmd.Name))
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the command with the given name as seen by origin.
func (r *Registry) Lookup(name string, origin Origin) (*Command, error) {
	cmd, exists := r.commands[name]
	if !exists || !cmd.visibleTo(origin) {
		var names []string
		for _, visible := range r.Commands(origin) {
			names = append(names, visible.Name)
		}
		return nil, &UnknownCommandError{Name: name, Suggestion: suggestCommand(name, names)}
	}
	return cmd, nil
}

// Commands returns the commands visible to origin, sorted by name.
func (r *Registry) Commands(origin Origin) []*Command {
	var commands []*Command
	for _, cmd := range r.commands {
		if cmd.visibleTo(origin) {
			commands = append(commands, cmd)
		}
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name < commands[j].Name
	})
	return commands
}

// Resolve looks up call.Name and checks the argument count.
func (r *Registry) Resolve(call Call) (*Command, error) {
	cmd, err := r.Lookup(call.Name, call.Origin)
	if err != nil {
		return nil, err
	}
	switch {
	case len(call.Args) < len(cmd.Args):
		missing := cmd.Args[len(call.Args):]
		return nil, &UsageError{
			Command: cmd.Name,
			Usage:   cmd.Usage(),
			Reason:  "missing argument " + strings.Join(missing, ", "),
		}
	case len(call.Args) > len(cmd.Args):
		return nil, &UsageError{
			Command: cmd.Name,
			Usage:   cmd.Usage(),
			Reason:  fmt.Sprintf("expected %d argument(s), got %d", len(cmd.Args), len(call.Args)),
		}
	}
	return cmd, nil
}

// Execute runs a resolved command. The returned Result carries either
// the command's output or the error text; OK reports which.
func (r *Registry) Execute(ctx context.Context, cmd *Command, call Call) Result {
	if cmd.Kind == KindPayload && call.Payload == nil {
		return failure(fmt.Errorf("%s: %w", cmd.Name, ErrPayloadRequired))
	}
	if cmd.Kind == KindPlain && call.Payload != nil {
		return failure(&UsageError{Command: cmd.Name, Usage: cmd.Usage(), Reason: "does not take a ticket"})
	}

	message, err := cmd.Run(ctx, call)
	if err != nil {
		r.logger.Debug("command failed",
			"command", cmd.Name,
			"origin", call.Origin.String(),
			"error", err,
		)
		var usageError *UsageError
		if errors.As(err, &usageError) {
			return failure(err)
		}
		return failure(fmt.Errorf("%s: %w", cmd.Name, err))
	}
	r.logger.Debug("command completed",
		"command", cmd.Name,
		"origin", call.Origin.String(),
	)
	return Result{Message: message, OK: true}
}

// Dispatch resolves and executes call.
func (r *Registry) Dispatch(ctx context.Context, call Call) Result {
	cmd, err := r.Resolve(call)
	if err != nil {
		return failure(err)
	}
	return r.Execute(ctx, cmd, call)
}

// HelpText renders the command list visible to origin.
func (r *Registry) HelpText(origin Origin) string {
	var builder strings.Builder
	builder.WriteString("Commands:\n")
	tw := tabwriter.NewWriter(&builder, 2, 0, 3, ' ', 0)
	for _, cmd := range r.Commands(origin) {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), cmd.Summary)
	}
	tw.Flush()
	return strings.TrimSuffix(builder.String(), "\n")
}

func failure(err error) Result {
	return Result{Message: err.Error(), OK: false}
}

var _ Dispatcher = (*Registry)(nil)
