// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// countingRegistry registers a plain "echo <word>" command and a
// payload "take" command, and counts how often each body runs.
func countingRegistry(t *testing.T) (*Registry, *int) {
	t.Helper()
	runs := 0
	registry := NewRegistry(discardLogger())
	registry.Register(&Command{
		Name: "echo",
		Args: []string{"word"},
		Run: func(_ context.Context, call Call) (string, error) {
			runs++
			return call.Args[0], nil
		},
	})
	registry.Register(&Command{
		Name: "take",
		Kind: KindPayload,
		Run: func(_ context.Context, call Call) (string, error) {
			runs++
			return "took " + call.Payload.Name, nil
		},
	})
	registry.Register(&Command{
		Name:        "secret",
		ConsoleOnly: true,
		Run: func(context.Context, Call) (string, error) {
			runs++
			return "console only", nil
		},
	})
	return registry, &runs
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name        string
		call        Call
		wantOK      bool
		wantMessage string
		wantRuns    int
	}{
		{
			name:        "plain with argument",
			call:        Call{Name: "echo", Args: []string{"hello"}},
			wantOK:      true,
			wantMessage: "hello",
			wantRuns:    1,
		},
		{
			name:        "missing argument",
			call:        Call{Name: "echo"},
			wantMessage: "missing argument word",
		},
		{
			name:        "extra argument",
			call:        Call{Name: "echo", Args: []string{"a", "b"}},
			wantMessage: "expected 1 argument(s), got 2",
		},
		{
			name:        "unknown with suggestion",
			call:        Call{Name: "ecoh"},
			wantMessage: `did you mean "echo"?`,
		},
		{
			name:        "payload command without payload",
			call:        Call{Name: "take"},
			wantMessage: ErrPayloadRequired.Error(),
		},
		{
			name:        "payload command with payload",
			call:        Call{Name: "take", Payload: &schema.Ticket{Name: "gig"}},
			wantOK:      true,
			wantMessage: "took gig",
			wantRuns:    1,
		},
		{
			name:        "console command from client",
			call:        Call{Name: "secret", Origin: OriginClient},
			wantMessage: `unknown command "secret"`,
		},
		{
			name:        "console command from console",
			call:        Call{Name: "secret", Origin: OriginConsole},
			wantOK:      true,
			wantMessage: "console only",
			wantRuns:    1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			registry, runs := countingRegistry(t)
			result := registry.Dispatch(t.Context(), test.call)
			if result.OK != test.wantOK {
				t.Errorf("OK = %v, want %v (message %q)", result.OK, test.wantOK, result.Message)
			}
			if !strings.Contains(result.Message, test.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", result.Message, test.wantMessage)
			}
			if *runs != test.wantRuns {
				t.Errorf("command body ran %d times, want %d", *runs, test.wantRuns)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	registry, _ := countingRegistry(t)

	// More than three edits from every registered name.
	_, err := registry.Resolve(Call{Name: "quixotic"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Resolve(quixotic) = %v, want ErrUnknownCommand", err)
	}
	var unknown *UnknownCommandError
	if !errors.As(err, &unknown) || unknown.Suggestion != "" {
		t.Errorf("Resolve(quixotic) suggestion = %+v, want none", unknown)
	}

	_, err = registry.Resolve(Call{Name: "echo"})
	var usageError *UsageError
	if !errors.As(err, &usageError) {
		t.Fatalf("Resolve(echo) = %v, want *UsageError", err)
	}
	if usageError.Usage != "echo <word>" {
		t.Errorf("Usage = %q", usageError.Usage)
	}

	cmd, err := registry.Resolve(Call{Name: "take"})
	if err != nil {
		t.Fatalf("Resolve(take): %v", err)
	}
	if cmd.Kind != KindPayload {
		t.Errorf("take Kind = %v", cmd.Kind)
	}
}

func TestExecuteRejectsPayloadForPlain(t *testing.T) {
	registry, runs := countingRegistry(t)
	cmd, err := registry.Resolve(Call{Name: "echo", Args: []string{"x"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	result := registry.Execute(t.Context(), cmd, Call{Name: "echo", Args: []string{"x"}, Payload: &schema.Ticket{}})
	if result.OK || *runs != 0 {
		t.Errorf("Execute with stray payload = %+v, runs %d", result, *runs)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	registry, _ := countingRegistry(t)
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	registry.Register(&Command{Name: "echo", Run: func(context.Context, Call) (string, error) { return "", nil }})
}

func TestCommandsHidesConsoleOnly(t *testing.T) {
	registry, _ := countingRegistry(t)

	var clientNames []string
	for _, cmd := range registry.Commands(OriginClient) {
		clientNames = append(clientNames, cmd.Name)
	}
	if got := strings.Join(clientNames, ","); got != "echo,take" {
		t.Errorf("client commands = %s, want echo,take", got)
	}
	if got := len(registry.Commands(OriginConsole)); got != 3 {
		t.Errorf("console sees %d commands, want 3", got)
	}
	if help := registry.HelpText(OriginClient); strings.Contains(help, "secret") {
		t.Errorf("client help lists console command:\n%s", help)
	}
}

func TestUsage(t *testing.T) {
	cmd := &Command{Name: "update", Args: []string{"id"}, Kind: KindPayload}
	if got := cmd.Usage(); got != "update <id> {ticket}" {
		t.Errorf("Usage() = %q", got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"show", "show", 0},
		{"shwo", "show", 2},
		{"remove_frist", "remove_first", 2},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
	if got := suggestCommand("inf", []string{"info", "insert_at"}); got != "info" {
		t.Errorf("suggestCommand(inf) = %q, want info", got)
	}
	if got := suggestCommand("completely_different", []string{"info"}); got != "" {
		t.Errorf("suggestCommand far name = %q, want empty", got)
	}
}
