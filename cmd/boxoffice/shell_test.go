// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/boxoffice/lib/clock"
	"github.com/bureau-foundation/boxoffice/lib/collection"
	"github.com/bureau-foundation/boxoffice/lib/command"
	"github.com/bureau-foundation/boxoffice/lib/script"
	"github.com/bureau-foundation/boxoffice/lib/service"
	"github.com/bureau-foundation/boxoffice/lib/testutil"
)

const testTimeout = 5 * time.Second

type testServer struct {
	address string
	store   *collection.Store
	stop    func()
}

// startServer runs a real server on a loopback port. stop shuts it
// down early; it is also called when the test ends.
func startServer(t *testing.T, scriptRoot string) *testServer {
	t.Helper()
	logger := testutil.Logger(t)
	store := collection.New(clock.Fake(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)))
	registry := command.NewRegistry(logger)
	command.RegisterBuiltins(registry, command.Env{Store: store})
	engine := script.NewEngine(registry, script.FileLoader{Root: scriptRoot}, logger)
	registry.Register(engine.Command())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		service.NewServer(registry, engine, service.Config{}, logger).Serve(ctx, listener)
	}()

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		testutil.RequireClosed(t, done, testTimeout, "server shutdown")
	}
	t.Cleanup(stop)
	return &testServer{address: listener.Addr().String(), store: store, stop: stop}
}

func runShell(t *testing.T, address, input string) (string, error) {
	t.Helper()
	dial := func(ctx context.Context) (*service.Client, error) {
		return service.Dial(ctx, address, testTimeout)
	}
	client, err := dial(t.Context())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	var out strings.Builder
	err = newShell(client, dial, strings.NewReader(input), &out, newRenderer(io.Discard, false), false).run(t.Context())
	return out.String(), err
}

func TestShellCommandsAndPayload(t *testing.T) {
	server := startServer(t, t.TempDir())

	out, err := runShell(t, server.address, strings.Join([]string{
		"add",
		"Alice", "3", "4", "120", "n", "vip", "y", "Club", "50", "bar",
		"count_greater_than_type usual",
		"remove_by_id 42",
		"exit",
		"info",
	}, "\n")+"\n")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}

	for _, want := range []string{
		"added ticket #1",
		"\n0\n",
		"no ticket with id 42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Collection type") {
		t.Errorf("lines after exit must not run, got:\n%s", out)
	}
	tickets := server.store.Snapshot()
	if len(tickets) != 1 || tickets[0].Venue == nil || tickets[0].Venue.ID != 1 {
		t.Errorf("unexpected stored tickets: %+v", tickets)
	}
}

func TestShellSubmitsLocalScript(t *testing.T) {
	server := startServer(t, t.TempDir())
	dir := testutil.WriteFiles(t, map[string]string{
		"batch.txt": "# populate\nclear\nshow\nadd\n",
	})
	path := filepath.Join(dir, "batch.txt")

	out, err := runShell(t, server.address, "execute_script "+path+"\nexecute_script "+filepath.Join(dir, "absent.txt")+"\n")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	for _, want := range []string{
		"=== start of script " + path + " ===",
		"cleared 0 ticket(s)",
		"collection is empty",
		"error: add: ",
		"=== end of script " + path + " ===",
		"error: reading script:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestShellInputClosedDuringPayload(t *testing.T) {
	server := startServer(t, t.TempDir())
	out, err := runShell(t, server.address, "add\nBob\n")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	if server.store.Len() != 0 {
		t.Errorf("abandoned payload must not add a ticket, output:\n%s", out)
	}
}

func TestShellReconnectFailure(t *testing.T) {
	server := startServer(t, t.TempDir())
	dial := func(ctx context.Context) (*service.Client, error) {
		return service.Dial(ctx, server.address, testTimeout)
	}
	client, err := dial(t.Context())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server.stop()

	var out strings.Builder
	err = newShell(client, dial, strings.NewReader("show\n"), &out, newRenderer(io.Discard, false), false).run(t.Context())
	if err == nil || !strings.Contains(err.Error(), "reconnecting") {
		t.Fatalf("expected a reconnect failure, got %v", err)
	}
	if !strings.Contains(out.String(), "connection lost") {
		t.Errorf("expected a connection-lost notice, got:\n%s", out.String())
	}
}

func TestShellReconnects(t *testing.T) {
	server := startServer(t, t.TempDir())
	dials := 0
	dial := func(ctx context.Context) (*service.Client, error) {
		dials++
		return service.Dial(ctx, server.address, testTimeout)
	}
	client, err := dial(t.Context())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	// A dead connection to a live server: the first command fails and
	// the shell redials.
	client.Close()

	var out strings.Builder
	err = newShell(client, dial, strings.NewReader("show\ninfo\n"), &out, newRenderer(io.Discard, false), false).run(t.Context())
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	if dials != 2 {
		t.Errorf("expected one redial, got %d dials", dials)
	}
	if !strings.Contains(out.String(), "reconnected") || !strings.Contains(out.String(), "Elements: 0") {
		t.Errorf("expected the command after reconnect to run, got:\n%s", out.String())
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--address", "10.0.0.1:7000", "--timeout", "2s", "--no-color"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.address != "10.0.0.1:7000" || opts.timeout != 2*time.Second || !opts.noColor {
		t.Errorf("unexpected options: %+v", opts)
	}
	if _, err := parseFlags([]string{"stray"}); err == nil {
		t.Error("expected positional arguments to be rejected")
	}
	if _, err := parseFlags([]string{"-h"}); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("expected help, got %v", err)
	}
}
