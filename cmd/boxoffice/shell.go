// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bureau-foundation/boxoffice/lib/prompt"
	"github.com/bureau-foundation/boxoffice/lib/schema"
	"github.com/bureau-foundation/boxoffice/lib/script"
	"github.com/bureau-foundation/boxoffice/lib/service"
)

// dialFunc opens a connection to the server.
type dialFunc func(ctx context.Context) (*service.Client, error)

// shell is the interactive command loop. Every line is one command
// sent on the shared connection; payload commands are completed by
// prompting on the same input.
type shell struct {
	dial        dialFunc
	client      *service.Client
	in          *bufio.Scanner
	out         io.Writer
	render      *renderer
	interactive bool
}

func newShell(client *service.Client, dial dialFunc, in io.Reader, out io.Writer, render *renderer, interactive bool) *shell {
	return &shell{
		dial:        dial,
		client:      client,
		in:          bufio.NewScanner(in),
		out:         out,
		render:      render,
		interactive: interactive,
	}
}

// run reads commands until input ends, the user types exit, or ctx is
// cancelled. A dropped connection is redialed once per failure; if
// that fails too, run returns the error.
func (s *shell) run(ctx context.Context) error {
	defer func() { s.client.Close() }()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.interactive {
			fmt.Fprint(s.out, s.render.prompt("> "))
		}
		if !s.in.Scan() {
			return s.in.Err()
		}

		fields := strings.Fields(s.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" {
			return nil
		}

		err := s.handle(ctx, fields[0], fields[1:])
		switch {
		case err == nil:
		case errors.Is(err, prompt.ErrInputClosed), ctx.Err() != nil:
			return nil
		default:
			fmt.Fprint(s.out, s.render.failure(err.Error()))
			if err := s.reconnect(ctx); err != nil {
				return err
			}
		}
	}
}

// handle runs one command line. It returns an error only when the
// connection can no longer be trusted; local problems are reported
// and the loop continues.
func (s *shell) handle(ctx context.Context, name string, args []string) error {
	if name == script.CommandName {
		return s.script(ctx, args)
	}
	response, err := s.client.Command(ctx, name, args, s.payload)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, s.render.response(response))
	return nil
}

// script reads a local script file and submits its content. The
// server replays it and resolves nested scripts on its side.
func (s *shell) script(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprint(s.out, s.render.failure("usage: "+script.CommandName+" <path>"))
		return nil
	}
	path := args[0]
	content, err := readScript(path)
	if err != nil {
		fmt.Fprint(s.out, s.render.failure(err.Error()))
		return nil
	}
	response, err := s.client.Script(ctx, path, content)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, s.render.response(response))
	return nil
}

func (s *shell) payload(ctx context.Context, message string) (*schema.Ticket, error) {
	fmt.Fprint(s.out, s.render.notice(message))
	return prompt.NewScanner(s.in, s.out).Ticket(ctx)
}

func (s *shell) reconnect(ctx context.Context) error {
	s.client.Close()
	fmt.Fprint(s.out, s.render.notice("connection lost, reconnecting to "+s.client.Address()))
	client, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("reconnecting: %w", err)
	}
	s.client = client
	fmt.Fprint(s.out, s.render.notice("reconnected"))
	return nil
}

func readScript(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("reading script: %s is a directory", path)
	}
	if info.Size() > script.MaxScriptSize {
		return "", fmt.Errorf("reading script: %s is %d bytes, limit is %d", path, info.Size(), script.MaxScriptSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}
