// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/boxoffice/lib/command"
	"github.com/bureau-foundation/boxoffice/lib/prompt"
)

// console is the operator's command loop on the server's own stdin.
// It runs commands with console origin, so save and shutdown are
// available, and prompts for payloads field by field.
type console struct {
	dispatcher  command.Dispatcher
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
	logger      *slog.Logger
}

func newConsole(dispatcher command.Dispatcher, in io.Reader, out io.Writer, interactive bool, logger *slog.Logger) *console {
	return &console{
		dispatcher:  dispatcher,
		in:          bufio.NewScanner(in),
		out:         out,
		interactive: interactive,
		logger:      logger,
	}
}

// run reads commands until input ends or ctx is cancelled. exit is an
// alias for shutdown. It returns nil when input ends; a server whose
// stdin is closed keeps serving.
func (c *console) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.interactive {
			fmt.Fprint(c.out, "> ")
		}
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("reading console input: %w", err)
			}
			c.logger.Info("console input closed")
			return nil
		}

		fields := strings.Fields(c.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" {
			fields[0] = "shutdown"
		}

		call := command.Call{Name: fields[0], Args: fields[1:], Origin: command.OriginConsole}
		result, err := c.execute(ctx, call)
		if errors.Is(err, prompt.ErrInputClosed) {
			c.logger.Info("console input closed")
			return nil
		}
		if err != nil {
			return err
		}
		c.report(result)
	}
}

func (c *console) execute(ctx context.Context, call command.Call) (command.Result, error) {
	cmd, err := c.dispatcher.Resolve(call)
	if err != nil {
		return command.Result{Message: err.Error()}, nil
	}
	if cmd.Kind == command.KindPayload {
		ticket, err := prompt.NewScanner(c.in, c.out).Ticket(ctx)
		if err != nil {
			return command.Result{}, fmt.Errorf("%s: %w", call.Name, err)
		}
		call.Payload = ticket
	}
	return c.dispatcher.Execute(ctx, cmd, call), nil
}

func (c *console) report(result command.Result) {
	if !result.OK {
		fmt.Fprintf(c.out, "error: %s\n", result.Message)
		return
	}
	if result.Message != "" {
		fmt.Fprintln(c.out, strings.TrimSuffix(result.Message, "\n"))
	}
}
