// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// boxoffice is the interactive client for boxoffice-server. It keeps
// one connection open, sends each typed line as a command, prompts
// field by field when the server asks for a ticket, and submits local
// script files with execute_script. Type exit to quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/boxoffice/lib/process"
	"github.com/bureau-foundation/boxoffice/lib/service"
	"github.com/bureau-foundation/boxoffice/lib/version"
)

const binaryName = "boxoffice"

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	address     string
	timeout     time.Duration
	noColor     bool
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.StringVarP(&opts.address, "address", "a", "127.0.0.1:5555", "server address")
	flagSet.DurationVar(&opts.timeout, "timeout", service.DefaultClientTimeout, "connect and round-trip timeout")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return &process.ExitError{Code: 2, Err: err}
	}
	if opts.showVersion {
		fmt.Println(version.Info(binaryName))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dial := func(ctx context.Context) (*service.Client, error) {
		return service.Dial(ctx, opts.address, opts.timeout)
	}
	client, err := dial(ctx)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	color := !opts.noColor && os.Getenv("NO_COLOR") == ""
	render := newRenderer(os.Stdout, color)
	if interactive {
		fmt.Fprint(os.Stdout, render.notice("connected to "+client.Address()+"; type help for commands, exit to quit"))
	}
	return newShell(client, dial, os.Stdin, os.Stdout, render, interactive).run(ctx)
}
