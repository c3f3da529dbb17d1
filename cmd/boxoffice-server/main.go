// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// boxoffice-server serves a ticket collection over TCP. Clients send
// commands on a persistent connection; commands that create or
// replace a ticket are answered with a payload request first. The
// collection is loaded from an XML file at startup and written back
// on save, shutdown, and exit.
//
// The server's own stdin is an operator console with two extra
// commands, save and shutdown (alias exit).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/bureau-foundation/boxoffice/lib/clock"
	"github.com/bureau-foundation/boxoffice/lib/collection"
	"github.com/bureau-foundation/boxoffice/lib/command"
	"github.com/bureau-foundation/boxoffice/lib/config"
	"github.com/bureau-foundation/boxoffice/lib/logging"
	"github.com/bureau-foundation/boxoffice/lib/process"
	"github.com/bureau-foundation/boxoffice/lib/script"
	"github.com/bureau-foundation/boxoffice/lib/service"
	"github.com/bureau-foundation/boxoffice/lib/snapshot"
	"github.com/bureau-foundation/boxoffice/lib/version"
)

const binaryName = "boxoffice-server"

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	configPath  string
	address     string
	storage     string
	scriptsRoot string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.address, "address", "", "listen address, overrides server.address")
	flagSet.StringVar(&opts.storage, "storage", "", "collection file, overrides storage.path")
	flagSet.StringVar(&opts.scriptsRoot, "scripts", "", "script directory, overrides scripts.root")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides logging.level")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return opts, nil
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.storage != "" {
		cfg.Storage.Path = opts.storage
	}
	if opts.scriptsRoot != "" {
		cfg.Scripts.Root = opts.scriptsRoot
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
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
		fmt.Println(version.Full(binaryName))
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	file, err := snapshot.Open(cfg.Storage.Path, snapshot.Options{Lock: cfg.Storage.Lock})
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	defer file.Close()

	loaded, err := file.Load()
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}
	for _, diagnostic := range loaded.Diagnostics {
		logger.Warn("collection load", "path", file.Path(), "problem", diagnostic.String())
	}
	logger.Info("collection loaded",
		"path", file.Path(),
		"compression", file.Compression().String(),
		"tickets", len(loaded.Tickets),
		"rejected", len(loaded.Diagnostics),
	)

	store := collection.Restore(clock.Real(), loaded.Tickets)
	persister := &filePersister{file: file, store: store, logger: logger}

	serveCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	registry := command.NewRegistry(logger)
	command.RegisterBuiltins(registry, command.Env{
		Store:     store,
		Persister: persister,
		Shutdown:  shutdown,
	})
	engine := script.NewEngine(registry, script.FileLoader{Root: cfg.Scripts.Root}, logger)
	registry.Register(engine.Command())

	server := service.NewServer(registry, engine, service.Config{
		IdleTimeout:    cfg.Server.IdleTimeout.Std(),
		PayloadTimeout: cfg.Server.PayloadTimeout.Std(),
		WriteTimeout:   cfg.Server.WriteTimeout.Std(),
		MaxConnections: cfg.Server.MaxConnections,
	}, logger)

	group, groupCtx := errgroup.WithContext(serveCtx)
	group.Go(func() error {
		return server.ListenAndServe(groupCtx, cfg.Server.Address)
	})

	// The console blocks on stdin, which cannot be interrupted, so it
	// runs outside the group and never holds up shutdown.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	operator := newConsole(registry, os.Stdin, os.Stdout, interactive, logger)
	go func() {
		if err := operator.run(groupCtx); err != nil && groupCtx.Err() == nil {
			logger.Warn("console stopped", "error", err)
		}
	}()

	serveErr := group.Wait()

	if _, err := persister.Persist(context.Background()); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}
