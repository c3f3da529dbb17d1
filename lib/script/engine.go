// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bureau-foundation/boxoffice/lib/command"
)

// CommandName is the command that runs a script.
const CommandName = "execute_script"

// RecursionError reports a script that invoked itself, directly or
// through other scripts.
type RecursionError struct {
	// Script is the identifier that was already running.
	Script string

	// Chain is the call stack at the point of the repeated entry,
	// outermost first, ending with Script.
	Chain []string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("recursion detected: %s; skipping %s", strings.Join(e.Chain, " -> "), e.Script)
}

// callStack is the ordered set of scripts currently running within
// one top-level invocation. Values are never shared: push returns a
// fresh slice.
type callStack []string

func (s callStack) contains(id string) bool {
	return slices.Contains(s, id)
}

func (s callStack) push(id string) callStack {
	next := make(callStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, id)
}

// Engine replays scripts through a dispatcher.
type Engine struct {
	dispatcher command.Dispatcher
	loader     Loader
	logger     *slog.Logger
}

// NewEngine creates an engine. loader resolves execute_script lines.
func NewEngine(dispatcher command.Dispatcher, loader Loader, logger *slog.Logger) *Engine {
	return &Engine{
		dispatcher: dispatcher,
		loader:     loader,
		logger:     logger,
	}
}

// Command returns the execute_script command, which loads a script
// through the engine's loader and runs it. Register it in the same
// registry the engine dispatches through.
func (e *Engine) Command() *command.Command {
	return &command.Command{
		Name:    CommandName,
		Summary: "run the commands in a script file",
		Args:    []string{"path"},
		Run: func(ctx context.Context, call command.Call) (string, error) {
			id := e.loader.Identify(call.Args[0])
			content, err := e.loader.Load(id)
			if err != nil {
				return "", err
			}
			return e.run(ctx, id, content, call.Origin, nil), nil
		},
	}
}

// Run replays content as a top-level script named path and returns
// the aggregated output. Nested execute_script lines are resolved
// through the loader.
func (e *Engine) Run(ctx context.Context, path, content string, origin command.Origin) string {
	return e.run(ctx, e.loader.Identify(path), content, origin, nil)
}

func (e *Engine) run(ctx context.Context, id, content string, origin command.Origin, stack callStack) string {
	var output strings.Builder
	nested := len(stack) > 0
	stack = stack.push(id)

	e.logger.Debug("script started", "script", id, "depth", len(stack))
	writeBanner(&output, "start", id, nested)

	for line := range strings.Lines(content) {
		if err := ctx.Err(); err != nil {
			writeLine(&output, "error: script interrupted: "+err.Error())
			break
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		call := command.Call{Name: fields[0], Args: fields[1:], Origin: origin}
		cmd, err := e.dispatcher.Resolve(call)
		if err != nil {
			writeLine(&output, "error: "+err.Error())
			continue
		}

		if cmd.Name == CommandName {
			output.WriteString(e.runNested(ctx, call.Args[0], origin, stack))
			continue
		}

		result := e.dispatcher.Execute(ctx, cmd, call)
		if result.OK {
			writeLine(&output, result.Message)
		} else {
			writeLine(&output, "error: "+result.Message)
		}
	}

	writeBanner(&output, "end", id, nested)
	e.logger.Debug("script finished", "script", id, "depth", len(stack))
	return output.String()
}

func (e *Engine) runNested(ctx context.Context, path string, origin command.Origin, stack callStack) string {
	id := e.loader.Identify(path)
	if stack.contains(id) {
		recursion := &RecursionError{Script: id, Chain: append(slices.Clone([]string(stack)), id)}
		e.logger.Warn("script recursion", "script", id, "chain", strings.Join(recursion.Chain, " -> "))
		return "error: " + recursion.Error() + "\n"
	}

	content, err := e.loader.Load(id)
	if err != nil {
		return "error: " + err.Error() + "\n"
	}
	return e.run(ctx, id, content, origin, stack)
}

func writeBanner(output *strings.Builder, edge, id string, nested bool) {
	if nested {
		fmt.Fprintf(output, "--- %s of nested script %s ---\n", edge, id)
		return
	}
	fmt.Fprintf(output, "=== %s of script %s ===\n", edge, id)
}

func writeLine(output *strings.Builder, text string) {
	output.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		output.WriteByte('\n')
	}
}
