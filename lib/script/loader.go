// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxScriptSize is the largest script a [FileLoader] reads, and the
// largest a client submits. It sits 64 KiB under the server's default
// request limit so a maximal script still fits in one request.
const MaxScriptSize = 1<<20 - 64<<10

// ErrOutsideRoot is returned by [FileLoader.Load] for a script that
// resolves outside the loader's root.
var ErrOutsideRoot = errors.New("path is outside the script root")

// Loader fetches nested scripts.
type Loader interface {
	// Identify returns the identifier for path. Two paths naming the
	// same script must produce the same identifier.
	Identify(path string) string

	// Load returns the content of the script with the given
	// identifier.
	Load(id string) (string, error)
}

// FileLoader reads scripts from the filesystem below Root; an empty
// Root means the working directory. Relative paths resolve against
// Root. Absolute paths, ".." components, and symlinks that lead
// outside Root are refused.
type FileLoader struct {
	Root string
}

func (l FileLoader) root() string {
	if l.Root == "" {
		return "."
	}
	return l.Root
}

// Identify cleans path and anchors relative paths at Root.
func (l FileLoader) Identify(path string) string {
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, path)
	}
	return filepath.Clean(path)
}

// Load reads the script file named by id.
func (l FileLoader) Load(id string) (string, error) {
	relative, err := l.relative(id)
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", id, err)
	}

	root, err := os.OpenRoot(l.root())
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", id, err)
	}
	defer root.Close()

	file, err := root.Open(relative)
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", id, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", id, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("reading script %s: is a directory", id)
	}
	if info.Size() > MaxScriptSize {
		return "", fmt.Errorf("reading script %s: %d bytes exceeds the %d byte limit", id, info.Size(), MaxScriptSize)
	}
	content, err := io.ReadAll(io.LimitReader(file, MaxScriptSize+1))
	if err != nil {
		return "", fmt.Errorf("reading script %s: %w", id, err)
	}
	if len(content) > MaxScriptSize {
		return "", fmt.Errorf("reading script %s: exceeds the %d byte limit", id, MaxScriptSize)
	}
	return string(content), nil
}

// relative returns id as a path local to the root.
func (l FileLoader) relative(id string) (string, error) {
	base, err := filepath.Abs(l.root())
	if err != nil {
		return "", err
	}
	target, err := filepath.Abs(id)
	if err != nil {
		return "", err
	}
	relative, err := filepath.Rel(base, target)
	if err != nil || !filepath.IsLocal(relative) {
		return "", ErrOutsideRoot
	}
	return relative, nil
}
