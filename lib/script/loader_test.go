// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/boxoffice/lib/command"
	"github.com/bureau-foundation/boxoffice/lib/testutil"
)

func TestFileLoaderConfinedToRoot(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"inside.txt":        "info\n",
		"nested/deeper.txt": "show\n",
	})
	outside := testutil.WriteFiles(t, map[string]string{"secret.txt": "topsecret-token\n"})
	secret := filepath.Join(outside, "secret.txt")

	relativeToSecret, err := filepath.Rel(root, secret)
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if err := os.Symlink(secret, filepath.Join(root, "link.txt")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	loader := FileLoader{Root: root}
	tests := []struct {
		name        string
		path        string
		wantContent string
		wantOutside bool
	}{
		{name: "relative", path: "inside.txt", wantContent: "info\n"},
		{name: "nested", path: "nested/deeper.txt", wantContent: "show\n"},
		{name: "absolute inside root", path: filepath.Join(root, "inside.txt"), wantContent: "info\n"},
		{name: "dot dot inside root", path: "nested/../inside.txt", wantContent: "info\n"},
		{name: "absolute outside root", path: secret, wantOutside: true},
		{name: "dot dot escape", path: relativeToSecret, wantOutside: true},
		{name: "parent", path: "..", wantOutside: true},
		{name: "symlink escape", path: "link.txt"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			content, err := loader.Load(loader.Identify(test.path))
			if test.wantContent != "" {
				if err != nil {
					t.Fatalf("Load(%q): %v", test.path, err)
				}
				if content != test.wantContent {
					t.Errorf("Load(%q) = %q, want %q", test.path, content, test.wantContent)
				}
				return
			}
			if err == nil {
				t.Fatalf("Load(%q) = %q, want an error", test.path, content)
			}
			if test.wantOutside && !errors.Is(err, ErrOutsideRoot) {
				t.Errorf("Load(%q) error = %v, want ErrOutsideRoot", test.path, err)
			}
			if strings.Contains(err.Error(), "topsecret") {
				t.Errorf("error leaks file content: %v", err)
			}
		})
	}
}

func TestFileLoaderEmptyRootIsWorkingDirectory(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"here.txt": "info\n"})
	outside := testutil.WriteFiles(t, map[string]string{"there.txt": "info\n"})
	t.Chdir(root)

	loader := FileLoader{}
	if _, err := loader.Load(loader.Identify("here.txt")); err != nil {
		t.Errorf("Load(here.txt): %v", err)
	}
	if _, err := loader.Load(loader.Identify(filepath.Join(outside, "there.txt"))); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Load outside the working directory = %v, want ErrOutsideRoot", err)
	}
}

func TestFileLoaderSizeLimit(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"big.txt": strings.Repeat("#", MaxScriptSize+1),
		"dir/a":   "",
	})
	loader := FileLoader{Root: root}
	if _, err := loader.Load(loader.Identify("big.txt")); err == nil || !strings.Contains(err.Error(), "limit") {
		t.Errorf("oversized script error = %v", err)
	}
	if _, err := loader.Load(loader.Identify("dir")); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("directory error = %v", err)
	}
}

func TestNestedScriptCannotReadOutsideRoot(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{})
	outside := testutil.WriteFiles(t, map[string]string{"secret.txt": "topsecret-token\n"})
	engine, _ := newEngine(t, FileLoader{Root: root})

	output := engine.Run(t.Context(), "main.txt",
		"execute_script "+filepath.Join(outside, "secret.txt")+"\n", command.OriginClient)
	if strings.Contains(output, "topsecret-token") {
		t.Fatalf("script outside the root was replayed:\n%s", output)
	}
	if !strings.Contains(output, ErrOutsideRoot.Error()) {
		t.Errorf("output should report the refused path:\n%s", output)
	}
}
