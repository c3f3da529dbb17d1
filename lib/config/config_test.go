// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Server.Address != "127.0.0.1:5555" {
		t.Errorf("expected address=127.0.0.1:5555, got %s", cfg.Server.Address)
	}
	if cfg.Server.PayloadTimeout.Std() != 5*time.Minute {
		t.Errorf("expected payload_timeout=5m, got %s", cfg.Server.PayloadTimeout.Std())
	}
	if !cfg.Storage.Lock {
		t.Error("expected lock=true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	t.Setenv("BOXOFFICE_DATA", "/srv/boxoffice")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Path != "/srv/boxoffice/tickets.xml" {
		t.Errorf("expected expanded storage path, got %s", cfg.Storage.Path)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, "boxoffice.yaml", `
server:
  address: 0.0.0.0:7000
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != "0.0.0.0:7000" {
		t.Errorf("expected address from %s, got %s", EnvironmentVariable, cfg.Server.Address)
	}
}

func TestLoadFlagWinsOverEnvironment(t *testing.T) {
	fromEnv := writeConfig(t, "env.yaml", "server:\n  address: env:1\n")
	fromFlag := writeConfig(t, "flag.yaml", "server:\n  address: flag:1\n")
	t.Setenv(EnvironmentVariable, fromEnv)

	cfg, err := Load(fromFlag)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != "flag:1" {
		t.Errorf("expected address=flag:1, got %s", cfg.Server.Address)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "boxoffice.yaml", `
environment: development

server:
  address: 127.0.0.1:6000
  idle_timeout: 2m
  payload_timeout: 30s
  write_timeout: 1s
  max_connections: 8

storage:
  path: /data/tickets.xml.zst
  lock: false

scripts:
  root: /data/scripts

logging:
  level: debug
  format: text
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Address != "127.0.0.1:6000" {
		t.Errorf("expected address=127.0.0.1:6000, got %s", cfg.Server.Address)
	}
	if cfg.Server.IdleTimeout.Std() != 2*time.Minute {
		t.Errorf("expected idle_timeout=2m, got %s", cfg.Server.IdleTimeout.Std())
	}
	if cfg.Server.PayloadTimeout.Std() != 30*time.Second {
		t.Errorf("expected payload_timeout=30s, got %s", cfg.Server.PayloadTimeout.Std())
	}
	if cfg.Server.WriteTimeout.Std() != time.Second {
		t.Errorf("expected write_timeout=1s, got %s", cfg.Server.WriteTimeout.Std())
	}
	if cfg.Server.MaxConnections != 8 {
		t.Errorf("expected max_connections=8, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Storage.Path != "/data/tickets.xml.zst" {
		t.Errorf("expected storage path, got %s", cfg.Storage.Path)
	}
	if cfg.Storage.Lock {
		t.Error("expected lock=false")
	}
	if cfg.Scripts.Root != "/data/scripts" {
		t.Errorf("expected scripts root, got %s", cfg.Scripts.Root)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("expected debug/text logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := writeConfig(t, "boxoffice.jsonc", `{
	// local override
	"server": {
		"address": "127.0.0.1:6001",
		"payload_timeout": "45s", /* shorter than default */
	},
	"storage": {"path": "${HOME}/tickets.xml.lz4", "lock": true},
}`)
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:6001" {
		t.Errorf("expected address=127.0.0.1:6001, got %s", cfg.Server.Address)
	}
	if cfg.Server.PayloadTimeout.Std() != 45*time.Second {
		t.Errorf("expected payload_timeout=45s, got %s", cfg.Server.PayloadTimeout.Std())
	}
	if cfg.Storage.Path != "/home/tester/tickets.xml.lz4" {
		t.Errorf("expected expanded path, got %s", cfg.Storage.Path)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Server.WriteTimeout.Std() != 10*time.Second {
		t.Errorf("expected default write_timeout, got %s", cfg.Server.WriteTimeout.Std())
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad yaml", "bad.yaml", "server: [unterminated", "parsing"},
		{"bad duration", "bad.yaml", "server:\n  idle_timeout: soon\n", "parsing"},
		{"bad jsonc", "bad.jsonc", `{"server": `, "parsing"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfig(t, test.file, test.content)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q should mention %q", err, test.want)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "boxoffice.yaml", `
environment: production

server:
  address: 127.0.0.1:5555

storage:
  path: ./tickets.xml
  lock: false

logging:
  level: debug

development:
  server:
    address: 127.0.0.1:9999

production:
  server:
    address: 0.0.0.0:5555
    max_connections: 64
  storage:
    path: /var/lib/boxoffice/tickets.xml.zst
    lock: true
  logging:
    level: warn
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Address != "0.0.0.0:5555" {
		t.Errorf("expected production address, got %s", cfg.Server.Address)
	}
	if cfg.Server.MaxConnections != 64 {
		t.Errorf("expected max_connections=64, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Storage.Path != "/var/lib/boxoffice/tickets.xml.zst" {
		t.Errorf("expected production storage path, got %s", cfg.Storage.Path)
	}
	if !cfg.Storage.Lock {
		t.Error("expected lock=true from production override")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level=warn, got %s", cfg.Logging.Level)
	}
	// The production section did not name a format.
	if cfg.Logging.Format != "auto" {
		t.Errorf("expected format=auto, got %s", cfg.Logging.Format)
	}
}

func TestProductionDefaults(t *testing.T) {
	path := writeConfig(t, "boxoffice.yaml", "environment: production\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected production default format=json, got %s", cfg.Logging.Format)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("BOXOFFICE_TEST_SET", "/from/env")
	t.Setenv("BOXOFFICE_TEST_EMPTY", "")

	vars := map[string]string{"HOME": "/home/test"}

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/tickets.xml", "/home/test/tickets.xml"},
		{"${BOXOFFICE_TEST_SET}/x", "/from/env/x"},
		{"${BOXOFFICE_TEST_EMPTY:-/fallback}/x", "/fallback/x"},
		{"${BOXOFFICE_TEST_UNSET_VARIABLE:-rel}/x", "rel/x"},
		{"${BOXOFFICE_TEST_UNSET_VARIABLE}/x", "/x"},
		{"/no/variables", "/no/variables"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := expandVars(test.input, vars); got != test.want {
				t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   []string
	}{
		{
			name: "valid default",
			modify: func(c *Config) {
				c.Storage.Path = "/tmp/tickets.xml"
			},
		},
		{
			name:   "invalid environment",
			modify: func(c *Config) { c.Environment = "staging" },
			want:   []string{"invalid environment"},
		},
		{
			name:   "missing address",
			modify: func(c *Config) { c.Server.Address = "" },
			want:   []string{"server.address is required"},
		},
		{
			name:   "negative timeout",
			modify: func(c *Config) { c.Server.PayloadTimeout = Duration(-time.Second) },
			want:   []string{"server.payload_timeout must not be negative"},
		},
		{
			name:   "negative max connections",
			modify: func(c *Config) { c.Server.MaxConnections = -1 },
			want:   []string{"server.max_connections"},
		},
		{
			name: "several problems reported together",
			modify: func(c *Config) {
				c.Storage.Path = ""
				c.Logging.Level = "loud"
				c.Logging.Format = "xml"
			},
			want: []string{"storage.path is required", "logging.level", "logging.format"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if len(test.want) == 0 {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			for _, fragment := range test.want {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("error %q should mention %q", err, fragment)
				}
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte(" 1m30s ")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("expected 90s, got %s", d.Std())
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "1m30s" {
		t.Errorf("expected 1m30s, got %s", text)
	}
	if err := d.UnmarshalText([]byte("30")); err == nil {
		t.Error("expected error for a duration without a unit")
	}
}
