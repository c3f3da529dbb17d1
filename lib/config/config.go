// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] consults when no
// explicit path is given.
const EnvironmentVariable = "BOXOFFICE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local runs.
	Development Environment = "development"
	// Production is for long-running deployments.
	Production Environment = "production"
)

// Config is the server configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment" json:"environment"`

	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Scripts ScriptsConfig `yaml:"scripts" json:"scripts"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Per-environment overrides, applied after the base values.
	Development *ConfigOverrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment. Zero-valued fields leave the base value alone.
type ConfigOverrides struct {
	Server  *ServerConfig  `yaml:"server,omitempty" json:"server,omitempty"`
	Storage *StorageConfig `yaml:"storage,omitempty" json:"storage,omitempty"`
	Scripts *ScriptsConfig `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// ServerConfig configures the TCP listener and per-connection limits.
type ServerConfig struct {
	// Address is the host:port to listen on.
	// Default: 127.0.0.1:5555
	Address string `yaml:"address" json:"address"`

	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero disables it.
	IdleTimeout Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// PayloadTimeout bounds the wait for a payload after need_payload.
	// Default: 5m
	PayloadTimeout Duration `yaml:"payload_timeout" json:"payload_timeout"`

	// WriteTimeout bounds each response write.
	// Default: 10s
	WriteTimeout Duration `yaml:"write_timeout" json:"write_timeout"`

	// MaxConnections caps concurrently served connections. Zero means
	// unlimited.
	MaxConnections int64 `yaml:"max_connections" json:"max_connections"`
}

// StorageConfig configures the collection file.
type StorageConfig struct {
	// Path is the collection file. A .zst or .lz4 suffix selects
	// compression.
	// Default: ${BOXOFFICE_DATA:-.}/tickets.xml
	Path string `yaml:"path" json:"path"`

	// Lock takes an advisory lock next to the collection file so two
	// servers cannot share it.
	// Default: true
	Lock bool `yaml:"lock" json:"lock"`
}

// ScriptsConfig configures server-side script resolution.
type ScriptsConfig struct {
	// Root is the directory relative script paths resolve against.
	// Empty means the working directory.
	Root string `yaml:"root" json:"root"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is one of auto, text, json. Auto picks text on a terminal.
	Format string `yaml:"format" json:"format"`
}

// Duration is a time.Duration that reads and writes the "30s" form in
// both YAML and JSON.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given, and
// the base every file is merged onto.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Address:        "127.0.0.1:5555",
			PayloadTimeout: Duration(5 * time.Minute),
			WriteTimeout:   Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			Path: "${BOXOFFICE_DATA:-.}/tickets.xml",
			Lock: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load resolves the configuration for a process. An explicit path
// (usually the --config flag) wins over BOXOFFICE_CONFIG. With neither
// set the defaults are used, expanded but otherwise untouched.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file. Files ending in
// .json or .jsonc are parsed as JSON with comments and trailing
// commas; anything else is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production logs are machine-read.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		o := overrides.Server
		if o.Address != "" {
			c.Server.Address = o.Address
		}
		if o.IdleTimeout != 0 {
			c.Server.IdleTimeout = o.IdleTimeout
		}
		if o.PayloadTimeout != 0 {
			c.Server.PayloadTimeout = o.PayloadTimeout
		}
		if o.WriteTimeout != 0 {
			c.Server.WriteTimeout = o.WriteTimeout
		}
		if o.MaxConnections != 0 {
			c.Server.MaxConnections = o.MaxConnections
		}
	}

	if overrides.Storage != nil {
		if overrides.Storage.Path != "" {
			c.Storage.Path = overrides.Storage.Path
		}
		// Lock is a bool, so an override section always sets it.
		c.Storage.Lock = overrides.Storage.Lock
	}

	if overrides.Scripts != nil && overrides.Scripts.Root != "" {
		c.Scripts.Root = overrides.Scripts.Root
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Storage.Path = expandVars(c.Storage.Path, vars)
	c.Scripts.Root = expandVars(c.Scripts.Root, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	for name, value := range map[string]Duration{
		"server.idle_timeout":    c.Server.IdleTimeout,
		"server.payload_timeout": c.Server.PayloadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, value.Std()))
		}
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("server.max_connections must not be negative, got %d", c.Server.MaxConnections))
	}

	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}

	return errors.Join(errs...)
}
