// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the server's startup configuration. Everything is
// resolved once at startup; nothing is runtime-reloadable, and nothing in
// the file can widen the command allowlist.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Config is the optional YAML configuration file. Every field has a safe
// zero value; a missing file yields the defaults.
type Config struct {
	// DefaultTimeoutSeconds bounds command execution when a tool does not
	// set its own timeout. Zero keeps the built-in default.
	DefaultTimeoutSeconds int `json:"defaultTimeoutSeconds,omitempty"`

	// MaxOutputBytes caps each captured output stream. Zero keeps the
	// built-in default.
	MaxOutputBytes int64 `json:"maxOutputBytes,omitempty"`

	// AllowedDirs restricts working directories to these trees when
	// non-empty.
	AllowedDirs []string `json:"allowedDirs,omitempty"`

	// Sandbox enables the platform sandbox wrapper where one exists
	// (macOS seatbelt).
	Sandbox bool `json:"sandbox,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{}
}

// DefaultPath returns the conventional config file location, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mobile-ai", "config.yaml")
}

// Load reads the config at path. A missing file is not an error, the
// defaults apply; a malformed file is, because a user who wrote a config
// wants it honored.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultTimeoutSeconds < 0 {
		return fmt.Errorf("defaultTimeoutSeconds must not be negative, got %d", c.DefaultTimeoutSeconds)
	}
	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("maxOutputBytes must not be negative, got %d", c.MaxOutputBytes)
	}
	return nil
}
