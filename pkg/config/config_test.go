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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultTimeoutSeconds != 0 || cfg.MaxOutputBytes != 0 || cfg.Sandbox {
		t.Errorf("Load() = %+v, want zero defaults", cfg)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if len(cfg.AllowedDirs) != 0 {
		t.Errorf("AllowedDirs = %v, want empty", cfg.AllowedDirs)
	}
}

func TestLoadValues(t *testing.T) {
	path := writeFile(t, `
defaultTimeoutSeconds: 120
maxOutputBytes: 1048576
allowedDirs:
  - /Users/dev/projects
sandbox: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultTimeoutSeconds != 120 {
		t.Errorf("DefaultTimeoutSeconds = %d, want 120", cfg.DefaultTimeoutSeconds)
	}
	if cfg.MaxOutputBytes != 1048576 {
		t.Errorf("MaxOutputBytes = %d, want 1048576", cfg.MaxOutputBytes)
	}
	if len(cfg.AllowedDirs) != 1 || cfg.AllowedDirs[0] != "/Users/dev/projects" {
		t.Errorf("AllowedDirs = %v", cfg.AllowedDirs)
	}
	if !cfg.Sandbox {
		t.Error("Sandbox = false, want true")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "defaultTimeoutSeconds: [not a number")
	if _, err := Load(path); err == nil {
		t.Error("Load() = nil error for malformed file")
	}
}

func TestLoadRejectsNegatives(t *testing.T) {
	path := writeFile(t, "defaultTimeoutSeconds: -5")
	if _, err := Load(path); err == nil {
		t.Error("Load() = nil error for negative timeout")
	}
}
