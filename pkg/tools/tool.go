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

// Package tools implements the MCP tool handlers. Each handler is thin
// glue: parse arguments, build an argv, call the execution core, shape the
// result. Nothing here spawns a process except through the executor.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is one MCP tool: its schema and its implementation.
type Tool interface {
	Name() string
	Definition() mcp.Tool
	Run(ctx context.Context, args map[string]any) (any, error)
}

// ArgError reports a missing or malformed tool argument.
type ArgError struct {
	Name   string
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Name, e.Reason)
}

// ErrUnsupported marks an operation the current platform cannot perform.
var ErrUnsupported = errors.New("not supported on this platform")

const (
	quickTimeout   = 30 * time.Second
	shellTimeout   = time.Minute
	installTimeout = 2 * time.Minute
	buildTimeout   = 30 * time.Minute
)

func requireString(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", &ArgError{Name: name, Reason: "required"}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &ArgError{Name: name, Reason: "must be a non-empty string"}
	}
	return s, nil
}

func optionalString(args map[string]any, name, def string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

// optionalInt tolerates the float64 that JSON numbers decode to.
func optionalInt(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func optionalBool(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// serialEnv selects the adb target device through the environment so the
// verb stays first in the argv.
func serialEnv(serial string) map[string]string {
	if serial == "" {
		return nil
	}
	return map[string]string{"ANDROID_SERIAL": serial}
}
