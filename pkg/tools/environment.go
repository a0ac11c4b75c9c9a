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

package tools

import (
	"context"
	"runtime"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
)

// ToolStatus reports whether one toolchain binary resolves on PATH.
type ToolStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Path    string `json:"path,omitempty"`
}

// MobileEnvironment probes the host for the mobile toolchain and reports
// what is installed alongside the currently tracked sessions.
type MobileEnvironment struct {
	Executor executor.Executor
	Registry *process.Registry
}

func (t *MobileEnvironment) Name() string { return "mobile_environment" }

func (t *MobileEnvironment) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Report which mobile toolchain binaries are installed and which managed sessions are running."),
	)
}

func (t *MobileEnvironment) Run(ctx context.Context, args map[string]any) (any, error) {
	names := []string{"adb", "emulator", "flutter", "dart", "gradle"}
	if runtime.GOOS == "darwin" {
		names = append(names, "xcrun", "xcodebuild")
	}
	statuses := make([]ToolStatus, 0, len(names))
	for _, name := range names {
		path := t.Executor.CommandPath(ctx, name)
		statuses = append(statuses, ToolStatus{Name: name, Present: path != "", Path: path})
	}
	return map[string]any{
		"platform": runtime.GOOS,
		"tools":    statuses,
		"sessions": t.Registry.List(),
	}, nil
}

// SessionList lists the detached processes currently tracked: emulators,
// flutter sessions, and recordings.
type SessionList struct {
	Registry *process.Registry
}

func (t *SessionList) Name() string { return "session_list" }

func (t *SessionList) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("List the managed background sessions: emulators, flutter runs, and recordings."),
	)
}

func (t *SessionList) Run(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"sessions": t.Registry.List()}, nil
}
