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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
)

// FlutterDevice is one row of `flutter devices --machine`.
type FlutterDevice struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Platform string `json:"targetPlatform"`
	Emulator bool   `json:"emulator"`
}

// FlutterListDevices lists devices flutter can run on.
type FlutterListDevices struct {
	Executor executor.Executor
}

func (t *FlutterListDevices) Name() string { return "flutter_list_devices" }

func (t *FlutterListDevices) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("List the devices and simulators flutter can target."),
	)
}

func (t *FlutterListDevices) Run(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.Executor.Execute(ctx, "flutter", []string{"devices", "--machine"}, executor.Options{Timeout: quickTimeout})
	if err != nil {
		return nil, err
	}
	// The machine output is a JSON array, occasionally preceded by tool
	// chatter on slow first runs.
	out := result.Stdout
	if i := strings.Index(out, "["); i >= 0 {
		out = out[i:]
	}
	var devices []FlutterDevice
	if err := json.Unmarshal([]byte(out), &devices); err != nil {
		return nil, fmt.Errorf("parsing flutter devices output: %w", err)
	}
	return map[string]any{"devices": devices}, nil
}

func sessionKey(id string) string {
	return "flutter/" + id
}

// FlutterStartSession starts `flutter run` as a tracked detached dev
// session and returns its id for hot reload and stop.
type FlutterStartSession struct {
	Executor executor.Executor
	Registry *process.Registry
}

func (t *FlutterStartSession) Name() string { return "flutter_start_session" }

func (t *FlutterStartSession) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Start a flutter run dev session on a device. Returns a session_id for flutter_hot_reload and flutter_stop_session."),
		mcp.WithString("device", mcp.Required(), mcp.Description("Device id from flutter_list_devices.")),
		mcp.WithString("project_dir", mcp.Description("Flutter project directory. Defaults to the current directory.")),
		mcp.WithString("target", mcp.Description("Entrypoint dart file, passed as -t.")),
		mcp.WithString("flavor", mcp.Description("Build flavor.")),
		mcp.WithString("mode", mcp.Description("debug (default), profile, or release.")),
	)
}

func (t *FlutterStartSession) Run(ctx context.Context, args map[string]any) (any, error) {
	device, err := requireString(args, "device")
	if err != nil {
		return nil, err
	}
	argv := []string{"run", "-d", device}
	if target := optionalString(args, "target", ""); target != "" {
		argv = append(argv, "-t", target)
	}
	if flavor := optionalString(args, "flavor", ""); flavor != "" {
		argv = append(argv, "--flavor", flavor)
	}
	switch mode := optionalString(args, "mode", "debug"); mode {
	case "debug":
	case "profile":
		argv = append(argv, "--profile")
	case "release":
		argv = append(argv, "--release")
	default:
		return nil, &ArgError{Name: "mode", Reason: "must be debug, profile, or release"}
	}

	id := uuid.NewString()
	entry, _, err := t.Registry.Start(sessionKey(id), func() (*executor.Handle, error) {
		return t.Executor.Launch(ctx, "flutter", argv, executor.Options{
			Cwd: optionalString(args, "project_dir", ""),
		})
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"session_id": id, "pid": entry.PID, "device": device}, nil
}

// FlutterHotReload nudges a dev session: hot reload by default, full hot
// restart on request.
type FlutterHotReload struct {
	Registry *process.Registry
}

func (t *FlutterHotReload) Name() string { return "flutter_hot_reload" }

func (t *FlutterHotReload) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Hot reload a running flutter session; set restart for a full hot restart."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from flutter_start_session.")),
		mcp.WithBoolean("restart", mcp.Description("Hot restart instead of hot reload.")),
	)
}

func (t *FlutterHotReload) Run(ctx context.Context, args map[string]any) (any, error) {
	id, err := requireString(args, "session_id")
	if err != nil {
		return nil, err
	}
	restart := optionalBool(args, "restart", false)
	sig, err := reloadSignal(restart)
	if err != nil {
		return nil, err
	}
	if err := t.Registry.Signal(sessionKey(id), sig); err != nil {
		return nil, err
	}
	action := "reload"
	if restart {
		action = "restart"
	}
	return map[string]any{"session_id": id, "action": action}, nil
}

// FlutterStopSession terminates a dev session.
type FlutterStopSession struct {
	Registry *process.Registry
}

func (t *FlutterStopSession) Name() string { return "flutter_stop_session" }

func (t *FlutterStopSession) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Stop a flutter session started by flutter_start_session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from flutter_start_session.")),
	)
}

func (t *FlutterStopSession) Run(ctx context.Context, args map[string]any) (any, error) {
	id, err := requireString(args, "session_id")
	if err != nil {
		return nil, err
	}
	status, err := t.Registry.Stop(sessionKey(id), nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"session_id": id, "status": status}, nil
}
