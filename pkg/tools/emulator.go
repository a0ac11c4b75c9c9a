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
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
)

// EmulatorListAVDs lists the configured Android Virtual Devices.
type EmulatorListAVDs struct {
	Executor executor.Executor
}

func (t *EmulatorListAVDs) Name() string { return "emulator_list_avds" }

func (t *EmulatorListAVDs) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("List the Android Virtual Devices available to boot."),
	)
}

func (t *EmulatorListAVDs) Run(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.Executor.Execute(ctx, "emulator", []string{"-list-avds"}, executor.Options{Timeout: quickTimeout})
	if err != nil {
		return nil, err
	}
	avds := []string{}
	for _, line := range strings.Split(result.Stdout, "\n") {
		line = strings.TrimSpace(line)
		// Newer emulators mix INFO chatter into stdout.
		if line == "" || strings.Contains(line, "|") {
			continue
		}
		avds = append(avds, line)
	}
	return map[string]any{"avds": avds}, nil
}

func emulatorKey(avd string) string {
	return "emulator/" + avd
}

// EmulatorBoot boots an AVD as a tracked detached session. Booting an AVD
// that is already tracked returns the existing session instead of a second
// emulator.
type EmulatorBoot struct {
	Executor executor.Executor
	Registry *process.Registry
}

func (t *EmulatorBoot) Name() string { return "emulator_boot" }

func (t *EmulatorBoot) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Boot an Android emulator. Headless by default; the session stays up until emulator_stop."),
		mcp.WithString("avd", mcp.Required(), mcp.Description("AVD name from emulator_list_avds.")),
		mcp.WithBoolean("window", mcp.Description("Show the emulator window. Defaults to false (headless).")),
		mcp.WithBoolean("cold", mcp.Description("Cold boot instead of resuming the snapshot.")),
		mcp.WithBoolean("wipe", mcp.Description("Wipe user data before booting.")),
		mcp.WithString("gpu", mcp.Description("GPU mode, e.g. auto, host, swiftshader_indirect.")),
	)
}

func (t *EmulatorBoot) Run(ctx context.Context, args map[string]any) (any, error) {
	avd, err := requireString(args, "avd")
	if err != nil {
		return nil, err
	}
	argv := []string{"-avd", avd}
	if !optionalBool(args, "window", false) {
		argv = append(argv, "-no-window", "-no-audio", "-no-boot-anim")
	}
	if optionalBool(args, "cold", false) {
		argv = append(argv, "-no-snapshot-load")
	}
	if optionalBool(args, "wipe", false) {
		argv = append(argv, "-wipe-data")
	}
	if gpu := optionalString(args, "gpu", ""); gpu != "" {
		argv = append(argv, "-gpu", gpu)
	}

	entry, started, err := t.Registry.Start(emulatorKey(avd), func() (*executor.Handle, error) {
		return t.Executor.Launch(ctx, "emulator", argv, executor.Options{})
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"avd": avd, "pid": entry.PID, "started": started}, nil
}

// EmulatorStop terminates a tracked emulator session.
type EmulatorStop struct {
	Registry *process.Registry
}

func (t *EmulatorStop) Name() string { return "emulator_stop" }

func (t *EmulatorStop) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Stop an emulator booted by emulator_boot."),
		mcp.WithString("avd", mcp.Required(), mcp.Description("AVD name of the running session.")),
	)
}

func (t *EmulatorStop) Run(ctx context.Context, args map[string]any) (any, error) {
	avd, err := requireString(args, "avd")
	if err != nil {
		return nil, err
	}
	status, err := t.Registry.Stop(emulatorKey(avd), nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"avd": avd, "status": status}, nil
}
