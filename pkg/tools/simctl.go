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
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

const simctlBootTimeout = time.Minute

// Simulator is one device from `simctl list devices --json`, flattened.
type Simulator struct {
	Name      string `json:"name"`
	UDID      string `json:"udid"`
	State     string `json:"state"`
	Available bool   `json:"available"`
	Runtime   string `json:"runtime"`
}

// IOSListSimulators lists the iOS simulators known to CoreSimulator.
type IOSListSimulators struct {
	Executor executor.Executor
}

func (t *IOSListSimulators) Name() string { return "ios_list_simulators" }

func (t *IOSListSimulators) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("List iOS simulators with their runtime, UDID, and state."),
	)
}

func (t *IOSListSimulators) Run(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.Executor.Execute(ctx, "xcrun", []string{"simctl", "list", "devices", "--json"}, executor.Options{Timeout: quickTimeout})
	if err != nil {
		return nil, err
	}
	sims, err := parseSimulators(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("parsing simctl output: %w", err)
	}
	return map[string]any{"simulators": sims}, nil
}

func parseSimulators(out string) ([]Simulator, error) {
	var payload struct {
		Devices map[string][]struct {
			Name        string `json:"name"`
			UDID        string `json:"udid"`
			State       string `json:"state"`
			IsAvailable bool   `json:"isAvailable"`
		} `json:"devices"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, err
	}
	var sims []Simulator
	for rt, devices := range payload.Devices {
		name := strings.TrimPrefix(rt, "com.apple.CoreSimulator.SimRuntime.")
		for _, d := range devices {
			sims = append(sims, Simulator{
				Name:      d.Name,
				UDID:      d.UDID,
				State:     d.State,
				Available: d.IsAvailable,
				Runtime:   name,
			})
		}
	}
	sort.Slice(sims, func(i, j int) bool {
		if sims[i].Runtime != sims[j].Runtime {
			return sims[i].Runtime < sims[j].Runtime
		}
		return sims[i].Name < sims[j].Name
	})
	return sims, nil
}

// IOSBootSimulator boots a simulator by UDID.
type IOSBootSimulator struct {
	Executor executor.Executor
}

func (t *IOSBootSimulator) Name() string { return "ios_boot_simulator" }

func (t *IOSBootSimulator) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Boot an iOS simulator by UDID."),
		mcp.WithString("udid", mcp.Required(), mcp.Description("Simulator UDID from ios_list_simulators.")),
	)
}

func (t *IOSBootSimulator) Run(ctx context.Context, args map[string]any) (any, error) {
	udid, err := requireString(args, "udid")
	if err != nil {
		return nil, err
	}
	result, err := t.Executor.Execute(ctx, "xcrun", []string{"simctl", "boot", udid}, executor.Options{Timeout: simctlBootTimeout})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IOSShutdownSimulator shuts a simulator down.
type IOSShutdownSimulator struct {
	Executor executor.Executor
}

func (t *IOSShutdownSimulator) Name() string { return "ios_shutdown_simulator" }

func (t *IOSShutdownSimulator) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Shut down a booted iOS simulator."),
		mcp.WithString("udid", mcp.Required(), mcp.Description("Simulator UDID, or `booted` for the active one.")),
	)
}

func (t *IOSShutdownSimulator) Run(ctx context.Context, args map[string]any) (any, error) {
	udid, err := requireString(args, "udid")
	if err != nil {
		return nil, err
	}
	result, err := t.Executor.Execute(ctx, "xcrun", []string{"simctl", "shutdown", udid}, executor.Options{Timeout: simctlBootTimeout})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func simRecordKey(udid string) string {
	return "simrecord/" + udid
}

// IOSRecordVideo records the simulator screen to a local file as a tracked
// detached session; IOSStopRecording finalizes it.
type IOSRecordVideo struct {
	Executor executor.Executor
	Registry *process.Registry
}

func (t *IOSRecordVideo) Name() string { return "ios_record_video" }

func (t *IOSRecordVideo) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Record the simulator screen to a local video file. Stop with ios_stop_recording."),
		mcp.WithString("udid", mcp.Required(), mcp.Description("Simulator UDID, or `booted` for the active one.")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Local file to write, e.g. demo.mp4.")),
	)
}

func (t *IOSRecordVideo) Run(ctx context.Context, args map[string]any) (any, error) {
	udid, err := requireString(args, "udid")
	if err != nil {
		return nil, err
	}
	output, err := requireString(args, "output_path")
	if err != nil {
		return nil, err
	}
	if err := security.ValidatePath(output); err != nil {
		return nil, err
	}

	entry, started, err := t.Registry.Start(simRecordKey(udid), func() (*executor.Handle, error) {
		return t.Executor.Launch(ctx, "xcrun", []string{"simctl", "io", udid, "recordVideo", "--codec", "h264", output}, executor.Options{})
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"key":         simRecordKey(udid),
		"pid":         entry.PID,
		"started":     started,
		"output_path": output,
	}, nil
}

// IOSStopRecording stops a tracked simulator recording.
type IOSStopRecording struct {
	Registry *process.Registry
}

func (t *IOSStopRecording) Name() string { return "ios_stop_recording" }

func (t *IOSStopRecording) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Stop a recording started by ios_record_video and finalize the file."),
		mcp.WithString("udid", mcp.Required(), mcp.Description("Simulator UDID the recording was started for.")),
	)
}

func (t *IOSStopRecording) Run(ctx context.Context, args map[string]any) (any, error) {
	udid, err := requireString(args, "udid")
	if err != nil {
		return nil, err
	}
	// recordVideo finalizes the container on SIGINT.
	status, err := t.Registry.Stop(simRecordKey(udid), syscall.SIGINT)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": status}, nil
}
