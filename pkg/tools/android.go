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
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

// Device is one row of `adb devices -l`.
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

// AndroidListDevices lists devices and emulators visible to adb.
type AndroidListDevices struct {
	Executor executor.Executor
}

func (t *AndroidListDevices) Name() string { return "android_list_devices" }

func (t *AndroidListDevices) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("List Android devices and emulators visible to adb, with their connection state."),
	)
}

func (t *AndroidListDevices) Run(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.Executor.Execute(ctx, "adb", []string{"devices", "-l"}, executor.Options{Timeout: quickTimeout})
	if err != nil {
		return nil, err
	}
	return map[string]any{"devices": parseDevices(result.Stdout)}, nil
}

func parseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{Serial: fields[0], State: fields[1]}
		if len(fields) > 2 {
			d.Detail = strings.Join(fields[2:], " ")
		}
		devices = append(devices, d)
	}
	return devices
}

// AndroidInstallApp installs an APK with `adb install`.
type AndroidInstallApp struct {
	Executor executor.Executor
}

func (t *AndroidInstallApp) Name() string { return "android_install_app" }

func (t *AndroidInstallApp) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Install an APK on a device or emulator."),
		mcp.WithString("apk_path", mcp.Required(), mcp.Description("Path to the APK file.")),
		mcp.WithString("serial", mcp.Description("Device serial when several are connected.")),
		mcp.WithBoolean("reinstall", mcp.Description("Keep app data across the install (adb install -r). Defaults to true.")),
	)
}

func (t *AndroidInstallApp) Run(ctx context.Context, args map[string]any) (any, error) {
	apk, err := requireString(args, "apk_path")
	if err != nil {
		return nil, err
	}
	if err := security.ValidatePath(apk); err != nil {
		return nil, err
	}
	argv := []string{"install"}
	if optionalBool(args, "reinstall", true) {
		argv = append(argv, "-r")
	}
	argv = append(argv, apk)

	result, err := t.Executor.Execute(ctx, "adb", argv, executor.Options{
		Timeout: installTimeout,
		Env:     serialEnv(optionalString(args, "serial", "")),
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AndroidShell runs a command on the device through `adb shell`. The
// payload gets the full nested validation treatment before anything runs.
type AndroidShell struct {
	Executor executor.Executor
}

func (t *AndroidShell) Name() string { return "android_shell" }

func (t *AndroidShell) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Run a command on the device shell, e.g. `getprop` or `am start`. Destructive commands are refused."),
		mcp.WithString("command", mcp.Required(), mcp.Description("The device-side command to run.")),
		mcp.WithString("serial", mcp.Description("Device serial when several are connected.")),
	)
}

func (t *AndroidShell) Run(ctx context.Context, args map[string]any) (any, error) {
	command, err := requireString(args, "command")
	if err != nil {
		return nil, err
	}
	result, err := t.Executor.Execute(ctx, "adb", []string{"shell", command}, executor.Options{
		Timeout: shellTimeout,
		Env:     serialEnv(optionalString(args, "serial", "")),
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AndroidLogcat takes a bounded snapshot of the device log.
type AndroidLogcat struct {
	Executor executor.Executor
}

func (t *AndroidLogcat) Name() string { return "android_logcat" }

func (t *AndroidLogcat) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Dump the last lines of the device log (non-blocking snapshot)."),
		mcp.WithNumber("lines", mcp.Description("How many trailing lines to fetch. Defaults to 100.")),
		mcp.WithString("filter", mcp.Description("Logcat filterspec such as `ActivityManager:I *:S`.")),
		mcp.WithString("serial", mcp.Description("Device serial when several are connected.")),
	)
}

func (t *AndroidLogcat) Run(ctx context.Context, args map[string]any) (any, error) {
	lines := optionalInt(args, "lines", 100)
	if lines < 1 || lines > 10000 {
		return nil, &ArgError{Name: "lines", Reason: "must be between 1 and 10000"}
	}
	argv := []string{"logcat", "-d", "-t", strconv.Itoa(lines)}
	if filter := optionalString(args, "filter", ""); filter != "" {
		argv = append(argv, strings.Fields(filter)...)
	}
	result, err := t.Executor.Execute(ctx, "adb", argv, executor.Options{
		Timeout: quickTimeout,
		Env:     serialEnv(optionalString(args, "serial", "")),
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func recordKey(serial string) string {
	if serial == "" {
		serial = "default"
	}
	return "screenrecord/" + serial
}

// AndroidRecordScreen starts `screenrecord` on the device as a tracked
// detached session; AndroidStopRecording ends it and finalizes the file.
type AndroidRecordScreen struct {
	Executor executor.Executor
	Registry *process.Registry
}

func (t *AndroidRecordScreen) Name() string { return "android_record_screen" }

func (t *AndroidRecordScreen) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Start recording the device screen to a file on the device. Stop with android_stop_recording, then pull the file."),
		mcp.WithString("serial", mcp.Description("Device serial when several are connected.")),
		mcp.WithNumber("seconds", mcp.Description("Recording limit in seconds, 1-180. Defaults to 180.")),
		mcp.WithString("remote_path", mcp.Description("Where to write the video on the device. Defaults to /sdcard/mobile-ai-recording.mp4.")),
	)
}

func (t *AndroidRecordScreen) Run(ctx context.Context, args map[string]any) (any, error) {
	seconds := optionalInt(args, "seconds", 180)
	if seconds < 1 || seconds > 180 {
		// screenrecord's own hard limit.
		return nil, &ArgError{Name: "seconds", Reason: "must be between 1 and 180"}
	}
	remote := optionalString(args, "remote_path", "/sdcard/mobile-ai-recording.mp4")
	if err := security.ValidatePath(remote); err != nil {
		return nil, err
	}
	serial := optionalString(args, "serial", "")
	payload := fmt.Sprintf("screenrecord --time-limit %d %s", seconds, remote)

	entry, started, err := t.Registry.Start(recordKey(serial), func() (*executor.Handle, error) {
		return t.Executor.Launch(ctx, "adb", []string{"shell", payload}, executor.Options{Env: serialEnv(serial)})
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"key":         recordKey(serial),
		"pid":         entry.PID,
		"started":     started,
		"remote_path": remote,
	}, nil
}

// AndroidStopRecording stops a tracked screen recording.
type AndroidStopRecording struct {
	Registry *process.Registry
}

func (t *AndroidStopRecording) Name() string { return "android_stop_recording" }

func (t *AndroidStopRecording) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Stop a screen recording started by android_record_screen."),
		mcp.WithString("serial", mcp.Description("Device serial the recording was started for.")),
	)
}

func (t *AndroidStopRecording) Run(ctx context.Context, args map[string]any) (any, error) {
	// SIGINT lets the device-side screenrecord finalize the mp4.
	status, err := t.Registry.Stop(recordKey(optionalString(args, "serial", "")), syscall.SIGINT)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": status}, nil
}
