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
	"errors"
	"reflect"
	"testing"

	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

func TestParseDevices(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []Device
	}{
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
		{
			name: "header only",
			out:  "List of devices attached\n\n",
			want: nil,
		},
		{
			name: "daemon restart chatter",
			out: "* daemon not running; starting now at tcp:5037\n" +
				"* daemon started successfully\n" +
				"List of devices attached\n" +
				"emulator-5554\tdevice\n",
			want: []Device{{Serial: "emulator-5554", State: "device"}},
		},
		{
			name: "long listing with detail",
			out: "List of devices attached\n" +
				"emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 device:emu64x\n" +
				"R58M123ABC             unauthorized\n",
			want: []Device{
				{Serial: "emulator-5554", State: "device", Detail: "product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 device:emu64x"},
				{Serial: "R58M123ABC", State: "unauthorized"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDevices(tt.out)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseDevices() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAndroidListDevices(t *testing.T) {
	mock := &mockExecutor{Result: &executor.Result{
		Stdout: "List of devices attached\nemulator-5554\tdevice\n",
	}}
	tool := &AndroidListDevices{Executor: mock}

	res, err := tool.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CapturedCommand != "adb" || !reflect.DeepEqual(mock.CapturedArgs, []string{"devices", "-l"}) {
		t.Errorf("ran %q %v, want adb [devices -l]", mock.CapturedCommand, mock.CapturedArgs)
	}
	devices := res.(map[string]any)["devices"].([]Device)
	if len(devices) != 1 || devices[0].Serial != "emulator-5554" {
		t.Errorf("unexpected devices: %+v", devices)
	}
}

func TestAndroidInstallApp(t *testing.T) {
	mock := &mockExecutor{Result: &executor.Result{Stdout: "Success"}}
	tool := &AndroidInstallApp{Executor: mock}

	res, err := tool.Run(context.Background(), map[string]any{
		"apk_path": "build/app/outputs/flutter-apk/app-debug.apk",
		"serial":   "emulator-5554",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantArgs := []string{"install", "-r", "build/app/outputs/flutter-apk/app-debug.apk"}
	if !reflect.DeepEqual(mock.CapturedArgs, wantArgs) {
		t.Errorf("args = %v, want %v", mock.CapturedArgs, wantArgs)
	}
	if got := mock.CapturedOpts.Env["ANDROID_SERIAL"]; got != "emulator-5554" {
		t.Errorf("ANDROID_SERIAL = %q, want emulator-5554", got)
	}
	if mock.CapturedOpts.Timeout != installTimeout {
		t.Errorf("timeout = %v, want %v", mock.CapturedOpts.Timeout, installTimeout)
	}
	if res.(*executor.Result).Stdout != "Success" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAndroidInstallAppNoReinstall(t *testing.T) {
	mock := &mockExecutor{}
	tool := &AndroidInstallApp{Executor: mock}

	if _, err := tool.Run(context.Background(), map[string]any{
		"apk_path":  "app.apk",
		"reinstall": false,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(mock.CapturedArgs, []string{"install", "app.apk"}) {
		t.Errorf("args = %v, want [install app.apk]", mock.CapturedArgs)
	}
}

func TestAndroidInstallAppRejectsTraversal(t *testing.T) {
	mock := &mockExecutor{}
	tool := &AndroidInstallApp{Executor: mock}

	_, err := tool.Run(context.Background(), map[string]any{"apk_path": "../../secrets.apk"})
	var pathErr *security.PathRejectedError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathRejectedError, got %v", err)
	}
	if mock.Calls != 0 {
		t.Errorf("executor was called %d times for a rejected path", mock.Calls)
	}
}

func TestAndroidInstallAppMissingArg(t *testing.T) {
	tool := &AndroidInstallApp{Executor: &mockExecutor{}}

	_, err := tool.Run(context.Background(), map[string]any{})
	var argErr *ArgError
	if !errors.As(err, &argErr) || argErr.Name != "apk_path" {
		t.Fatalf("expected ArgError for apk_path, got %v", err)
	}
}

func TestAndroidShell(t *testing.T) {
	mock := &mockExecutor{Result: &executor.Result{Stdout: "34\n"}}
	tool := &AndroidShell{Executor: mock}

	res, err := tool.Run(context.Background(), map[string]any{
		"command": "getprop ro.build.version.sdk",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantArgs := []string{"shell", "getprop ro.build.version.sdk"}
	if !reflect.DeepEqual(mock.CapturedArgs, wantArgs) {
		t.Errorf("args = %v, want %v", mock.CapturedArgs, wantArgs)
	}
	if res.(*executor.Result).Stdout != "34\n" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAndroidLogcat(t *testing.T) {
	mock := &mockExecutor{}
	tool := &AndroidLogcat{Executor: mock}

	// JSON numbers arrive as float64.
	_, err := tool.Run(context.Background(), map[string]any{
		"lines":  float64(50),
		"filter": "ActivityManager:I *:S",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantArgs := []string{"logcat", "-d", "-t", "50", "ActivityManager:I", "*:S"}
	if !reflect.DeepEqual(mock.CapturedArgs, wantArgs) {
		t.Errorf("args = %v, want %v", mock.CapturedArgs, wantArgs)
	}
}

func TestAndroidLogcatLineBounds(t *testing.T) {
	tool := &AndroidLogcat{Executor: &mockExecutor{}}

	for _, lines := range []float64{0, -5, 10001} {
		_, err := tool.Run(context.Background(), map[string]any{"lines": lines})
		var argErr *ArgError
		if !errors.As(err, &argErr) || argErr.Name != "lines" {
			t.Errorf("lines=%v: expected ArgError for lines, got %v", lines, err)
		}
	}
}

func TestAndroidRecordScreen(t *testing.T) {
	mock := &mockExecutor{}
	reg := process.NewRegistry()
	tool := &AndroidRecordScreen{Executor: mock, Registry: reg}

	res, err := tool.Run(context.Background(), map[string]any{
		"seconds":     float64(60),
		"remote_path": "/sdcard/demo.mp4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantArgs := []string{"shell", "screenrecord --time-limit 60 /sdcard/demo.mp4"}
	if !reflect.DeepEqual(mock.CapturedArgs, wantArgs) {
		t.Errorf("args = %v, want %v", mock.CapturedArgs, wantArgs)
	}
	payload := res.(map[string]any)
	if payload["key"] != "screenrecord/default" || payload["started"] != true {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if _, ok := reg.Lookup("screenrecord/default"); !ok {
		t.Error("recording session not tracked")
	}

	// A second start for the same device returns the running session
	// instead of spawning another screenrecord.
	res, err = tool.Run(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error on second start: %v", err)
	}
	if res.(map[string]any)["started"] != false {
		t.Error("second start claims to have started a new recording")
	}
	if mock.Calls != 1 {
		t.Errorf("executor launched %d times, want 1", mock.Calls)
	}
}

func TestAndroidRecordScreenSecondsBounds(t *testing.T) {
	tool := &AndroidRecordScreen{Executor: &mockExecutor{}, Registry: process.NewRegistry()}

	for _, seconds := range []float64{0, 181} {
		_, err := tool.Run(context.Background(), map[string]any{"seconds": seconds})
		var argErr *ArgError
		if !errors.As(err, &argErr) || argErr.Name != "seconds" {
			t.Errorf("seconds=%v: expected ArgError for seconds, got %v", seconds, err)
		}
	}
}

func TestAndroidStopRecordingUnknown(t *testing.T) {
	tool := &AndroidStopRecording{Registry: process.NewRegistry()}

	_, err := tool.Run(context.Background(), map[string]any{})
	if !errors.Is(err, process.ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}
}
