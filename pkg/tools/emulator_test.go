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
)

func TestEmulatorListAVDs(t *testing.T) {
	mock := &mockExecutor{Result: &executor.Result{
		Stdout: "INFO    | Storing crashdata in: /tmp/android-crash\n" +
			"Pixel_8_API_34\n" +
			"Medium_Phone_API_35\n" +
			"\n",
	}}
	tool := &EmulatorListAVDs{Executor: mock}

	res, err := tool.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(mock.CapturedArgs, []string{"-list-avds"}) {
		t.Errorf("args = %v, want [-list-avds]", mock.CapturedArgs)
	}
	avds := res.(map[string]any)["avds"].([]string)
	want := []string{"Pixel_8_API_34", "Medium_Phone_API_35"}
	if !reflect.DeepEqual(avds, want) {
		t.Errorf("avds = %v, want %v", avds, want)
	}
}

func TestEmulatorBootDefaultsHeadless(t *testing.T) {
	mock := &mockExecutor{}
	reg := process.NewRegistry()
	tool := &EmulatorBoot{Executor: mock, Registry: reg}

	res, err := tool.Run(context.Background(), map[string]any{"avd": "Pixel_8_API_34"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"-avd", "Pixel_8_API_34", "-no-window", "-no-audio", "-no-boot-anim"}
	if mock.CapturedCommand != "emulator" || !reflect.DeepEqual(mock.CapturedArgs, want) {
		t.Errorf("ran %q %v, want emulator %v", mock.CapturedCommand, mock.CapturedArgs, want)
	}
	payload := res.(map[string]any)
	if payload["started"] != true || payload["pid"] != 4242 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if _, ok := reg.Lookup("emulator/Pixel_8_API_34"); !ok {
		t.Error("emulator session not tracked")
	}
}

func TestEmulatorBootOptions(t *testing.T) {
	mock := &mockExecutor{}
	tool := &EmulatorBoot{Executor: mock, Registry: process.NewRegistry()}

	_, err := tool.Run(context.Background(), map[string]any{
		"avd":    "Pixel_8_API_34",
		"window": true,
		"cold":   true,
		"wipe":   true,
		"gpu":    "swiftshader_indirect",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"-avd", "Pixel_8_API_34", "-no-snapshot-load", "-wipe-data", "-gpu", "swiftshader_indirect"}
	if !reflect.DeepEqual(mock.CapturedArgs, want) {
		t.Errorf("args = %v, want %v", mock.CapturedArgs, want)
	}
}

func TestEmulatorBootExistingSession(t *testing.T) {
	mock := &mockExecutor{}
	tool := &EmulatorBoot{Executor: mock, Registry: process.NewRegistry()}

	args := map[string]any{"avd": "Pixel_8_API_34"}
	if _, err := tool.Run(context.Background(), args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := tool.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error on second boot: %v", err)
	}
	if res.(map[string]any)["started"] != false {
		t.Error("second boot claims to have started a new emulator")
	}
	if mock.Calls != 1 {
		t.Errorf("executor launched %d times, want 1", mock.Calls)
	}
}

func TestEmulatorBootMissingAVD(t *testing.T) {
	tool := &EmulatorBoot{Executor: &mockExecutor{}, Registry: process.NewRegistry()}

	_, err := tool.Run(context.Background(), map[string]any{})
	var argErr *ArgError
	if !errors.As(err, &argErr) || argErr.Name != "avd" {
		t.Fatalf("expected ArgError for avd, got %v", err)
	}
}

func TestEmulatorStopUnknown(t *testing.T) {
	tool := &EmulatorStop{Registry: process.NewRegistry()}

	_, err := tool.Run(context.Background(), map[string]any{"avd": "Pixel_8_API_34"})
	if !errors.Is(err, process.ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}
}
