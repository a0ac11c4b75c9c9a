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

	"github.com/mobiledev/mobile-ai/pkg/executor"
)

// mockExecutor implements executor.Executor for testing: canned answers,
// captured invocations, nothing spawned.
type mockExecutor struct {
	Result *executor.Result
	Err    error
	Paths  map[string]string
	PID    int

	Calls           int
	CapturedCommand string
	CapturedArgs    []string
	CapturedOpts    executor.Options
}

func (m *mockExecutor) capture(command string, args []string, opts executor.Options) {
	m.Calls++
	m.CapturedCommand = command
	m.CapturedArgs = args
	m.CapturedOpts = opts
}

func (m *mockExecutor) Execute(ctx context.Context, command string, args []string, opts executor.Options) (*executor.Result, error) {
	m.capture(command, args, opts)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &executor.Result{Command: command}, nil
}

func (m *mockExecutor) ExecuteStream(ctx context.Context, command string, args []string, opts executor.Options) <-chan executor.StreamEvent {
	m.capture(command, args, opts)
	ch := make(chan executor.StreamEvent, 4)
	defer close(ch)
	if m.Err != nil {
		ch <- executor.StreamEvent{Type: executor.StreamStderr, Data: m.Err.Error()}
		ch <- executor.StreamEvent{Type: executor.StreamResult, Result: &executor.Result{ExitCode: 1, Stderr: m.Err.Error()}}
		return ch
	}
	res := m.Result
	if res == nil {
		res = &executor.Result{Command: command}
	}
	if res.Stdout != "" {
		ch <- executor.StreamEvent{Type: executor.StreamStdout, Data: res.Stdout}
	}
	ch <- executor.StreamEvent{Type: executor.StreamResult, Result: res}
	return ch
}

func (m *mockExecutor) Launch(ctx context.Context, command string, args []string, opts executor.Options) (*executor.Handle, error) {
	m.capture(command, args, opts)
	if m.Err != nil {
		return nil, m.Err
	}
	pid := m.PID
	if pid == 0 {
		pid = 4242
	}
	return &executor.Handle{PID: pid}, nil
}

func (m *mockExecutor) CheckCommand(ctx context.Context, name string) bool {
	return m.Paths[name] != ""
}

func (m *mockExecutor) CommandPath(ctx context.Context, name string) string {
	return m.Paths[name]
}
