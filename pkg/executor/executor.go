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

// Package executor runs validated toolchain commands. It is the single
// enforcement point: every spawn, synchronous or detached, passes through
// the security validator before it reaches the OS, and no spawn ever goes
// through a shell.
package executor

import (
	"context"
	"fmt"
	"time"
)

// Executor defines the interface for running toolchain commands.
type Executor interface {
	// Execute runs a command to completion and returns the captured result.
	// A non-zero exit code is a normal result, not an error.
	Execute(ctx context.Context, command string, args []string, opts Options) (*Result, error)

	// ExecuteStream runs a command and emits output chunks as they arrive.
	// The channel is closed after a final event carrying the Result.
	ExecuteStream(ctx context.Context, command string, args []string, opts Options) <-chan StreamEvent

	// Launch starts a detached long-running process and returns immediately.
	Launch(ctx context.Context, command string, args []string, opts Options) (*Handle, error)

	// CheckCommand reports whether name resolves on PATH.
	CheckCommand(ctx context.Context, name string) bool

	// CommandPath returns the resolved path of name, or "" when absent.
	CommandPath(ctx context.Context, name string) string
}

// Options carries the per-invocation knobs. The zero value means: current
// directory, policy-default timeout and output cap, inherited environment.
type Options struct {
	// Cwd is the working directory. Validated when set.
	Cwd string

	// Timeout bounds the execution; <= 0 uses the policy default.
	Timeout time.Duration

	// MaxOutputBytes caps each captured stream; <= 0 uses the policy default.
	MaxOutputBytes int64

	// Env entries are appended over the inherited environment.
	Env map[string]string
}

// Result is the outcome of a completed execution. It is always fully
// populated: stdout and stderr hold whatever was captured up to the cap,
// and the duration is recorded on every path.
type Result struct {
	Command    string `json:"command,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Truncated  bool   `json:"truncated,omitempty"`
}

func (r *Result) String() string {
	return fmt.Sprintf("Command: %q\nStdout: %q\nStderr: %q\nExitCode: %d\nDurationMs: %d\nTruncated: %v", r.Command, r.Stdout, r.Stderr, r.ExitCode, r.DurationMs, r.Truncated)
}

// StreamEventType discriminates streamed events.
type StreamEventType string

const (
	StreamStdout StreamEventType = "stdout"
	StreamStderr StreamEventType = "stderr"
	StreamResult StreamEventType = "result"
)

// StreamEvent is one chunk of streamed execution. Data is set for output
// events; Result is set exactly once, on the final event.
type StreamEvent struct {
	Type   StreamEventType `json:"type"`
	Data   string          `json:"data,omitempty"`
	Result *Result         `json:"result,omitempty"`
}

// TimeoutError reports an execution cut off by its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s", e.Timeout)
}

// SpawnError reports a process that could not run to completion: the binary
// was missing, permission was denied, or the process was killed by a signal.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
