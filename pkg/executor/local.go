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

package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mobiledev/mobile-ai/pkg/security"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// LocalConfig tunes a Local executor beyond what the policy carries.
type LocalConfig struct {
	// AllowedDirs restricts working directories to these trees when
	// non-empty. Containment is checked on absolute paths.
	AllowedDirs []string

	// Harden wraps spawns in the platform sandbox where one exists.
	Harden bool
}

// Local runs commands directly on the host.
type Local struct {
	validator *security.Validator
	cfg       LocalConfig
}

// NewLocal creates an executor that enforces the given validator on every
// spawn.
func NewLocal(validator *security.Validator, cfg LocalConfig) *Local {
	return &Local{validator: validator, cfg: cfg}
}

// Execute runs a command to completion. Validation always happens first;
// a rejection means nothing was spawned.
func (e *Local) Execute(ctx context.Context, command string, args []string, opts Options) (*Result, error) {
	if err := e.validate(command, args, opts); err != nil {
		return nil, err
	}
	result, err := e.run(ctx, command, args, opts, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteStream runs a command through the same validation and execution
// core as Execute, emitting output chunks as they arrive. Failures of any
// kind, validation included, are folded into a stderr event and a final
// result with exit code 1; there is no separate error channel.
func (e *Local) ExecuteStream(ctx context.Context, command string, args []string, opts Options) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)
		send := func(ev StreamEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		if err := e.validate(command, args, opts); err != nil {
			send(StreamEvent{Type: StreamStderr, Data: err.Error() + "\n"})
			send(StreamEvent{Type: StreamResult, Result: &Result{
				Command:  commandLine(command, args),
				Stderr:   err.Error(),
				ExitCode: 1,
			}})
			return
		}
		emit := func(t StreamEventType, data string) {
			send(StreamEvent{Type: t, Data: data})
		}
		result, err := e.run(ctx, command, args, opts, emit)
		if err != nil {
			if result == nil {
				result = &Result{Command: commandLine(command, args)}
			}
			result.ExitCode = 1
			if result.Stderr == "" {
				result.Stderr = err.Error()
			} else {
				result.Stderr += "\n" + err.Error()
			}
			send(StreamEvent{Type: StreamStderr, Data: err.Error() + "\n"})
		}
		send(StreamEvent{Type: StreamResult, Result: result})
	}()
	return events
}

// validate runs the command and working-directory checks shared by every
// spawn path.
func (e *Local) validate(command string, args []string, opts Options) error {
	if err := e.validator.ValidateCommand(command, args); err != nil {
		return err
	}
	if opts.Cwd == "" {
		return nil
	}
	if err := security.ValidatePath(opts.Cwd); err != nil {
		return err
	}
	if len(e.cfg.AllowedDirs) > 0 && !e.cwdAllowed(opts.Cwd) {
		return &security.PathRejectedError{Path: opts.Cwd, Reason: security.ReasonOutsideAllowed}
	}
	return nil
}

func (e *Local) cwdAllowed(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for _, allowed := range e.cfg.AllowedDirs {
		allowedAbs, err := filepath.Abs(allowed)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(allowedAbs, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return true
	}
	return false
}

func (e *Local) limits(opts Options) (time.Duration, int64) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = e.validator.Policy().DefaultTimeout
	}
	maxBytes := opts.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = e.validator.Policy().MaxOutputBytes
	}
	return timeout, maxBytes
}

type emitFunc func(t StreamEventType, data string)

// run is the shared execution core behind Execute and ExecuteStream. It
// assumes validation already happened. On error the returned Result still
// carries whatever output was captured, so the streaming path can fold
// failures into its final event.
func (e *Local) run(ctx context.Context, command string, args []string, opts Options, emit emitFunc) (*Result, error) {
	timeout, maxBytes := e.limits(opts)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := e.buildCmd(runCtx, command, args, opts)
	line := commandLine(command, args)

	stdout := &cappedBuffer{max: maxBytes}
	stderr := &cappedBuffer{max: maxBytes}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	klog.V(2).Infof("executing %q (timeout %s)", line, timeout)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	var g errgroup.Group
	g.Go(func() error { return pump(stdoutPipe, stdout, StreamStdout, emit) })
	g.Go(func() error { return pump(stderrPipe, stderr, StreamStderr, emit) })
	pumpErr := g.Wait()
	waitErr := cmd.Wait()
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// The process exited fine; a grandchild merely held our pipes open.
		waitErr = nil
	}

	result := &Result{
		Command:    line,
		Stdout:     stdout.buf.String(),
		Stderr:     stderr.buf.String(),
		DurationMs: time.Since(start).Milliseconds(),
		Truncated:  stdout.truncated || stderr.truncated,
	}
	if result.Truncated {
		klog.Warningf("output of %q truncated at %d bytes per stream", line, maxBytes)
	}

	// The deadline check comes first: a timed-out process also reports a
	// signal death, and the timeout is the truthful cause.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, &TimeoutError{Timeout: timeout}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				result.ExitCode = code
				klog.V(2).Infof("%q exited with code %d in %dms", line, code, result.DurationMs)
				return result, nil
			}
			// Negative code: killed by a signal.
		}
		return result, &SpawnError{Command: command, Err: waitErr}
	}
	if pumpErr != nil {
		return result, &SpawnError{Command: command, Err: fmt.Errorf("reading output: %w", pumpErr)}
	}
	klog.V(2).Infof("%q exited with code 0 in %dms", line, result.DurationMs)
	return result, nil
}

// buildCmd assembles the exec.Cmd. Hardening wraps the already-validated
// argv in the platform sandbox; the wrapper is trusted infrastructure, not
// caller input, and no shell is introduced.
func (e *Local) buildCmd(ctx context.Context, command string, args []string, opts Options) *exec.Cmd {
	argv := append([]string{command}, args...)
	if e.cfg.Harden {
		argv = hardenArgv(argv)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Cwd
	cmd.Env = mergedEnv(opts.Env)
	// Grandchildren inheriting our pipes must not hold Wait open forever.
	cmd.WaitDelay = 10 * time.Second
	return cmd
}

func pump(r io.Reader, buf *cappedBuffer, t StreamEventType, emit emitFunc) error {
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if emit != nil {
				emit(t, string(chunk[:n]))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// cappedBuffer keeps at most max bytes and remembers whether it dropped any.
// Each instance is written from a single pump goroutine.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - int64(b.buf.Len())
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

// mergedEnv appends extra entries over the inherited environment. Duplicate
// keys resolve to the later entry, so overrides behave as expected.
func mergedEnv(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func commandLine(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
