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
	"context"
	"os"
	"sync"

	"k8s.io/klog/v2"
)

// Handle refers to a detached process started by Launch. An observer
// goroutine reaps the child; Done is closed once it has exited.
type Handle struct {
	PID int

	proc *os.Process
	done chan struct{}

	mu      sync.Mutex
	exitErr error
}

// Done is closed when the process has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// ExitErr returns the Wait error once Done is closed, nil before that or
// on a clean exit.
func (h *Handle) ExitErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// Signal delivers sig to the process.
func (h *Handle) Signal(sig os.Signal) error {
	return h.proc.Signal(sig)
}

// Launch validates and starts a detached long-running process: its own
// process group, output discarded, lifetime independent of ctx. The caller
// owns termination, normally through the process registry. ctx covers only
// the validation and spawn, which never block.
func (e *Local) Launch(ctx context.Context, command string, args []string, opts Options) (*Handle, error) {
	if err := e.validate(command, args, opts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := e.buildCmd(context.Background(), command, args, opts)
	cmd.WaitDelay = 0
	setDetached(cmd)

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	h := &Handle{
		PID:  cmd.Process.Pid,
		proc: cmd.Process,
		done: make(chan struct{}),
	}
	line := commandLine(command, args)
	klog.V(2).Infof("launched %q pid %d", line, h.PID)

	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.exitErr = err
		h.mu.Unlock()
		close(h.done)
		klog.V(2).Infof("detached process %d (%q) exited: %v", h.PID, line, err)
	}()

	return h, nil
}
