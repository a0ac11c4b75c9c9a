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

// Package process tracks long-running sessions (emulator boots, dev
// servers, screen recordings) under stable keys and owns their
// termination. One process per key; the first registration wins.
package process

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/mobiledev/mobile-ai/pkg/executor"
	"k8s.io/klog/v2"
)

// ErrNotTracked is returned for operations on keys the registry does not
// hold.
var ErrNotTracked = errors.New("process not tracked")

// Status is the outcome of a Stop.
type Status string

const (
	StatusStopped        Status = "stopped"
	StatusAlreadyStopped Status = "already_stopped"
)

// Entry describes one tracked process.
type Entry struct {
	Key       string    `json:"key"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

type record struct {
	Entry
	handle *executor.Handle // nil for externally-started pids
}

// Registry is the session table. All access goes through one mutex; Start
// holds it across its check-and-spawn so a key can never be spawned twice.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*record
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*record)}
}

// Track registers an externally-started pid under key. When the key is
// taken the existing pid is returned and nothing is overwritten.
func (r *Registry) Track(key string, pid int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[key]; ok {
		return existing.PID, false
	}
	r.entries[key] = &record{Entry: Entry{Key: key, PID: pid, StartedAt: time.Now()}}
	return pid, true
}

// Untrack removes key. Removing an absent key is a no-op.
func (r *Registry) Untrack(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Start runs launch under the registry lock so a concurrent Start on the
// same key cannot double-spawn. When the key is already held the existing
// entry is returned with started=false and launch is never called. launch
// must only start the process, never wait on it.
func (r *Registry) Start(key string, launch func() (*executor.Handle, error)) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[key]; ok {
		return existing.Entry, false, nil
	}
	h, err := launch()
	if err != nil {
		return Entry{}, false, err
	}
	rec := &record{
		Entry:  Entry{Key: key, PID: h.PID, StartedAt: time.Now()},
		handle: h,
	}
	r.entries[key] = rec
	go r.reap(key, h)
	return rec.Entry, true, nil
}

// reap releases key once its process exits, so natural deaths do not leave
// stale entries behind. The handle comparison keeps a reused key safe.
func (r *Registry) reap(key string, h *executor.Handle) {
	<-h.Done()
	r.mu.Lock()
	if rec, ok := r.entries[key]; ok && rec.handle == h {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	klog.V(2).Infof("session %q (pid %d) exited: %v", key, h.PID, h.ExitErr())
}

// Stop signals the tracked process and releases the key. A process that is
// already gone counts as success with StatusAlreadyStopped; the key is
// released in both outcomes. A nil sig defaults to SIGTERM.
func (r *Registry) Stop(key string, sig os.Signal) (Status, error) {
	if sig == nil {
		sig = syscall.SIGTERM
	}
	r.mu.Lock()
	rec, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	if !ok {
		return "", ErrNotTracked
	}

	err := signalRecord(rec, sig)
	switch {
	case err == nil:
		klog.V(2).Infof("stopped session %q (pid %d) with %v", key, rec.PID, sig)
		return StatusStopped, nil
	case isGone(err):
		return StatusAlreadyStopped, nil
	default:
		return "", fmt.Errorf("signaling pid %d: %w", rec.PID, err)
	}
}

// Signal delivers sig without releasing the key; hot reload and similar
// nudges use this. A process that turns out to be gone is cleaned up and
// reported as ErrNotTracked.
func (r *Registry) Signal(key string, sig os.Signal) error {
	r.mu.Lock()
	rec, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return ErrNotTracked
	}
	err := signalRecord(rec, sig)
	if isGone(err) {
		r.Untrack(key)
		return ErrNotTracked
	}
	return err
}

// Lookup returns the entry for key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	return rec.Entry, true
}

// List returns a point-in-time snapshot sorted by key. The slice is
// detached: later registry changes never show through it.
func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, rec := range r.entries {
		out = append(out, rec.Entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len reports how many sessions are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func signalRecord(rec *record, sig os.Signal) error {
	if rec.handle != nil {
		return rec.handle.Signal(sig)
	}
	proc, err := os.FindProcess(rec.PID)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

// isGone reports whether err means the process had already exited.
func isGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}
