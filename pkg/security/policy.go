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

// Package security decides which external commands and filesystem paths the
// server is willing to touch. Every spawn goes through a closed allowlist,
// a regex denylist, and per-command argument rules before it reaches the OS.
package security

import (
	"regexp"
	"sort"
	"time"
)

const (
	// DefaultTimeout bounds a single command execution unless the caller
	// asks for less.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxOutputBytes caps how much of each output stream is kept.
	DefaultMaxOutputBytes = 10 * 1024 * 1024
)

// defaultAllowedCommands is the closed set of binaries the server will spawn.
// There is deliberately no way to extend it at runtime.
var defaultAllowedCommands = []string{
	"adb",
	"emulator",
	"flutter",
	"dart",
	"xcrun",
	"xcodebuild",
	"gradle",
	"gradlew",
	"./gradlew",
	"which",
	"where",
}

// denyPattern pairs a compiled regex with a stable name so rejections can
// say which rule fired.
type denyPattern struct {
	name  string
	regex *regexp.Regexp
}

// denyList is checked against the full joined command line and against the
// payload of any inline shell passthrough. Order matters only for which
// pattern gets reported when several match.
var denyList = []denyPattern{
	{name: "shell metacharacters", regex: regexp.MustCompile("[;&|`$(){}\\[\\]]")},
	{name: "path traversal", regex: regexp.MustCompile(`\.\.`)},
	{name: "system directory", regex: regexp.MustCompile(`/etc/|/proc/|/sys/`)},
	{name: "recursive delete", regex: regexp.MustCompile(`rm\s+-rf`)},
	{name: "privilege escalation", regex: regexp.MustCompile(`\bsudo\b|\bsu\s`)},
	{name: "output redirection", regex: regexp.MustCompile(`>\s*/|>>`)},
}

// matchDeny returns the first denylist pattern matching s, or nil.
func matchDeny(s string) *denyPattern {
	for i := range denyList {
		if denyList[i].regex.MatchString(s) {
			return &denyList[i]
		}
	}
	return nil
}

// Policy carries the execution limits and the allowlist a Validator enforces.
// The zero value is unusable; build one with NewPolicy or DefaultPolicy.
type Policy struct {
	// DefaultTimeout is applied when a caller does not set its own.
	DefaultTimeout time.Duration

	// MaxOutputBytes caps captured stdout and stderr, each.
	MaxOutputBytes int64

	allowed map[string]struct{}
}

// NewPolicy builds a policy allowing exactly the given commands, with the
// default limits.
func NewPolicy(commands ...string) *Policy {
	p := &Policy{
		DefaultTimeout: DefaultTimeout,
		MaxOutputBytes: DefaultMaxOutputBytes,
		allowed:        make(map[string]struct{}, len(commands)),
	}
	for _, c := range commands {
		p.allowed[c] = struct{}{}
	}
	return p
}

// DefaultPolicy returns the production policy covering the mobile toolchains.
func DefaultPolicy() *Policy {
	return NewPolicy(defaultAllowedCommands...)
}

// Allows reports whether command is in the allowlist. It is an exact string
// match; "adb" does not admit "/usr/bin/adb".
func (p *Policy) Allows(command string) bool {
	_, ok := p.allowed[command]
	return ok
}

// AllowedCommands returns the allowlist in sorted order, for diagnostics.
func (p *Policy) AllowedCommands() []string {
	out := make([]string, 0, len(p.allowed))
	for c := range p.allowed {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
