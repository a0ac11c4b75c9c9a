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
	"runtime"
	"strings"
	"time"
)

const lookupTimeout = 10 * time.Second

// CheckCommand reports whether name resolves on PATH.
func (e *Local) CheckCommand(ctx context.Context, name string) bool {
	return e.CommandPath(ctx, name) != ""
}

// CommandPath resolves name with the platform locator, run through the
// normal validated execution path so it inherits the same rules as
// everything else. Returns "" when the binary is absent or the lookup
// itself is refused.
func (e *Local) CommandPath(ctx context.Context, name string) string {
	locator := "which"
	if runtime.GOOS == "windows" {
		locator = "where"
	}
	result, err := e.Execute(ctx, locator, []string{name}, Options{Timeout: lookupTimeout})
	if err != nil || result.ExitCode != 0 {
		return ""
	}
	// `where` can print several candidates; the first line wins either way.
	line, _, _ := strings.Cut(strings.TrimSpace(result.Stdout), "\n")
	return strings.TrimSpace(line)
}
