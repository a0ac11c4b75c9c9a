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

package security

import "fmt"

// Rejection reasons. Callers that need to branch on why a command or path
// was refused compare against these rather than parsing messages.
const (
	ReasonNotAllowed       = "not allowed"
	ReasonDangerousPattern = "dangerous pattern"
	ReasonVerbNotAllowed   = "verb not allowed"
	ReasonFlagNotAllowed   = "flag not allowed"
	ReasonShellNotAllowed  = "shell command not allowed"
	ReasonPathTraversal    = "path traversal"
	ReasonProtectedDir     = "protected directory"
	ReasonOutsideAllowed   = "outside allowed directories"
)

// CommandRejectedError reports a command invocation refused by the validator.
// Pattern carries the denylist pattern name or the offending token, when one
// exists.
type CommandRejectedError struct {
	Command string
	Reason  string
	Pattern string
}

func (e *CommandRejectedError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("command %q rejected: %s (%s)", e.Command, e.Reason, e.Pattern)
	}
	return fmt.Sprintf("command %q rejected: %s", e.Command, e.Reason)
}

// PathRejectedError reports a filesystem path refused by ValidatePath.
type PathRejectedError struct {
	Path   string
	Reason string
}

func (e *PathRejectedError) Error() string {
	return fmt.Sprintf("path %q rejected: %s", e.Path, e.Reason)
}
