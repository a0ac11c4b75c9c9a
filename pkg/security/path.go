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

import "strings"

// protectedPrefixes are system directories no argument path may point into.
var protectedPrefixes = []string{"/etc/", "/proc/", "/sys/"}

// ValidatePath refuses paths containing a traversal sequence or pointing
// into a protected system directory. The check is purely textual: no symlink
// resolution, no filesystem access, and no existence requirement.
func ValidatePath(path string) error {
	if strings.Contains(path, "..") {
		return &PathRejectedError{Path: path, Reason: ReasonPathTraversal}
	}
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return &PathRejectedError{Path: path, Reason: ReasonProtectedDir}
		}
	}
	return nil
}

// SanitizePath strips traversal sequences, collapses repeated slashes, and
// removes one leading slash. It is a cosmetic cleanup for display and
// relative joining, not a security boundary; callers still ValidatePath.
func SanitizePath(path string) string {
	s := strings.ReplaceAll(path, "..", "")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return strings.TrimPrefix(s, "/")
}
