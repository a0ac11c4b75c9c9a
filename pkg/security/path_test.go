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

import (
	"errors"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantErr    bool
		wantReason string
	}{
		{name: "absolute", path: "/Users/dev/app/build/app.apk"},
		{name: "relative", path: "build/outputs/app-debug.apk"},
		{name: "device path", path: "/sdcard/Download/demo.mp4"},
		{name: "nonexistent is fine", path: "/tmp/does-not-exist-yet.mp4"},
		{name: "traversal", path: "../../../etc/passwd", wantErr: true, wantReason: ReasonPathTraversal},
		{name: "embedded traversal", path: "build/../../secrets", wantErr: true, wantReason: ReasonPathTraversal},
		{name: "etc", path: "/etc/passwd", wantErr: true, wantReason: ReasonProtectedDir},
		{name: "proc", path: "/proc/1/environ", wantErr: true, wantReason: ReasonProtectedDir},
		{name: "sys", path: "/sys/kernel/debug", wantErr: true, wantReason: ReasonProtectedDir},
		{name: "etc prefix but different dir", path: "/etcetera/notes.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidatePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			var rejected *PathRejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("ValidatePath(%q) = %v, want *PathRejectedError", tt.path, err)
			}
			if rejected.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", rejected.Reason, tt.wantReason)
			}
			if rejected.Path != tt.path {
				t.Errorf("Path = %q, want %q", rejected.Path, tt.path)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean relative", in: "build/app.apk", want: "build/app.apk"},
		{name: "leading slash stripped", in: "/sdcard/demo.mp4", want: "sdcard/demo.mp4"},
		{name: "traversal removed", in: "a/../b", want: "a/b"},
		{name: "double slash collapsed", in: "a//b///c", want: "a/b/c"},
		{name: "combined", in: "/a//b/../c", want: "a/b/c"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePath(tt.in); got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
