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
	"strings"
	"testing"
)

func TestAnalyzeShellCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		wantErr string
	}{
		{name: "simple call", cmd: "getprop ro.build.version.sdk"},
		{name: "activity manager", cmd: "am start -n com.example/.MainActivity"},
		{name: "package manager", cmd: "pm list packages"},
		{name: "screenrecord", cmd: "screenrecord --time-limit 30 /sdcard/demo.mp4"},
		{name: "command substitution", cmd: "echo $(id)", wantErr: "command substitution"},
		{name: "backtick substitution", cmd: "echo `id`", wantErr: "command substitution"},
		{name: "process substitution", cmd: "diff <(getprop) state.txt", wantErr: "process substitution"},
		{name: "bare su", cmd: "su", wantErr: "forbidden command"},
		{name: "quoted su", cmd: "'su'", wantErr: "forbidden command"},
		{name: "su by absolute path", cmd: "/system/xbin/su -c id", wantErr: "forbidden command"},
		{name: "denied word in pipeline", cmd: "echo hi | su", wantErr: "forbidden command"},
		{name: "reboot", cmd: "reboot bootloader", wantErr: "forbidden command"},
		{name: "mount", cmd: "mount -o remount,rw /system", wantErr: "forbidden command"},
		{name: "dd", cmd: "dd if=/dev/block/mmcblk0 of=/sdcard/dump", wantErr: "forbidden command"},
		{name: "unterminated quote", cmd: `echo "oops`, wantErr: "unparseable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := analyzeShellCommand(tt.cmd)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("analyzeShellCommand(%q) = %v, want nil", tt.cmd, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("analyzeShellCommand(%q) = nil, want error containing %q", tt.cmd, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLiteralWordExpansionsOpaque(t *testing.T) {
	// A command word built from an expansion cannot be resolved statically;
	// the analyzer leaves those to the denylist regexes instead of guessing.
	if err := analyzeShellCommand("$CMD arg"); err != nil {
		t.Fatalf("analyzeShellCommand($CMD arg) = %v, want nil", err)
	}
}
