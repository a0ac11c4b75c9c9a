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

//go:build unix

package tools

import (
	"os"
	"syscall"
)

// reloadSignal maps the hot reload gesture onto the signals the flutter
// tool listens for: SIGUSR1 reloads, SIGUSR2 restarts.
func reloadSignal(restart bool) (os.Signal, error) {
	if restart {
		return syscall.SIGUSR2, nil
	}
	return syscall.SIGUSR1, nil
}
