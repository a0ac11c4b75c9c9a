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

//go:build darwin

package executor

// seatbeltProfile is permissive by default but keeps writes out of the
// system trees. Simulator and toolchain binaries need broad read access,
// so a deny-default profile is not practical here.
const seatbeltProfile = `(version 1) (allow default) (deny file-write* (subpath "/System")) (deny file-write* (subpath "/usr")) (deny file-write* (subpath "/etc"))`

// hardenArgv prefixes the validated argv with the macOS seatbelt wrapper.
func hardenArgv(argv []string) []string {
	return append([]string{"sandbox-exec", "-p", seatbeltProfile}, argv...)
}
