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
)

func stringSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

var (
	adbVerbs = stringSet(
		"devices", "install", "uninstall", "shell", "logcat", "push", "pull", "version",
	)

	// Emulator flags are single-dash. Anything flag-shaped outside this set
	// is refused even when its characters are clean.
	emulatorFlags = stringSet(
		"-avd", "-list-avds", "-no-window", "-no-audio", "-no-boot-anim",
		"-no-snapshot", "-no-snapshot-load", "-no-snapshot-save", "-gpu",
		"-port", "-read-only", "-wipe-data", "-netdelay", "-netspeed",
		"-accel", "-memory", "-cores", "-camera-back", "-camera-front",
		"-verbose",
	)

	flutterVerbs = stringSet(
		"devices", "emulators", "doctor", "run", "build", "test", "pub",
		"clean", "install", "attach", "analyze", "precache", "screenshot",
		"symbolize", "--version",
	)

	flutterFlags = stringSet(
		"--version", "--machine", "--verbose", "-v", "-d", "--device-id",
		"-t", "--target", "--debug", "--profile", "--release", "--flavor",
		"--coverage", "--reporter", "--timeout", "--pub", "--no-pub",
		"--dart-define", "--pid-file", "--no-version-check",
		"--suppress-analytics", "--device-timeout", "--web-port",
	)

	xcrunTools = stringSet(
		"simctl", "xcodebuild", "xctrace", "devicectl",
	)

	simctlVerbs = stringSet(
		"list", "boot", "shutdown", "create", "erase", "install", "uninstall",
		"launch", "terminate", "openurl", "io", "status_bar", "privacy",
		"get_app_container",
	)

	gradleFlags = stringSet(
		"--stacktrace", "--info", "--debug", "--warn", "--quiet", "-q",
		"--console", "--no-daemon", "--daemon", "--offline",
		"--refresh-dependencies", "--build-cache", "--no-build-cache",
		"--parallel", "--max-workers", "-p", "--project-dir", "--continue",
		"-x", "--exclude-task", "--rerun-tasks", "--dry-run", "--version",
	)
)

// Validator enforces a Policy together with the per-command argument rules.
// It is pure: no filesystem, environment, or network access, so the same
// instance is safe for concurrent use.
type Validator struct {
	policy *Policy
}

func NewValidator(policy *Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the policy this validator enforces.
func (v *Validator) Policy() *Policy {
	return v.policy
}

// ValidateCommand decides whether a single spawn is acceptable. The order is
// fixed: allowlist membership, then the denylist over the space-joined
// command line, then the command-specific rule. Arguments are never mutated;
// validation either passes the invocation through untouched or refuses it.
func (v *Validator) ValidateCommand(command string, args []string) error {
	if command == "" || !v.policy.Allows(command) {
		return &CommandRejectedError{Command: command, Reason: ReasonNotAllowed}
	}

	joined := command
	if len(args) > 0 {
		joined += " " + strings.Join(args, " ")
	}
	if dp := matchDeny(joined); dp != nil {
		return &CommandRejectedError{Command: command, Reason: ReasonDangerousPattern, Pattern: dp.name}
	}

	return checkCommandRule(command, args)
}

func checkCommandRule(command string, args []string) error {
	switch command {
	case "adb":
		return checkADB(command, args)
	case "emulator":
		return checkFlags(command, args, emulatorFlags)
	case "flutter", "dart":
		return checkVerbAndFlags(command, args, flutterVerbs, flutterFlags)
	case "xcrun":
		return checkXcrun(command, args)
	case "gradle", "gradlew", "./gradlew":
		return checkGradle(command, args)
	}
	return nil
}

// checkADB vets the adb verb and, for shell passthrough, re-checks the
// inline payload: once against the denylist and once structurally, because
// the payload will be interpreted by a real shell on the device side.
func checkADB(command string, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if _, ok := adbVerbs[args[0]]; !ok {
		return &CommandRejectedError{Command: command, Reason: ReasonVerbNotAllowed, Pattern: args[0]}
	}
	if args[0] != "shell" || len(args) < 2 {
		return nil
	}
	inline := strings.Join(args[1:], " ")
	if dp := matchDeny(inline); dp != nil {
		return &CommandRejectedError{Command: command, Reason: ReasonDangerousPattern, Pattern: dp.name}
	}
	if err := analyzeShellCommand(inline); err != nil {
		return &CommandRejectedError{Command: command, Reason: ReasonShellNotAllowed, Pattern: err.Error()}
	}
	return nil
}

// checkFlags refuses any flag-shaped argument whose name (the part before
// '=') is outside the safe set. Positional values pass through.
func checkFlags(command string, args []string, safe map[string]struct{}) error {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := arg
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if _, ok := safe[name]; !ok {
			return &CommandRejectedError{Command: command, Reason: ReasonFlagNotAllowed, Pattern: arg}
		}
	}
	return nil
}

func checkVerbAndFlags(command string, args []string, verbs, flags map[string]struct{}) error {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		if _, ok := verbs[args[0]]; !ok {
			return &CommandRejectedError{Command: command, Reason: ReasonVerbNotAllowed, Pattern: args[0]}
		}
	}
	return checkFlags(command, args, flags)
}

func checkXcrun(command string, args []string) error {
	if len(args) == 0 {
		return &CommandRejectedError{Command: command, Reason: ReasonVerbNotAllowed}
	}
	if _, ok := xcrunTools[args[0]]; !ok {
		return &CommandRejectedError{Command: command, Reason: ReasonVerbNotAllowed, Pattern: args[0]}
	}
	if args[0] == "simctl" && len(args) > 1 {
		if _, ok := simctlVerbs[args[1]]; !ok {
			return &CommandRejectedError{Command: command, Reason: ReasonVerbNotAllowed, Pattern: args[1]}
		}
	}
	return nil
}

func checkGradle(command string, args []string) error {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		// Project and system properties carry user-defined names.
		if strings.HasPrefix(arg, "-P") || strings.HasPrefix(arg, "-D") {
			continue
		}
		name := arg
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if _, ok := gradleFlags[name]; !ok {
			return &CommandRejectedError{Command: command, Reason: ReasonFlagNotAllowed, Pattern: arg}
		}
	}
	return nil
}
