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

package tools

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

// Gradle task names are segments joined by colons, nothing more. The
// first character must not be a dash so a flag cannot pose as a task.
var gradleTaskPattern = regexp.MustCompile(`^[A-Za-z0-9:][A-Za-z0-9:_-]*$`)

// GradleBuild runs a gradle task in an Android project, preferring the
// project's own wrapper when one is present.
type GradleBuild struct {
	Executor executor.Executor
}

func (t *GradleBuild) Name() string { return "gradle_build" }

func (t *GradleBuild) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Run a gradle task in an Android project. Uses ./gradlew when the project has one."),
		mcp.WithString("project_dir", mcp.Required(), mcp.Description("Android project directory.")),
		mcp.WithString("task", mcp.Description("Gradle task, e.g. assembleDebug or :app:testDebugUnitTest. Defaults to assembleDebug.")),
		mcp.WithBoolean("stacktrace", mcp.Description("Print stacktraces for failures.")),
		mcp.WithBoolean("offline", mcp.Description("Build without network access.")),
	)
}

func (t *GradleBuild) Run(ctx context.Context, args map[string]any) (any, error) {
	projectDir, err := requireString(args, "project_dir")
	if err != nil {
		return nil, err
	}
	if err := security.ValidatePath(projectDir); err != nil {
		return nil, err
	}
	task := optionalString(args, "task", "assembleDebug")
	if !gradleTaskPattern.MatchString(task) {
		return nil, &ArgError{Name: "task", Reason: "must be a plain task name like assembleDebug or :app:test"}
	}

	bin := "gradle"
	if _, err := os.Stat(filepath.Join(projectDir, "gradlew")); err == nil {
		bin = "./gradlew"
	}
	argv := []string{task, "--console=plain"}
	if optionalBool(args, "stacktrace", false) {
		argv = append(argv, "--stacktrace")
	}
	if optionalBool(args, "offline", false) {
		argv = append(argv, "--offline")
	}

	// Builds are long; stream so output keeps flowing into the capped
	// buffers instead of backing up the pipes, then report the final
	// result in one piece.
	var result *executor.Result
	for ev := range t.Executor.ExecuteStream(ctx, bin, argv, executor.Options{
		Cwd:     projectDir,
		Timeout: buildTimeout,
	}) {
		if ev.Type == executor.StreamResult {
			result = ev.Result
		}
	}
	if result == nil {
		// The stream closed early: the context was cancelled mid-build.
		return nil, ctx.Err()
	}
	return result, nil
}
