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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mobiledev/mobile-ai/pkg/config"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

var (
	colorPass  = lipgloss.Color("#81C995") // Green 200
	colorWarn  = lipgloss.Color("#FDD663") // Yellow 200
	colorFail  = lipgloss.Color("#F28B82") // Red 200
	colorMuted = lipgloss.Color("#9AA0A6") // Grey 500

	passText  = lipgloss.NewStyle().Foreground(colorPass).Bold(true)
	warnText  = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	failText  = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	mutedText = lipgloss.NewStyle().Foreground(colorMuted)
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which toolchains this host has",
	Long: `Probe the host for the mobile toolchains the server can drive.

Each probe goes through the same allowlisted execution path the server
uses, so what doctor sees is what an agent would get. Missing toolchains
are warnings; the check fails only when no toolchain is present at all.

Examples:
  mobile-ai doctor
  mobile-ai doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY" or "UNHEALTHY"
	Summary string        `json:"summary"`
}

// doctorBinaries is what gets probed, in display order. The darwin-only
// tools are appended on darwin.
func doctorBinaries() []string {
	names := []string{"adb", "emulator", "flutter", "dart", "gradle"}
	if runtime.GOOS == "darwin" {
		names = append(names, "xcrun", "xcodebuild")
	}
	return names
}

func runDoctor(cmd *cobra.Command, args []string) error {
	exec := executor.NewLocal(security.NewValidator(security.DefaultPolicy()), executor.LocalConfig{})

	checks := []doctorCheck{checkConfig()}
	present := map[string]bool{}
	for _, name := range doctorBinaries() {
		path := exec.CommandPath(cmd.Context(), name)
		present[name] = path != ""
		checks = append(checks, binaryCheck(name, path))
	}
	checks = append(checks, toolchainCheck(present))

	output := computeResult(checks)
	w := cmd.OutOrStdout()

	if doctorJSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	renderDoctorTable(w, output, term.IsTerminal(int(os.Stdout.Fd())))

	if output.Result != "HEALTHY" {
		return fmt.Errorf("doctor failed: no usable toolchain found")
	}
	return nil
}

func checkConfig() doctorCheck {
	path := configPath()
	if path == "" {
		return doctorCheck{Name: "Config", Status: "warn", Detail: "no config location, using defaults"}
	}
	if _, err := config.Load(path); err != nil {
		return doctorCheck{Name: "Config", Status: "fail", Detail: err.Error()}
	}
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{Name: "Config", Status: "pass", Detail: "no config file, using defaults"}
	}
	return doctorCheck{Name: "Config", Status: "pass", Detail: path}
}

func binaryCheck(name, path string) doctorCheck {
	if path == "" {
		return doctorCheck{Name: name, Status: "warn", Detail: "not found on PATH"}
	}
	return doctorCheck{Name: name, Status: "pass", Detail: path}
}

// toolchainCheck is the one required check: the server is useless on a host
// with no toolchain at all.
func toolchainCheck(present map[string]bool) doctorCheck {
	var found []string
	for _, name := range []string{"adb", "flutter", "xcrun"} {
		if present[name] {
			found = append(found, name)
		}
	}
	if len(found) == 0 {
		return doctorCheck{
			Name:     "Toolchains",
			Status:   "fail",
			Detail:   "no Android, Flutter, or iOS toolchain found",
			Required: true,
		}
	}
	return doctorCheck{
		Name:     "Toolchains",
		Status:   "pass",
		Detail:   strings.Join(found, ", ") + " available",
		Required: true,
	}
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "pass":
		return passText
	case "fail":
		return failText
	}
	return warnText
}

// renderDoctorTable writes the check table, styled only when stdout is a
// terminal so piped output stays clean.
func renderDoctorTable(w io.Writer, output doctorOutput, color bool) {
	fmt.Fprintln(w, "mobile-ai doctor")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}

	for _, c := range output.Checks {
		icon := statusIcon(c.Status)
		detail := c.Detail
		if color {
			icon = statusStyle(c.Status).Render(icon)
			detail = mutedText.Render(detail)
		}
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", icon, c.Name, padding, detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Summary)
}

func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

func buildDoctorSummary(passes, fails, warns, total int) string {
	parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
	if warns > 0 {
		w := fmt.Sprintf("%d warning", warns)
		if warns > 1 {
			w += "s"
		}
		parts = append(parts, w)
	}
	if fails > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", fails))
	}
	return strings.Join(parts, ", ")
}

func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)

	result := "HEALTHY"
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			result = "UNHEALTHY"
		}
	}

	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, len(checks)),
	}
}
