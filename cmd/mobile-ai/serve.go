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
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/mobiledev/mobile-ai/pkg/config"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/mcp"
	"github.com/mobiledev/mobile-ai/pkg/process"
	"github.com/mobiledev/mobile-ai/pkg/security"
)

var (
	serveAllowedDirs []string
	serveSandbox     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long: `Serve the mobile toolchain tools over the Model Context Protocol.

The server speaks MCP on stdin/stdout, so this is the command an MCP
client configuration points at. All logging goes to stderr.

Examples:
  mobile-ai serve
  mobile-ai serve --allowed-dir ~/src/myapp --sandbox`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringArrayVar(&serveAllowedDirs, "allowed-dir", nil,
		"Restrict working directories to this tree (repeatable)")
	serveCmd.Flags().BoolVar(&serveSandbox, "sandbox", false,
		"Wrap spawned commands in the platform sandbox where available")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	policy := security.DefaultPolicy()
	if cfg.DefaultTimeoutSeconds > 0 {
		policy.DefaultTimeout = time.Duration(cfg.DefaultTimeoutSeconds) * time.Second
	}
	if cfg.MaxOutputBytes > 0 {
		policy.MaxOutputBytes = cfg.MaxOutputBytes
	}

	allowedDirs := append(cfg.AllowedDirs, serveAllowedDirs...)
	exec := executor.NewLocal(security.NewValidator(policy), executor.LocalConfig{
		AllowedDirs: allowedDirs,
		Harden:      cfg.Sandbox || serveSandbox,
	})
	registry := process.NewRegistry()

	klog.V(1).Infof("mobile-ai %s serving MCP over stdio", version)
	klog.V(2).Infof("allowed commands: %v", policy.AllowedCommands())
	if len(allowedDirs) > 0 {
		klog.V(2).Infof("allowed directories: %v", allowedDirs)
	}

	srv := mcp.NewServer(version, mcp.Toolset(exec, registry))
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
