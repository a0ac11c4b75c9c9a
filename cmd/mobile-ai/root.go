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
	goflag "flag"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/mobiledev/mobile-ai/pkg/config"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "0.1.0-dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mobile-ai",
	Short: "MCP server for mobile development toolchains",
	Long: `mobile-ai exposes the Android, iOS, and Flutter toolchains to AI agents
over the Model Context Protocol.

Every command an agent requests is checked against a closed allowlist and
a denylist of dangerous patterns before anything is spawned. There is no
way to widen the allowlist at runtime.

Commands:
  serve    Serve MCP over stdio (point your MCP client here)
  doctor   Check which toolchains this host has
  version  Show version information`,
	SilenceUsage: true,
}

// Execute runs the root command. Errors have already been printed by
// cobra; the caller only needs the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: "+config.DefaultPath()+")")
	bindKlogFlags(rootCmd.PersistentFlags())
}

// bindKlogFlags exposes klog's -v and friends on the cobra flag set so
// verbosity works the same here as in the rest of the logging.
func bindKlogFlags(fs *pflag.FlagSet) {
	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlagSet(klogFlags)
}

// configPath resolves the config file to load: the --config flag when set,
// the conventional location otherwise.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}
