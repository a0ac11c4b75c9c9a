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

// Package mcp exposes the tool handlers over a Model Context Protocol
// stdio server. Every result, success or failure, is delivered as the
// uniform response envelope; handler errors become error codes, never
// protocol-level failures.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"k8s.io/klog/v2"

	"github.com/mobiledev/mobile-ai/pkg/api"
	"github.com/mobiledev/mobile-ai/pkg/executor"
	"github.com/mobiledev/mobile-ai/pkg/process"
	"github.com/mobiledev/mobile-ai/pkg/security"
	"github.com/mobiledev/mobile-ai/pkg/tools"
)

const serverName = "mobile-ai"

// Server wires the tool set onto an MCP server over stdio.
type Server struct {
	mcp *server.MCPServer
}

// Toolset assembles the tool handlers for this host. The iOS simulator
// tools are only registered on darwin; everything else is portable.
func Toolset(exec executor.Executor, registry *process.Registry) []tools.Tool {
	ts := []tools.Tool{
		&tools.MobileEnvironment{Executor: exec, Registry: registry},
		&tools.SessionList{Registry: registry},
		&tools.AndroidListDevices{Executor: exec},
		&tools.AndroidInstallApp{Executor: exec},
		&tools.AndroidShell{Executor: exec},
		&tools.AndroidLogcat{Executor: exec},
		&tools.AndroidRecordScreen{Executor: exec, Registry: registry},
		&tools.AndroidStopRecording{Registry: registry},
		&tools.EmulatorListAVDs{Executor: exec},
		&tools.EmulatorBoot{Executor: exec, Registry: registry},
		&tools.EmulatorStop{Registry: registry},
		&tools.FlutterListDevices{Executor: exec},
		&tools.FlutterStartSession{Executor: exec, Registry: registry},
		&tools.FlutterHotReload{Registry: registry},
		&tools.FlutterStopSession{Registry: registry},
		&tools.GradleBuild{Executor: exec},
	}
	if runtime.GOOS == "darwin" {
		ts = append(ts,
			&tools.IOSListSimulators{Executor: exec},
			&tools.IOSBootSimulator{Executor: exec},
			&tools.IOSShutdownSimulator{Executor: exec},
			&tools.IOSRecordVideo{Executor: exec, Registry: registry},
			&tools.IOSStopRecording{Registry: registry},
		)
	}
	return ts
}

// NewServer builds the MCP server and registers the given tools on it.
func NewServer(version string, toolset []tools.Tool) *Server {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, t := range toolset {
		s.AddTool(t.Definition(), toolHandler(t))
		klog.V(2).Infof("registered tool %s", t.Name())
	}
	return &Server{mcp: s}
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// toolHandler adapts one tool to the mcp-go handler signature. Failures are
// soft: the envelope carries the code and message, and the result is marked
// as an error for the client.
func toolHandler(t tools.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		start := time.Now()
		data, err := t.Run(ctx, request.GetArguments())
		resp := envelope(data, err)
		elapsed := time.Since(start).Round(time.Millisecond)
		if resp.Success {
			klog.V(2).Infof("tool %s completed in %s", t.Name(), elapsed)
		} else {
			klog.Warningf("tool %s failed in %s: %s: %s", t.Name(), elapsed, resp.Error.Code, resp.Error.Message)
		}

		payload, merr := json.Marshal(resp)
		if merr != nil {
			return nil, fmt.Errorf("encoding %s response: %w", t.Name(), merr)
		}
		if resp.Success {
			return mcpgo.NewToolResultText(string(payload)), nil
		}
		return mcpgo.NewToolResultError(string(payload)), nil
	}
}

func envelope(data any, err error) *api.Response {
	if err == nil {
		return api.OK(data)
	}
	return api.Fail(errorCode(err), err.Error())
}

// errorCode maps an internal error onto its stable envelope code.
func errorCode(err error) string {
	var (
		cmdErr     *security.CommandRejectedError
		pathErr    *security.PathRejectedError
		timeoutErr *executor.TimeoutError
		spawnErr   *executor.SpawnError
		argErr     *tools.ArgError
	)
	switch {
	case errors.As(err, &cmdErr):
		return api.CodeCommandRejected
	case errors.As(err, &pathErr):
		return api.CodePathRejected
	case errors.As(err, &timeoutErr):
		return api.CodeTimeout
	case errors.As(err, &spawnErr):
		return api.CodeSpawnFailed
	case errors.As(err, &argErr):
		return api.CodeInvalidArgs
	case errors.Is(err, process.ErrNotTracked):
		return api.CodeNotTracked
	case errors.Is(err, tools.ErrUnsupported):
		return api.CodeUnsupported
	}
	return api.CodeInternal
}
