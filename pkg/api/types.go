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

// Package api holds the types shared between the tool handlers and the
// transport layer: the uniform response envelope every tool call produces and
// the stable error codes the handler layer maps internal failures onto.
package api

// Error codes carried in the response envelope. Codes are stable; messages
// are free-form and may change.
const (
	CodeCommandRejected = "COMMAND_REJECTED"
	CodePathRejected    = "PATH_REJECTED"
	CodeTimeout         = "TIMEOUT"
	CodeSpawnFailed     = "SPAWN_FAILED"
	CodeInvalidArgs     = "INVALID_ARGS"
	CodeNotTracked      = "NOT_TRACKED"
	CodeUnsupported     = "UNSUPPORTED"
	CodeInternal        = "INTERNAL"
)

// Response is the uniform envelope returned for every tool invocation.
// Exactly one of Data or Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed tool invocation.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK wraps data in a success envelope.
func OK(data any) *Response {
	return &Response{Success: true, Data: data}
}

// Fail builds a failure envelope with the given code and message.
func Fail(code, message string) *Response {
	return &Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}
