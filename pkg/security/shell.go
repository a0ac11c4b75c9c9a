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
	"errors"
	"fmt"
	"path"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// deniedShellWords are command names never allowed inside an inline shell
// payload, wherever they sit in a pipeline or list.
var deniedShellWords = stringSet(
	"su", "sudo", "reboot", "mount", "umount", "dd", "mkfs", "setenforce", "svc",
)

// analyzeShellCommand parses an inline shell payload (the trailing arguments
// of an `adb shell` passthrough) and refuses what a flat regex cannot see:
// unparseable input, command or process substitution, and any call whose
// command word resolves to a denied binary. The payload runs under a real
// shell on the device side, so it gets structural scrutiny.
func analyzeShellCommand(cmd string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
	if err != nil {
		return errors.New("unparseable")
	}
	var denied error
	syntax.Walk(file, func(node syntax.Node) bool {
		if denied != nil {
			return false
		}
		switch n := node.(type) {
		case *syntax.CmdSubst:
			denied = errors.New("command substitution")
			return false
		case *syntax.ProcSubst:
			denied = errors.New("process substitution")
			return false
		case *syntax.CallExpr:
			if len(n.Args) == 0 {
				return true
			}
			word := literalWord(n.Args[0])
			if word == "" {
				return true
			}
			if _, bad := deniedShellWords[path.Base(word)]; bad {
				denied = fmt.Errorf("forbidden command %q", word)
				return false
			}
		}
		return true
	})
	return denied
}

// literalWord flattens a word made of plain or quoted literals. Words with
// expansions return "" and are left to the denylist regexes.
func literalWord(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, dq := range p.Parts {
				lit, ok := dq.(*syntax.Lit)
				if !ok {
					return ""
				}
				sb.WriteString(lit.Value)
			}
		default:
			return ""
		}
	}
	return sb.String()
}
