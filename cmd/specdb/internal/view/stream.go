// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

package view

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"sigs.k8s.io/release-utils/version"
)

var errorColor = color.New(color.FgRed, color.Bold)

// Stream is one of the two specdb outputs: rendered results on stdout or
// logs and errors on stderr.
type Stream struct {
	Writer io.Writer
}

func NewStream(w io.Writer) *Stream {
	return &Stream{Writer: w}
}

func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

func (s *Stream) Printf(format string, args ...any) {
	fmt.Fprintf(s.Writer, format, args...)
}

// PrintError writes err behind an "Error:" marker. Joined errors are
// written one per line, continuation lines indented under the first.
func (s *Stream) PrintError(err error) {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return
	}
	lines := strings.Split(msg, "\n")
	fmt.Fprintln(s.Writer, errorColor.Sprint("Error:"), lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintln(s.Writer, "      ", line)
	}
}

// PrintVersion writes the specdb build information. The commit and build
// date are omitted when the binary was built without ldflags.
func (s *Stream) PrintVersion() {
	info := version.GetVersionInfo()
	fmt.Fprintf(s.Writer, "specdb version %s\n", info.GitVersion)
	if info.GitCommit != "" && info.GitCommit != "unknown" {
		fmt.Fprintf(s.Writer, "commit %s (%s)\n", info.GitCommit, info.BuildDate)
	}
	fmt.Fprintf(s.Writer, "%s %s/%s\n", info.GoVersion, runtime.GOOS, runtime.GOARCH)
}
