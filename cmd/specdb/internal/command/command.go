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

package command

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
)

// Unlike a Command which is specific to a single operation,
// CLI holds shared state and is propagated from root to subcommands.
type CLI struct {
	view.Viewer
	*view.Stream
	// Logs receives log lines so they never mix with rendered output.
	Logs *view.Stream
}

// Highlight applies a blue color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

func NewCLI(vt view.ViewType, w, logs io.Writer, logLevel view.LogLevel) *CLI {
	s := view.NewStream(w)
	l := view.NewStream(logs)

	return &CLI{
		Viewer: view.NewViewer(vt, s, l, logLevel),
		Stream: s,
		Logs:   l,
	}
}

// Configure replaces the viewer once flags are known.
func (c *CLI) Configure(vt view.ViewType, logLevel view.LogLevel) {
	c.Viewer = view.NewViewer(vt, c.Stream, c.Logs, logLevel)
}

// ExactArgsWithUsage returns an error if there is not the exact number of args,
// and shows usage information for better user experience.
func ExactArgsWithUsage(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		_ = cmd.Usage()
		if number == 1 {
			return fmt.Errorf("requires exactly 1 argument")
		}
		return fmt.Errorf("requires exactly %d arguments", number)
	}
}

// MaxArgs returns an error if there are more than the max number of args.
func MaxArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= number {
			return nil
		}
		return fmt.Errorf("expected at most %d arguments, got %d", number, len(args))
	}
}
