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
	"errors"

	"github.com/spf13/cobra"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/diff"
)

type DiffOptions struct {
	Old, New string
	ExitCode bool
}

func NewDiffCommand(cli *CLI) *cobra.Command {
	var opts DiffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two databases",
		Long: Highlight("specdb diff <old> <new>") + "\n\n" +
			"Show the structural difference between two saved databases.\n\n" +
			"Services, resources and type definitions are matched by name and\n" +
			"types are compared by shape, so rebuilding the same sources in a\n" +
			"different order produces no differences.\n",
		Args: ExactArgsWithUsage(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Old, opts.New = args[0], args[1]
			return RunDiff(cli, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ExitCode, "exit-code", false, "Exit non-zero when the databases differ")
	return cmd
}

func RunDiff(cli *CLI, opts DiffOptions) error {
	oldDB, err := loadDatabase(opts.Old)
	if err != nil {
		return err
	}
	newDB, err := loadDatabase(opts.New)
	if err != nil {
		return err
	}

	d := diff.Compare(oldDB, newDB)
	cli.Logger().V(1).Info("compared databases", "old", opts.Old, "new", opts.New, "empty", d.Empty())
	if err := view.NewDiffView(cli.Viewer).Render(view.DiffResult{Old: opts.Old, New: opts.New, Diff: d}); err != nil {
		return err
	}
	if opts.ExitCode && !d.Empty() {
		return errors.New("")
	}
	return nil
}
