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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/build"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/config"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

type BuildOptions struct {
	Manifest       string
	Out            string
	MetricsFile    string
	ShowProblems   bool
	FailOnProblems bool
}

func NewBuildCommand(cli *CLI) *cobra.Command {
	var opts BuildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a database from a manifest",
		Long: Highlight("specdb build -f <manifest>") + "\n\n" +
			"Import every source listed in an HCL manifest, in order, into a new\n" +
			"database and save it.\n\n" +
			"Fields that cannot be converted are reported and skipped. The build\n" +
			"only fails on input it cannot interpret at all.\n\n" +
			"Examples:\n" +
			"  # Build the database named by the manifest's output attribute\n" +
			"  specdb build -f build.hcl\n\n" +
			"  # Build to an explicit path and export build metrics\n" +
			"  specdb build -f build.hcl --out db.json --metrics-file build.prom\n",
		Args: MaxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunBuild(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "file", "f", "", "Path to the build manifest")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Path of the database to write (overrides the manifest output)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write build metrics in the Prometheus text format to this path")
	cmd.Flags().BoolVar(&opts.ShowProblems, "show-problems", false, "List every problem instead of a summary")
	cmd.Flags().BoolVar(&opts.FailOnProblems, "fail-on-problems", false, "Exit non-zero when any problem was reported")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func RunBuild(ctx context.Context, cli *CLI, opts BuildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := config.LoadFile(opts.Manifest)
	if err != nil {
		return err
	}
	out := opts.Out
	if out == "" {
		out = m.Output
	}
	if out == "" {
		return errors.New("no output path: set output in the manifest or pass --out")
	}

	result, err := build.Run(ctx, m, build.Options{Log: cli.Logger()})
	if err != nil {
		return err
	}
	if err := saveDatabase(out, result); err != nil {
		return err
	}
	if opts.MetricsFile != "" {
		if err := result.Metrics.WriteToTextfile(opts.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	err = view.NewBuildView(cli.Viewer).Render(view.BuildResult{
		Output:          out,
		Services:        result.DB.Len(model.KindService),
		Resources:       result.DB.Len(model.KindResource),
		TypeDefinitions: result.DB.Len(model.KindTypeDefinition),
		Imported:        result.Imported,
		Report:          result.Report,
		ShowProblems:    opts.ShowProblems,
	})
	if err != nil {
		return err
	}
	if opts.FailOnProblems && result.Report.Len() > 0 {
		return errors.New("")
	}
	return nil
}

func saveDatabase(path string, result *build.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create database file: %w", err)
	}
	if err := result.DB.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save database: %w", err)
	}
	return f.Close()
}

func loadDatabase(path string) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := model.LoadDatabase(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return db, nil
}
