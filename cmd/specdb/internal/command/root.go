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
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
)

// LogEnv names the environment variable selecting the log level.
const LogEnv = "SPECDB_LOG"

type globalOptions struct {
	output string
	debug  bool
}

func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use: "specdb",
		Short: Highlight("specdb [global options] <subcommand> [args]") + "\n" +
			"Build and compare CloudFormation service specification databases",
		Long: Highlight("Usage: specdb [global options] <subcommand> [args]\n") + "\n" +
			"specdb merges CloudFormation registry schemas and legacy resource\n" +
			"specifications into a single database of services, resources and\n" +
			"type definitions. Databases can be queried with CEL and compared\n" +
			"structurally.\n\n",
		Version:       version.GetVersionInfo().GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output format. One of: (json | yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Set log level to debug")
	return cmd, opts
}

func setCobraUsageTemplate(root *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := root.UsageTemplate()
	usageTemplate = strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Additional Commands:`, `{{StyleHeading "Additional Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(usageTemplate)
	root.SetUsageTemplate(usageTemplate)
}

// NewApp returns the root command with every subcommand attached, writing
// rendered output to cli.Stream.
func NewApp(cli *CLI) *cobra.Command {
	root, opts := newRootCommand()
	setCobraUsageTemplate(root)
	root.SetVersionTemplate("{{.Version}}\n")
	AddCommands(root, cli)

	// Configure viewer after flags are parsed by Cobra.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		viewType, err := view.ParseOutputFormat(opts.output)
		if err != nil {
			return err
		}
		logLevel := view.ParseLogLevel(os.Getenv(LogEnv))
		if opts.debug {
			logLevel = view.LogLevelDebug
		}
		cli.Configure(viewType, logLevel)
		return nil
	}
	return root
}

func Execute() {
	// Disable color output if NO_COLOR is set in the environment
	_, noColor := os.LookupEnv("NO_COLOR")
	color.NoColor = noColor

	cli := NewCLI(view.ViewHuman, os.Stdout, os.Stderr, view.LogLevelSilent)
	root := NewApp(cli)

	if err := root.Execute(); err != nil {
		cli.Logs.PrintError(err)
		os.Exit(1)
	}
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewVersionCommand(cli),
		NewBuildCommand(cli),
		NewDiffCommand(cli),
		NewQueryCommand(cli),
	)
}
