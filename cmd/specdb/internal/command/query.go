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
	"github.com/spf13/cobra"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/query"
)

type QueryOptions struct {
	Database   string
	Expression string
}

func NewQueryCommand(cli *CLI) *cobra.Command {
	var opts QueryOptions

	cmd := &cobra.Command{
		Use:   "query <expression>",
		Short: "List the resources matching a CEL expression",
		Long: Highlight("specdb query -d <database> <expression>") + "\n\n" +
			"Evaluate a CEL expression against every resource of a database and\n" +
			"list those for which it is true. The expression sees one variable,\n" +
			"resource, with the fields cloudFormationType, name, service,\n" +
			"documentation, tagged, stateful, primaryIdentifier, properties and\n" +
			"attributes.\n\n" +
			"Examples:\n" +
			"  # Every resource of the S3 service\n" +
			"  specdb query -d db.json 'resource.service == \"aws-s3\"'\n\n" +
			"  # Resources that are not taggable\n" +
			"  specdb query -d db.json '!resource.tagged'\n",
		Args: ExactArgsWithUsage(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Expression = args[0]
			return RunQuery(cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Database, "database", "d", "", "Path to a saved database")
	_ = cmd.MarkFlagRequired("database")
	return cmd
}

func RunQuery(cli *CLI, opts QueryOptions) error {
	q, err := query.Compile(opts.Expression)
	if err != nil {
		return err
	}
	db, err := loadDatabase(opts.Database)
	if err != nil {
		return err
	}
	matched, err := query.Filter(db, q)
	if err != nil {
		return err
	}
	cli.Logger().V(1).Info("query evaluated", "expression", opts.Expression, "matched", len(matched))
	return view.NewQueryView(cli.Viewer).Render(view.QueryResult{
		Expression: opts.Expression,
		DB:         db,
		Resources:  matched,
	})
}
