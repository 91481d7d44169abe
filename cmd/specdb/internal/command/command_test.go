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

package command_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/command"
	"github.com/cdklabs/awscdk-service-spec-sub000/cmd/specdb/internal/view"
)

func TestNewRootCommand(t *testing.T) {
	cmd := command.NewRootCommand()

	assert.Equal(t, "specdb", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.CompletionOptions.DisableDefaultCmd)

	flag := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, flag, cmd.PersistentFlags().ShorthandLookup("o"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestAddCommands(t *testing.T) {
	cli := command.NewCLI(view.ViewHuman, &bytes.Buffer{}, &bytes.Buffer{}, view.LogLevelSilent)
	root := command.NewRootCommand()
	command.AddCommands(root, cli)

	for _, name := range []string{"build", "diff", "query", "version"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.Len(t, root.Commands(), 4)
}

type app struct {
	out, logs bytes.Buffer
}

func (a *app) run(t *testing.T, args ...string) error {
	t.Helper()
	a.out.Reset()
	a.logs.Reset()
	cli := command.NewCLI(view.ViewHuman, &a.out, &a.logs, view.LogLevelSilent)
	root := command.NewApp(cli)
	root.SetArgs(args)
	root.SetOut(&a.out)
	root.SetErr(&a.logs)
	return root.Execute()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeProject(t *testing.T, dir, sizeType string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "registry", "bucket.json"), `{
		"typeName": "AWS::S3::Bucket",
		"properties": {
			"BucketName": {"type": "string"},
			"Size": {"type": "`+sizeType+`"},
			"Tags": {"type": "array", "items": {"$ref": "#/definitions/Tag"}}
		},
		"definitions": {
			"Tag": {"type": "object", "properties": {"Key": {"type": "string"}, "Value": {"type": "string"}}}
		}
	}`)
	writeFile(t, filepath.Join(dir, "spec.json"), `{
		"ResourceTypes": {
			"AWS::SQS::Queue": {"Properties": {"DelaySeconds": {"PrimitiveType": "Integer"}}}
		}
	}`)
	manifest := filepath.Join(dir, "build.hcl")
	writeFile(t, manifest, `
output = "out/db.json"
source "registry" { path = "registry" }
source "legacy" { path = "spec.json" }
`)
	return manifest
}

func TestBuildQueryDiff(t *testing.T) {
	color.NoColor = true
	a := &app{}

	oldDir, newDir := t.TempDir(), t.TempDir()
	require.NoError(t, a.run(t, "build", "-f", writeProject(t, oldDir, "string")))
	assert.Contains(t, a.out.String(), "Built!")
	assert.Contains(t, a.out.String(), "2 services, 2 resources")

	metrics := filepath.Join(newDir, "build.prom")
	require.NoError(t, a.run(t, "build", "-f", writeProject(t, newDir, "integer"), "--metrics-file", metrics))
	assert.FileExists(t, metrics)

	oldDB := filepath.Join(oldDir, "out", "db.json")
	newDB := filepath.Join(newDir, "out", "db.json")

	t.Run("query", func(t *testing.T) {
		require.NoError(t, a.run(t, "query", "-d", oldDB, "resource.tagged"))
		assert.Contains(t, a.out.String(), "AWS::S3::Bucket")
		assert.NotContains(t, a.out.String(), "AWS::SQS::Queue")
	})

	t.Run("query json", func(t *testing.T) {
		require.NoError(t, a.run(t, "query", "-o", "json", "-d", oldDB, `resource.service == "aws-sqs"`))
		var doc struct {
			Resources []map[string]any `json:"resources"`
		}
		require.NoError(t, json.Unmarshal(a.out.Bytes(), &doc))
		require.Len(t, doc.Resources, 1)
		assert.Equal(t, "AWS::SQS::Queue", doc.Resources[0]["cloudFormationType"])
	})

	t.Run("query rejects bad expression", func(t *testing.T) {
		assert.Error(t, a.run(t, "query", "-d", oldDB, "resource.name ==="))
	})

	t.Run("diff identical", func(t *testing.T) {
		require.NoError(t, a.run(t, "diff", "--exit-code", oldDB, oldDB))
		assert.Contains(t, a.out.String(), "no differences found")
	})

	t.Run("diff changed", func(t *testing.T) {
		err := a.run(t, "diff", "--exit-code", oldDB, newDB)
		require.Error(t, err)
		assert.Empty(t, err.Error())
		assert.Contains(t, a.out.String(), "~ property Size")
		assert.Contains(t, a.out.String(), "~ type: string -> integer")
	})

	t.Run("diff yaml", func(t *testing.T) {
		require.NoError(t, a.run(t, "diff", "-o", "yaml", oldDB, newDB))
		assert.Contains(t, a.out.String(), "type: diff")
		assert.Contains(t, a.out.String(), "- AWS::S3::Bucket")
	})
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()
	a := &app{}

	noOutput := filepath.Join(dir, "no-output.hcl")
	writeFile(t, noOutput, `source "legacy" { path = "spec.json" }`)
	assert.ErrorContains(t, a.run(t, "build", "-f", noOutput), "no output path")

	assert.Error(t, a.run(t, "build"))
	assert.Error(t, a.run(t, "build", "-f", filepath.Join(dir, "missing.hcl")))
	assert.ErrorContains(t, a.run(t, "-o", "xml", "version"), "unknown output format")
}

func TestVersion(t *testing.T) {
	a := &app{}
	require.NoError(t, a.run(t, "version"))
	assert.Contains(t, a.out.String(), "specdb version")
}
