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

package diff

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

func build(t *testing.T, fn func(b *builder.Builder)) *store.Store {
	t.Helper()
	b := builder.New(model.NewDatabase(), logr.Discard())
	fn(b)
	return b.DB()
}

func resource(t *testing.T, b *builder.Builder, typeName string) *builder.ResourceBuilder {
	t.Helper()
	rb, err := b.Resource(typeName)
	require.NoError(t, err)
	return rb
}

// ruleType defines a Rule record in rb's scope and returns a reference to it.
func ruleType(rb *builder.ResourceBuilder, idType model.PropertyType) model.PropertyType {
	tb, _ := rb.TypeDefinition("Rule")
	tb.SetProperty("Id", &model.Property{Type: idType})
	tb.Commit()
	return tb.Ref()
}

func TestCompareIsEmptyForEquivalentStores(t *testing.T) {
	oldDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Rules", &model.Property{Type: model.Array(ruleType(rb, model.String))})
		rb.SetProperty("Mode", &model.Property{Type: model.UnionType{Members: []model.PropertyType{model.String, model.Integer}}})
		rb.Commit()
	})
	newDB := build(t, func(b *builder.Builder) {
		// shift every identifier in this store
		other := resource(t, b, "AWS::SQS::Queue")
		other.TypeDefinition("Unrelated")

		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Mode", &model.Property{Type: model.UnionType{Members: []model.PropertyType{model.Integer, model.String}}})
		rb.SetProperty("Rules", &model.Property{Type: model.Array(ruleType(rb, model.String))})
		rb.Commit()
	})

	d := Compare(oldDB, newDB)
	assert.Empty(t, d.Services.Updated)
	assert.Empty(t, d.Services.Removed)
	assert.Equal(t, []string{"aws-sqs"}, sortedKeys(d.Services.Added))
}

func TestCompareDetectsStructuralChangeBehindRef(t *testing.T) {
	oldDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Rules", &model.Property{Type: model.Array(ruleType(rb, model.String))})
		rb.Commit()
	})
	newDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Rules", &model.Property{Type: model.Array(ruleType(rb, model.Integer))})
		rb.Commit()
	})

	d := Compare(oldDB, newDB)
	require.Contains(t, d.Services.Updated, "aws-s3")
	rd := d.Services.Updated["aws-s3"].Resources.Updated["AWS::S3::Bucket"]
	require.NotNil(t, rd)

	require.Contains(t, rd.Properties.Updated, "Rules")
	assert.NotNil(t, rd.Properties.Updated["Rules"].Type)

	require.Contains(t, rd.TypeDefinitions.Updated, "Rule")
	idDiff := rd.TypeDefinitions.Updated["Rule"].Properties.Updated["Id"]
	require.NotNil(t, idDiff)
	assert.Equal(t, &ScalarDiff[model.PropertyType]{Old: model.String, New: model.Integer}, idDiff.Type)
}

func TestCompareBuckets(t *testing.T) {
	oldDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Name", &model.Property{Type: model.String, Documentation: "old"})
		rb.SetProperty("Gone", &model.Property{Type: model.Boolean})
		rb.SetProperty("Size", &model.Property{Type: model.Integer, PreviousTypes: []model.PropertyType{model.String, model.JSON}})
		rb.SetAttribute("Arn", &model.Property{Type: model.String})
		rb.Commit()
		resource(t, b, "AWS::S3::AccessPoint").Commit()
		resource(t, b, "AWS::EC2::VPC").Commit()
	})
	newDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Name", &model.Property{Type: model.String, Documentation: "new", Required: ptr.To(true)})
		rb.SetProperty("Added", &model.Property{Type: model.Number})
		rb.SetProperty("Size", &model.Property{Type: model.Integer, PreviousTypes: []model.PropertyType{model.String, model.Number}})
		rb.SetAttribute("Arn", &model.Property{Type: model.String})
		rb.Commit()
		rb.Resource().PrimaryIdentifier = []string{"Name"}
		resource(t, b, "AWS::Lambda::Function").Commit()
	})

	d := Compare(oldDB, newDB)
	assert.False(t, d.Empty())
	assert.Equal(t, []string{"aws-lambda"}, sortedKeys(d.Services.Added))
	assert.Equal(t, []string{"aws-ec2"}, sortedKeys(d.Services.Removed))
	require.Equal(t, []string{"aws-s3"}, sortedKeys(d.Services.Updated))

	resources := d.Services.Updated["aws-s3"].Resources
	assert.Equal(t, []string{"AWS::S3::AccessPoint"}, sortedKeys(resources.Removed))
	assert.Empty(t, resources.Added)

	rd := resources.Updated["AWS::S3::Bucket"]
	require.NotNil(t, rd)
	assert.Equal(t, &ScalarDiff[[]string]{Old: nil, New: []string{"Name"}}, rd.PrimaryIdentifier)
	assert.Equal(t, []string{"Added"}, sortedKeys(rd.Properties.Added))
	assert.Equal(t, []string{"Gone"}, sortedKeys(rd.Properties.Removed))
	assert.Equal(t, []string{"Name", "Size"}, sortedKeys(rd.Properties.Updated))
	assert.True(t, rd.Attributes.Empty())

	name := rd.Properties.Updated["Name"]
	assert.Nil(t, name.Type)
	assert.Equal(t, &ScalarDiff[string]{Old: "old", New: "new"}, name.Documentation)
	assert.Equal(t, &ScalarDiff[bool]{Old: false, New: true}, name.Required)

	size := rd.Properties.Updated["Size"]
	assert.Nil(t, size.Type)
	assert.Equal(t, &ListDiff[model.PropertyType]{
		Added:   []model.PropertyType{model.Number},
		Removed: []model.PropertyType{model.JSON},
	}, size.PreviousTypes)
}

func TestCompareAdditionalReplacementProperties(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	withReplacements := func(groups [][]string) *store.Store {
		return build(t, func(b *builder.Builder) {
			rb := resource(t, b, "AWS::S3::Bucket")
			rb.Commit()
			rb.Resource().AdditionalReplacementProperties = groups
		})
	}

	same := Compare(withReplacements([][]string{{"A", "B"}}), withReplacements([][]string{{"A", "B"}}))
	assert.True(t, same.Empty())

	d := Compare(withReplacements([][]string{{"A", "B"}}), withReplacements([][]string{{"A", "B"}, {"C"}}))
	require.False(t, d.Empty())
	rd := d.Services.Updated["aws-s3"].Resources.Updated["AWS::S3::Bucket"]
	require.NotNil(t, rd)
	assert.Equal(t, &ScalarDiff[[][]string]{
		Old: [][]string{{"A", "B"}},
		New: [][]string{{"A", "B"}, {"C"}},
	}, rd.AdditionalReplacementProperties)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, d))
	assert.Equal(t, `~ service aws-s3
  ~ resource AWS::S3::Bucket
    ~ additionalReplacementProperties: [[A B]] -> [[A B] [C]]
`, buf.String())
}

func TestDiffList(t *testing.T) {
	eq := func(x, y string) bool { return x == y }

	assert.Nil(t, diffList([]string{"a", "b"}, []string{"b", "a"}, eq))
	assert.Equal(t, &ListDiff[string]{Added: []string{"c"}, Removed: []string{"a", "b"}},
		diffList([]string{"a", "a", "b"}, []string{"a", "c"}, eq))
	assert.Equal(t, &ListDiff[string]{Added: []string{"a"}}, diffList(nil, []string{"a"}, eq))
}

func TestFormat(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	oldDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Name", &model.Property{Type: model.String})
		rb.SetProperty("Gone", &model.Property{Type: model.Boolean})
		rb.Commit()
	})
	newDB := build(t, func(b *builder.Builder) {
		rb := resource(t, b, "AWS::S3::Bucket")
		rb.SetProperty("Name", &model.Property{Type: model.Integer, CausesReplacement: model.ReplacementYes})
		rb.SetProperty("Rules", &model.Property{Type: model.Array(ruleType(rb, model.String))})
		rb.Commit()
	})

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, Compare(oldDB, newDB)))
	assert.Equal(t, `~ service aws-s3
  ~ resource AWS::S3::Bucket
    + property Rules: array<Rule{Id: string}>
    - property Gone: boolean
    ~ property Name
      ~ type: string -> integer
      ~ causesReplacement: "" -> "yes"
    + type Rule
`, buf.String())
}
