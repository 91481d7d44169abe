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

package query

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

func testDatabase(t *testing.T) *store.Store {
	t.Helper()
	b := builder.New(model.NewDatabase(), logr.Discard())

	bucket, err := b.Resource("AWS::S3::Bucket")
	require.NoError(t, err)
	bucket.SetProperty("BucketName", &model.Property{Type: model.String})
	bucket.SetProperty("Tags", &model.Property{Type: model.Array(model.Tag(model.TagStandard))})
	bucket.SetAttribute("Arn", &model.Property{Type: model.String})
	require.True(t, bucket.MarkTagged("Tags"))
	bucket.Commit()

	queue, err := b.Resource("AWS::SQS::Queue")
	require.NoError(t, err)
	queue.SetProperty("DelaySeconds", &model.Property{Type: model.Integer})
	queue.Commit()

	vpc, err := b.Resource("AWS::EC2::VPC")
	require.NoError(t, err)
	vpc.SetProperty("CidrBlock", &model.Property{Type: model.String})
	vpc.Commit()

	return b.DB()
}

func TestFilter(t *testing.T) {
	db := testDatabase(t)

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "everything",
			expr: "true",
			want: []string{"AWS::EC2::VPC", "AWS::S3::Bucket", "AWS::SQS::Queue"},
		},
		{
			name: "by service",
			expr: `resource.service == "aws-s3"`,
			want: []string{"AWS::S3::Bucket"},
		},
		{
			name: "tagged",
			expr: "resource.tagged",
			want: []string{"AWS::S3::Bucket"},
		},
		{
			name: "has property",
			expr: `"DelaySeconds" in resource.properties`,
			want: []string{"AWS::SQS::Queue"},
		},
		{
			name: "property type",
			expr: `resource.properties.exists(p, resource.properties[p] == "string")`,
			want: []string{"AWS::EC2::VPC", "AWS::S3::Bucket"},
		},
		{
			name: "string functions",
			expr: `resource.cloudFormationType.lowerAscii().contains("sqs")`,
			want: []string{"AWS::SQS::Queue"},
		},
		{
			name: "attributes",
			expr: `size(resource.attributes) > 0`,
			want: []string{"AWS::S3::Bucket"},
		},
		{
			name: "no match",
			expr: `resource.name == "Nothing"`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.expr)
			require.NoError(t, err)

			got, err := Filter(db, q)
			require.NoError(t, err)

			var names []string
			for _, res := range got {
				names = append(names, res.CloudFormationType)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "syntax", expr: "resource.name ==="},
		{name: "unknown variable", expr: "bucket.name == 'x'"},
		{name: "not a predicate", expr: "1 + 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestMatchesRejectsNonBoolResult(t *testing.T) {
	db := testDatabase(t)
	res, ok := model.ResourceByType(db, "AWS::S3::Bucket")
	require.True(t, ok)

	q, err := Compile("resource.name")
	require.NoError(t, err)

	_, err = q.Matches(db, res)
	assert.ErrorContains(t, err, "expected bool result")
}

func TestActivation(t *testing.T) {
	db := testDatabase(t)
	res, ok := model.ResourceByType(db, "AWS::S3::Bucket")
	require.True(t, ok)

	act := Activation(db, res)
	assert.Equal(t, "aws-s3", act["service"])
	assert.Equal(t, "Bucket", act["name"])
	assert.Equal(t, true, act["tagged"])
	assert.Equal(t, map[string]any{
		"BucketName": "string",
		"Tags":       "tag(standard)",
	}, act["properties"])
}
