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

package problems

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	var r Report
	assert.Equal(t, "no problems", r.String())

	r.Add("AWS::S3::Bucket", FieldConversion, "field %q: %s", "Rules", "bad schema")
	r.Add("AWS::EC2::VPC", MissingTagProperty, "no property %q", "Tags")
	r.Add("AWS::S3::Bucket", UnionOfObjects, "merged %d branches", 2)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"AWS::EC2::VPC", "AWS::S3::Bucket"}, r.Resources())
	assert.Equal(t, map[Category]int{FieldConversion: 1, MissingTagProperty: 1, UnionOfObjects: 1}, r.Counts())

	bucket := r.ForResource("AWS::S3::Bucket")
	require.Len(t, bucket, 2)
	assert.Equal(t, `field "Rules": bad schema`, bucket[0].Message)
	assert.Equal(t, UnionOfObjects, bucket[1].Category)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Equal(t, `AWS::EC2::VPC
  [missing-tag-property] no property "Tags"
AWS::S3::Bucket
  [field-conversion] field "Rules": bad schema
  [union-of-objects] merged 2 branches
`, buf.String())
}

func TestReportSummary(t *testing.T) {
	var r Report
	for i := 0; i < 5; i++ {
		r.Add("AWS::S3::Bucket", UnresolvedPath, "path %d", i)
	}
	assert.Equal(t,
		"AWS::S3::Bucket [unresolved-path] path 0; AWS::S3::Bucket [unresolved-path] path 1; AWS::S3::Bucket [unresolved-path] path 2; and 2 more",
		r.String())
}

func TestNilReportDiscards(t *testing.T) {
	var r *Report
	r.Add("AWS::S3::Bucket", FieldConversion, "ignored")
	assert.Zero(t, r.Len())
	assert.Empty(t, r.All())
	assert.Empty(t, r.Counts())
}
