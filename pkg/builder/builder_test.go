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

package builder

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return New(model.NewDatabase(), logr.Discard())
}

func TestPushTypeHistory(t *testing.T) {
	tests := []struct {
		name        string
		imports     []model.PropertyType
		wantType    model.PropertyType
		wantHistory []model.PropertyType
	}{
		{
			name:     "json then string collapses history",
			imports:  []model.PropertyType{model.JSON, model.String},
			wantType: model.String,
		},
		{
			name:        "date-time then string keeps history",
			imports:     []model.PropertyType{model.DateTime, model.String},
			wantType:    model.String,
			wantHistory: []model.PropertyType{model.DateTime},
		},
		{
			name:     "same type twice is a no-op",
			imports:  []model.PropertyType{model.String, model.String},
			wantType: model.String,
		},
		{
			name:        "newest previous type first",
			imports:     []model.PropertyType{model.Integer, model.Number, model.String},
			wantType:    model.String,
			wantHistory: []model.PropertyType{model.Number, model.Integer},
		},
		{
			name:     "json then a concrete array",
			imports:  []model.PropertyType{model.JSON, model.Array(model.JSON)},
			wantType: model.Array(model.JSON),
		},
		{
			name:        "concrete then json is recorded",
			imports:     []model.PropertyType{model.String, model.JSON},
			wantType:    model.JSON,
			wantHistory: []model.PropertyType{model.String},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			rb, err := b.Resource("Test::Svc::Thing")
			require.NoError(t, err)

			for _, typ := range tt.imports {
				rb.SetProperty("X", &model.Property{Type: typ})
				rb.Commit()
			}

			got := rb.Resource().Properties["X"]
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantHistory, got.PreviousTypes)
		})
	}
}

func TestMergePropertyScalars(t *testing.T) {
	existing := &model.Property{
		Type:          model.String,
		Documentation: "old docs",
		Required:      ptr.To(true),
		DefaultValue:  ptr.To(`"a"`),
	}
	MergeProperty(existing, &model.Property{
		Type:              model.String,
		CausesReplacement: model.ReplacementYes,
		Deprecated:        model.DeprecationWarn,
	}, nil)

	assert.Equal(t, "old docs", existing.Documentation)
	assert.True(t, existing.IsRequired())
	assert.Equal(t, `"a"`, *existing.DefaultValue)
	assert.Equal(t, model.ReplacementYes, existing.CausesReplacement)
	assert.Equal(t, model.DeprecationWarn, existing.Deprecated)

	MergeProperty(existing, &model.Property{
		Type:          model.String,
		Documentation: "new docs",
		Required:      ptr.To(false),
		Deprecated:    model.DeprecationNone,
		RelationshipRefs: []model.RelationshipRef{
			{TargetResourceType: "AWS::IAM::Role", TargetPropertyName: "Arn"},
		},
	}, nil)

	assert.Equal(t, "new docs", existing.Documentation)
	assert.Nil(t, existing.Required)
	assert.Empty(t, existing.Deprecated)
	assert.Len(t, existing.RelationshipRefs, 1)
}

func TestMergePropertyReplaysIncomingHistory(t *testing.T) {
	existing := &model.Property{Type: model.Boolean}
	MergeProperty(existing, &model.Property{
		Type:          model.String,
		PreviousTypes: []model.PropertyType{model.Number, model.Integer},
	}, nil)

	assert.Equal(t, model.String, existing.Type)
	assert.Equal(t, []model.PropertyType{model.Number, model.Integer, model.Boolean}, existing.PreviousTypes)
}

func TestCommitSimplifiesNewFields(t *testing.T) {
	b := newTestBuilder(t)
	rb, err := b.Resource("Test::Svc::Thing")
	require.NoError(t, err)

	candidate := &model.Property{Type: model.String, Required: ptr.To(false), Deprecated: model.DeprecationNone}
	rb.SetProperty("Name", candidate)
	rb.Commit()

	got := rb.Resource().Properties["Name"]
	assert.Nil(t, got.Required)
	assert.Empty(t, got.Deprecated)
	// the stored property is a copy of the candidate
	assert.NotSame(t, candidate, got)
	assert.NotNil(t, candidate.Required)
}

func TestBagStaging(t *testing.T) {
	b := newTestBuilder(t)
	rb, err := b.Resource("Test::Svc::Thing")
	require.NoError(t, err)

	bag := rb.Properties()
	bag.SetProperty("A", &model.Property{Type: model.String})
	bag.SetProperty("B", &model.Property{Type: model.Number})
	bag.SetProperty("A", &model.Property{Type: model.Integer})
	assert.Equal(t, []string{"A", "B"}, bag.Names())

	moved, ok := bag.Unstage("B")
	require.True(t, ok)
	assert.Equal(t, model.Number, moved.Type)
	assert.Equal(t, []string{"A"}, bag.Names())

	_, ok = bag.Unstage("B")
	assert.False(t, ok)

	rb.SetAttribute("B", moved)
	rb.Commit()

	assert.Equal(t, model.Integer, rb.Resource().Properties["A"].Type)
	assert.NotContains(t, rb.Resource().Properties, "B")
	assert.Equal(t, model.Number, rb.Resource().Attributes["B"].Type)
	assert.Empty(t, bag.Names())

	_, ok = bag.Committed("A")
	assert.True(t, ok)
}

func TestBagDelete(t *testing.T) {
	b := newTestBuilder(t)
	rb, err := b.Resource("Test::Svc::Thing")
	require.NoError(t, err)

	bag := rb.Properties()
	bag.SetProperty("Arn", &model.Property{Type: model.String})
	bag.SetProperty("Name", &model.Property{Type: model.String})
	rb.Commit()

	bag.SetProperty("Arn", &model.Property{Type: model.String})
	bag.Delete("Arn")
	assert.Empty(t, bag.Names())
	// still present until the next commit
	_, ok := bag.Committed("Arn")
	assert.True(t, ok)

	rb.Commit()
	assert.NotContains(t, rb.Resource().Properties, "Arn")
	assert.Contains(t, rb.Resource().Properties, "Name")

	bag.Delete("Name")
	bag.SetProperty("Name", &model.Property{Type: model.Integer})
	rb.Commit()
	require.Contains(t, rb.Resource().Properties, "Name")
}

func TestResourceIsCreatedOnce(t *testing.T) {
	b := newTestBuilder(t)

	first, err := b.Resource("AWS::S3::Bucket")
	require.NoError(t, err)
	second, err := b.Resource("AWS::S3::Bucket")
	require.NoError(t, err)
	_, err = b.Resource("AWS::S3::AccessPoint")
	require.NoError(t, err)

	assert.Same(t, first.Resource(), second.Resource())
	assert.Equal(t, 2, b.DB().Len(model.KindResource))
	require.Equal(t, 1, b.DB().Len(model.KindService))

	svc, ok := model.ServiceByName(b.DB(), "aws-s3")
	require.True(t, ok)
	assert.Equal(t, "s3", svc.ShortName)
	assert.Equal(t, "S3", svc.Capitalized)
	assert.Equal(t, "AWS::S3", svc.CloudFormationNamespace)
	assert.Len(t, model.ResourcesOf(b.DB(), svc), 2)
	assert.Equal(t, "Bucket", first.Resource().Name)
}

func TestTypeDefinitionIsLinkedOnce(t *testing.T) {
	b := newTestBuilder(t)
	rb, err := b.Resource("AWS::S3::Bucket")
	require.NoError(t, err)

	tb, created := rb.TypeDefinition("Rule")
	assert.True(t, created)
	tb.SetProperty("Id", &model.Property{Type: model.String})
	tb.Commit()

	again, created := rb.TypeDefinition("Rule")
	assert.False(t, created)
	assert.Same(t, tb.TypeDefinition(), again.TypeDefinition())
	assert.Len(t, model.TypeDefinitionsOf(b.DB(), rb.Resource()), 1)
	assert.Equal(t, model.RefType{Reference: tb.TypeDefinition().EntityID()}, again.Ref())

	other, err := b.Resource("AWS::S3::AccessPoint")
	require.NoError(t, err)
	_, ok := other.FindTypeDefinition("Rule")
	assert.False(t, ok)
}

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		in      string
		want    ServiceIdentity
		wantErr bool
	}{
		{
			in: "AWS::S3::Bucket",
			want: ServiceIdentity{
				Name: "aws-s3", ShortName: "s3", Capitalized: "S3",
				CloudFormationNamespace: "AWS::S3", ResourceName: "Bucket",
			},
		},
		{
			in: "Alexa::ASK::Skill",
			want: ServiceIdentity{
				Name: "alexa-ask", ShortName: "ask", Capitalized: "ASK",
				CloudFormationNamespace: "Alexa::ASK", ResourceName: "Skill",
			},
		},
		{
			in: "Foo::Bar",
			want: ServiceIdentity{
				Name: "foo", ShortName: "foo", Capitalized: "Foo",
				CloudFormationNamespace: "Foo", ResourceName: "Bar",
			},
		},
		{in: "AWS::S3::Bucket::Extra", wantErr: true},
		{in: "AWS::::Bucket", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceRejectsMalformedType(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Resource("Bucket")
	assert.Error(t, err)
	assert.Zero(t, b.DB().Len(model.KindResource))
	assert.Zero(t, b.DB().Len(model.KindService))
}
