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

package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

func newTypeDefinition(db *store.Store, name string, props map[string]*Property) *TypeDefinition {
	td := &TypeDefinition{Name: name, Properties: props}
	db.Allocate(td)
	return td
}

func TestNormalize(t *testing.T) {
	db := NewDatabase()
	r := Resolver(db)
	pair := newTypeDefinition(db, "Pair", map[string]*Property{
		"V": {Type: String},
		"K": {Type: Integer},
	})
	self := newTypeDefinition(db, "Node", map[string]*Property{})
	self.Properties["Next"] = &Property{Type: Ref(self)}

	tests := []struct {
		name string
		typ  PropertyType
		want CanonicalForm
	}{
		{name: "primitive", typ: DateTime, want: "date-time"},
		{name: "tag", typ: Tag(TagASG), want: "tag(asg)"},
		{name: "nested collections", typ: Array(Map(JSON)), want: "array<map<json>>"},
		{name: "ref unfolds fields sorted", typ: Ref(pair), want: "Pair{K: integer, V: string}"},
		{name: "recursive ref unfolds once", typ: Ref(self), want: "Node{Next: ref<Node>}"},
		{name: "union members sorted", typ: UnionType{Members: []PropertyType{String, Boolean}}, want: "union<boolean | string>"},
		{name: "dangling ref", typ: RefType{Reference: 99}, want: "ref<unresolved>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.typ, r))
		})
	}
}

func TestRenderKeepsStoredForm(t *testing.T) {
	typ := UnionType{Members: []PropertyType{String, RefType{Reference: 3}}}
	assert.Equal(t, "union<string | ref<#3>>", Render(typ))
}

func TestEqualAcrossStores(t *testing.T) {
	dbA := NewDatabase()
	dbB := NewDatabase()
	// offset the ids in the second store
	newTypeDefinition(dbB, "Filler", map[string]*Property{})

	a := newTypeDefinition(dbA, "Rule", map[string]*Property{"Id": {Type: String}})
	b := newTypeDefinition(dbB, "Rule", map[string]*Property{"Id": {Type: String}})
	require.NotEqual(t, a.EntityID(), b.EntityID())

	assert.True(t, Equal(Ref(a), Resolver(dbA), Ref(b), Resolver(dbB)))

	b.Properties["Id"] = &Property{Type: Integer}
	assert.False(t, Equal(Ref(a), Resolver(dbA), Ref(b), Resolver(dbB)))

	ua := UnionType{Members: []PropertyType{String, Number}}
	ub := UnionType{Members: []PropertyType{Number, String}}
	assert.True(t, Equal(ua, nil, ub, nil))
	assert.False(t, Equal(String, nil, nil, nil))
	assert.True(t, Equal(nil, nil, nil, nil))
}

func TestRemoveDuplicates(t *testing.T) {
	db := NewDatabase()
	r := Resolver(db)
	a := newTypeDefinition(db, "Rule", map[string]*Property{"Id": {Type: String}})
	b := newTypeDefinition(db, "Rule", map[string]*Property{"Id": {Type: String}})

	in := []PropertyType{
		String,
		Ref(a),
		Array(String),
		Ref(b),
		String,
		UnionType{Members: []PropertyType{Integer, Boolean}},
		UnionType{Members: []PropertyType{Boolean, Integer}},
	}

	got, err := RemoveDuplicates(in, r)
	require.NoError(t, err)
	want := []PropertyType{String, Ref(a), Array(String), UnionType{Members: []PropertyType{Integer, Boolean}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RemoveDuplicates() mismatch (-want +got):\n%s", diff)
	}

	again, err := RemoveDuplicates(got, r)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = RemoveDuplicates(nil, r)
	assert.ErrorIs(t, err, ErrEmptyUnion)
}

func TestNewUnion(t *testing.T) {
	tests := []struct {
		name    string
		members []PropertyType
		want    PropertyType
		wantErr error
	}{
		{name: "collapses single member", members: []PropertyType{String, String}, want: String},
		{name: "keeps order", members: []PropertyType{JSON, Integer}, want: UnionType{Members: []PropertyType{JSON, Integer}}},
		{
			name:    "flattens nested unions",
			members: []PropertyType{String, UnionType{Members: []PropertyType{Integer, String}}},
			want:    UnionType{Members: []PropertyType{String, Integer}},
		},
		{name: "empty", members: nil, wantErr: ErrEmptyUnion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewUnion(tt.members, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElementOf(t *testing.T) {
	assert.Equal(t, PropertyType(String), ElementOf(Array(Map(String))))
	assert.Equal(t, PropertyType(Tag(TagMap)), ElementOf(Tag(TagMap)))
	assert.True(t, IsJSON(ElementOf(Map(JSON))))
}
