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
	"slices"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

// MergeProperty folds an incoming candidate into an existing property.
//
// Scalar fields present on the candidate overwrite the existing ones. The
// candidate's type history is replayed oldest first, followed by its current
// type, through PushType.
func MergeProperty(existing, incoming *model.Property, r model.DefinitionResolver) {
	if incoming.Required != nil {
		v := *incoming.Required
		existing.Required = &v
	}
	if incoming.DefaultValue != nil {
		v := *incoming.DefaultValue
		existing.DefaultValue = &v
	}
	if incoming.Deprecated != "" {
		existing.Deprecated = incoming.Deprecated
	}
	if incoming.CausesReplacement != "" {
		existing.CausesReplacement = incoming.CausesReplacement
	}
	if incoming.Documentation != "" {
		existing.Documentation = incoming.Documentation
	}
	if incoming.Scrutinizable != "" {
		existing.Scrutinizable = incoming.Scrutinizable
	}
	if incoming.RelationshipRefs != nil {
		existing.RelationshipRefs = slices.Clone(incoming.RelationshipRefs)
	}

	for i := len(incoming.PreviousTypes) - 1; i >= 0; i-- {
		PushType(existing, incoming.PreviousTypes[i], r)
	}
	if incoming.Type != nil {
		PushType(existing, incoming.Type, r)
	}
	Simplify(existing)
}

// PushType records t as the current type of p.
//
// A type normalized-equal to the current one leaves the history untouched.
// When the oldest recorded type is json and t is a concrete type, the
// history is dropped: the field was under-specified rather than changed.
// Otherwise the current type moves to the front of PreviousTypes.
func PushType(p *model.Property, t model.PropertyType, r model.DefinitionResolver) {
	if p.Type == nil {
		p.Type = t
		return
	}
	if model.Equal(p.Type, r, t, r) {
		return
	}

	oldest := p.Type
	if n := len(p.PreviousTypes); n > 0 {
		oldest = p.PreviousTypes[n-1]
	}
	if model.IsJSON(oldest) && !model.IsJSON(t) {
		p.PreviousTypes = nil
		p.Type = t
		return
	}

	p.PreviousTypes = append([]model.PropertyType{p.Type}, p.PreviousTypes...)
	p.Type = t
}

// Simplify removes fields that carry their default value.
func Simplify(p *model.Property) {
	if p.Required != nil && !*p.Required {
		p.Required = nil
	}
	if p.Deprecated == model.DeprecationNone {
		p.Deprecated = ""
	}
	if len(p.PreviousTypes) == 0 {
		p.PreviousTypes = nil
	}
	if len(p.RelationshipRefs) == 0 {
		p.RelationshipRefs = nil
	}
}
