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
	"encoding/json"
	"fmt"
)

// Deprecation states how consumers should treat a deprecated field. The
// empty value means the source did not say.
type Deprecation string

const (
	DeprecationNone   Deprecation = "NONE"
	DeprecationWarn   Deprecation = "WARN"
	DeprecationIgnore Deprecation = "IGNORE"
)

// Replacement states whether updating a field replaces the resource.
type Replacement string

const (
	ReplacementYes   Replacement = "yes"
	ReplacementNo    Replacement = "no"
	ReplacementMaybe Replacement = "maybe"
)

// RelationshipRef points at a property of another resource whose value this
// field typically holds.
type RelationshipRef struct {
	TargetResourceType string `json:"cloudFormationType"`
	TargetPropertyName string `json:"propertyName"`
}

// Property describes one field of a resource or type definition. Resource
// attributes use the same structure; Scrutinizable is only meaningful on
// properties.
type Property struct {
	Type PropertyType
	// PreviousTypes holds earlier classifications, most recent first.
	PreviousTypes     []PropertyType
	Required          *bool
	DefaultValue      *string
	Deprecated        Deprecation
	CausesReplacement Replacement
	Documentation     string
	RelationshipRefs  []RelationshipRef
	Scrutinizable     string
}

// IsRequired returns true if the field is known to be required.
func (p *Property) IsRequired() bool {
	return p.Required != nil && *p.Required
}

// Clone returns a copy that shares no mutable state with p.
func (p *Property) Clone() *Property {
	c := *p
	if p.PreviousTypes != nil {
		c.PreviousTypes = append([]PropertyType(nil), p.PreviousTypes...)
	}
	if p.Required != nil {
		v := *p.Required
		c.Required = &v
	}
	if p.DefaultValue != nil {
		v := *p.DefaultValue
		c.DefaultValue = &v
	}
	if p.RelationshipRefs != nil {
		c.RelationshipRefs = append([]RelationshipRef(nil), p.RelationshipRefs...)
	}
	return &c
}

type propertyJSON struct {
	Type              json.RawMessage   `json:"type"`
	PreviousTypes     []json.RawMessage `json:"previousTypes,omitempty"`
	Required          *bool             `json:"required,omitempty"`
	DefaultValue      *string           `json:"defaultValue,omitempty"`
	Deprecated        Deprecation       `json:"deprecated,omitempty"`
	CausesReplacement Replacement       `json:"causesReplacement,omitempty"`
	Documentation     string            `json:"documentation,omitempty"`
	RelationshipRefs  []RelationshipRef `json:"relationshipRefs,omitempty"`
	Scrutinizable     string            `json:"scrutinizable,omitempty"`
}

func (p Property) MarshalJSON() ([]byte, error) {
	if p.Type == nil {
		return nil, fmt.Errorf("property has no type")
	}
	typ, err := MarshalType(p.Type)
	if err != nil {
		return nil, err
	}
	out := propertyJSON{
		Type:              typ,
		Required:          p.Required,
		DefaultValue:      p.DefaultValue,
		Deprecated:        p.Deprecated,
		CausesReplacement: p.CausesReplacement,
		Documentation:     p.Documentation,
		RelationshipRefs:  p.RelationshipRefs,
		Scrutinizable:     p.Scrutinizable,
	}
	for _, prev := range p.PreviousTypes {
		raw, err := MarshalType(prev)
		if err != nil {
			return nil, err
		}
		out.PreviousTypes = append(out.PreviousTypes, raw)
	}
	return json.Marshal(out)
}

func (p *Property) UnmarshalJSON(data []byte) error {
	var in propertyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	typ, err := UnmarshalType(in.Type)
	if err != nil {
		return fmt.Errorf("invalid property type: %w", err)
	}
	*p = Property{
		Type:              typ,
		Required:          in.Required,
		DefaultValue:      in.DefaultValue,
		Deprecated:        in.Deprecated,
		CausesReplacement: in.CausesReplacement,
		Documentation:     in.Documentation,
		RelationshipRefs:  in.RelationshipRefs,
		Scrutinizable:     in.Scrutinizable,
	}
	for _, raw := range in.PreviousTypes {
		prev, err := UnmarshalType(raw)
		if err != nil {
			return fmt.Errorf("invalid previous type: %w", err)
		}
		p.PreviousTypes = append(p.PreviousTypes, prev)
	}
	return nil
}
