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

package legacy

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Specification is a CloudFormation resource specification: flat tables of
// resource types and the property types they use. The SAM specification has
// the same layout with a few list-valued type fields.
type Specification struct {
	ResourceSpecificationVersion string                   `json:"ResourceSpecificationVersion,omitempty"`
	ResourceTypes                map[string]*ResourceType `json:"ResourceTypes"`
	PropertyTypes                map[string]*PropertyType `json:"PropertyTypes"`
}

type ResourceType struct {
	Documentation string                `json:"Documentation,omitempty"`
	Attributes    map[string]*Attribute `json:"Attributes,omitempty"`
	Properties    map[string]*Property  `json:"Properties,omitempty"`
}

// PropertyType is a named record type. Property types keyed as
// "AWS::S3::Bucket.Rule" belong to one resource; bare keys such as "Tag" are
// shared by every resource.
type PropertyType struct {
	Documentation string               `json:"Documentation,omitempty"`
	Properties    map[string]*Property `json:"Properties,omitempty"`
}

type Property struct {
	Documentation     string     `json:"Documentation,omitempty"`
	DuplicatesAllowed bool       `json:"DuplicatesAllowed,omitempty"`
	Required          bool       `json:"Required,omitempty"`
	UpdateType        UpdateType `json:"UpdateType,omitempty"`
	Type
}

type Attribute struct {
	Type
}

// Type describes the type of a property or attribute. Exactly one of
// PrimitiveType and TypeName is normally set; List and Map type names take
// their element from the item fields. The plural fields are SAM's way of
// declaring a union.
type Type struct {
	TypeName          string `json:"Type,omitempty"`
	PrimitiveType     string `json:"PrimitiveType,omitempty"`
	ItemType          string `json:"ItemType,omitempty"`
	PrimitiveItemType string `json:"PrimitiveItemType,omitempty"`

	PrimitiveTypes              []string `json:"PrimitiveTypes,omitempty"`
	Types                       []string `json:"Types,omitempty"`
	PrimitiveItemTypes          []string `json:"PrimitiveItemTypes,omitempty"`
	ItemTypes                   []string `json:"ItemTypes,omitempty"`
	InclusivePrimitiveItemTypes []string `json:"InclusivePrimitiveItemTypes,omitempty"`
	InclusiveItemTypes          []string `json:"InclusiveItemTypes,omitempty"`
}

type UpdateType string

const (
	Mutable     UpdateType = "Mutable"
	Immutable   UpdateType = "Immutable"
	Conditional UpdateType = "Conditional"
)

// Parse reads a specification document.
func Parse(data []byte) (*Specification, error) {
	var spec Specification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse resource specification: %w", err)
	}
	return &spec, nil
}

// findPropertyType looks a named type up for a resource, falling back to the
// bare name shared across resources.
func (s *Specification) findPropertyType(resourceType, name string) (*PropertyType, bool, bool) {
	if pt, ok := s.PropertyTypes[resourceType+"."+name]; ok {
		return pt, false, true
	}
	if pt, ok := s.PropertyTypes[name]; ok {
		return pt, true, true
	}
	return nil, false, false
}
