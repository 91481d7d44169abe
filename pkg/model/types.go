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
	"errors"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// PropertyType is the closed set of shapes a property or attribute can take.
// Implementations are Primitive, TagType, ArrayType, MapType, UnionType and
// RefType.
type PropertyType interface {
	isPropertyType()
}

// Primitive is a scalar type.
type Primitive string

const (
	String   Primitive = "string"
	Number   Primitive = "number"
	Integer  Primitive = "integer"
	Boolean  Primitive = "boolean"
	DateTime Primitive = "date-time"
	// JSON is the untyped escape hatch used when no shape can be inferred.
	JSON Primitive = "json"
	Null Primitive = "null"
)

// IsPrimitive returns true if s names a primitive type.
func IsPrimitive(s string) bool {
	switch Primitive(s) {
	case String, Number, Integer, Boolean, DateTime, JSON, Null:
		return true
	}
	return false
}

// TagVariant selects one of the tag representations.
type TagVariant string

const (
	// TagStandard is a list of key/value pairs.
	TagStandard TagVariant = "standard"
	// TagMap is a string to string map.
	TagMap TagVariant = "map"
	// TagASG is the AutoScaling group list, which carries PropagateAtLaunch.
	TagASG TagVariant = "asg"
)

// TagType is a property that carries resource tags.
type TagType struct {
	Variant TagVariant
}

// ArrayType is a list of Element.
type ArrayType struct {
	Element PropertyType
}

// MapType is a string keyed map of Element.
type MapType struct {
	Element PropertyType
}

// UnionType is one of several member types. Build it with NewUnion, which
// enforces that members are distinct and that there are at least two.
type UnionType struct {
	Members []PropertyType
}

// RefType points at a TypeDefinition in the owning store.
type RefType struct {
	Reference store.ID
}

func (Primitive) isPropertyType() {}
func (TagType) isPropertyType()   {}
func (ArrayType) isPropertyType() {}
func (MapType) isPropertyType()   {}
func (UnionType) isPropertyType() {}
func (RefType) isPropertyType()   {}

// ErrEmptyUnion is returned when a union would have no members after
// deduplication.
var ErrEmptyUnion = errors.New("union has no members")

// Tag returns a tag type of the given variant.
func Tag(v TagVariant) PropertyType {
	return TagType{Variant: v}
}

// Array returns a list of elem.
func Array(elem PropertyType) PropertyType {
	return ArrayType{Element: elem}
}

// Map returns a string keyed map of elem.
func Map(elem PropertyType) PropertyType {
	return MapType{Element: elem}
}

// Ref returns a reference to the given type definition.
func Ref(def *TypeDefinition) PropertyType {
	return RefType{Reference: def.EntityID()}
}

// NewUnion builds a union of members. Nested unions are flattened and
// normalized-equal members are removed, keeping the first occurrence. A
// single remaining member is returned as is; no members is an error.
func NewUnion(members []PropertyType, r DefinitionResolver) (PropertyType, error) {
	flat := make([]PropertyType, 0, len(members))
	for _, m := range members {
		if u, ok := m.(UnionType); ok {
			flat = append(flat, u.Members...)
			continue
		}
		flat = append(flat, m)
	}
	deduped, err := RemoveDuplicates(flat, r)
	if err != nil {
		return nil, err
	}
	if len(deduped) == 1 {
		return deduped[0], nil
	}
	return UnionType{Members: deduped}, nil
}

// IsJSON returns true if t is the untyped escape hatch.
func IsJSON(t PropertyType) bool {
	p, ok := t.(Primitive)
	return ok && p == JSON
}

// ElementOf unwraps arrays and maps down to the first non-collection type.
func ElementOf(t PropertyType) PropertyType {
	for {
		switch c := t.(type) {
		case ArrayType:
			t = c.Element
		case MapType:
			t = c.Element
		default:
			return t
		}
	}
}
