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
	"errors"
	"fmt"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

// UnknownPrimitiveError is returned for a primitive type name the importer
// does not know. The specification format has changed under us and the
// import cannot continue.
type UnknownPrimitiveError struct {
	Name string
}

func (e *UnknownPrimitiveError) Error() string {
	return fmt.Sprintf("unknown primitive type %q", e.Name)
}

// IsUnknownPrimitive reports whether err (or any error in its chain) is an
// UnknownPrimitiveError.
func IsUnknownPrimitive(err error) bool {
	var upe *UnknownPrimitiveError
	return errors.As(err, &upe)
}

var primitives = map[string]model.Primitive{
	"String":    model.String,
	"Long":      model.Integer,
	"Integer":   model.Integer,
	"Double":    model.Number,
	"Boolean":   model.Boolean,
	"Timestamp": model.DateTime,
	"Json":      model.JSON,
}

func primitive(name string) (model.PropertyType, error) {
	p, ok := primitives[name]
	if !ok {
		return nil, &UnknownPrimitiveError{Name: name}
	}
	return p, nil
}

func replacement(u UpdateType) model.Replacement {
	switch u {
	case Mutable:
		return model.ReplacementNo
	case Immutable:
		return model.ReplacementYes
	case Conditional:
		return model.ReplacementMaybe
	}
	return ""
}

// namedTypeFunc turns a property type name into a type, creating the type
// definition it refers to when needed.
type namedTypeFunc func(name string) (model.PropertyType, error)

// deriveType maps a specification type onto the model. Named types are
// delegated to named, which keeps this mapping free of recursion. A type
// that declares several alternatives becomes a union of all of them.
func deriveType(t Type, named namedTypeFunc, r model.DefinitionResolver) (model.PropertyType, error) {
	var members []model.PropertyType
	if t.PrimitiveType != "" {
		p, err := primitive(t.PrimitiveType)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	for _, name := range t.PrimitiveTypes {
		p, err := primitive(name)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	for _, name := range t.Types {
		n, err := named(name)
		if err != nil {
			return nil, err
		}
		members = append(members, n)
	}

	switch t.TypeName {
	case "":
	case "List", "Map":
		elem, err := itemType(t, named, r)
		if err != nil {
			return nil, err
		}
		if t.TypeName == "List" {
			members = append(members, model.Array(elem))
		} else {
			members = append(members, model.Map(elem))
		}
	default:
		n, err := named(t.TypeName)
		if err != nil {
			return nil, err
		}
		members = append(members, n)
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("no type given")
	}
	return model.NewUnion(members, r)
}

func itemType(t Type, named namedTypeFunc, r model.DefinitionResolver) (model.PropertyType, error) {
	switch {
	case t.PrimitiveItemType != "":
		return primitive(t.PrimitiveItemType)
	case t.ItemType != "":
		return named(t.ItemType)
	}

	prims := append(append([]string(nil), t.PrimitiveItemTypes...), t.InclusivePrimitiveItemTypes...)
	types := append(append([]string(nil), t.ItemTypes...), t.InclusiveItemTypes...)
	if len(prims) > 0 || len(types) > 0 {
		return unionOf(prims, types, named, r)
	}
	return model.JSON, nil
}

func unionOf(prims, types []string, named namedTypeFunc, r model.DefinitionResolver) (model.PropertyType, error) {
	members := make([]model.PropertyType, 0, len(prims)+len(types))
	for _, name := range prims {
		p, err := primitive(name)
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	for _, name := range types {
		t, err := named(name)
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	return model.NewUnion(members, r)
}
