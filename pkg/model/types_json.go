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

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

const (
	typeTagTag   = "tag"
	typeTagArray = "array"
	typeTagMap   = "map"
	typeTagUnion = "union"
	typeTagRef   = "ref"
)

// typeEnvelope is the serialized form of a PropertyType.
type typeEnvelope struct {
	Type      string            `json:"type"`
	Variant   TagVariant        `json:"variant,omitempty"`
	Element   json.RawMessage   `json:"element,omitempty"`
	Members   []json.RawMessage `json:"types,omitempty"`
	Reference *store.ID         `json:"reference,omitempty"`
}

// MarshalType encodes a PropertyType as a tagged JSON object.
func MarshalType(t PropertyType) ([]byte, error) {
	env, err := envelopeOf(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func envelopeOf(t PropertyType) (*typeEnvelope, error) {
	switch v := t.(type) {
	case Primitive:
		return &typeEnvelope{Type: string(v)}, nil
	case TagType:
		return &typeEnvelope{Type: typeTagTag, Variant: v.Variant}, nil
	case ArrayType:
		elem, err := MarshalType(v.Element)
		if err != nil {
			return nil, err
		}
		return &typeEnvelope{Type: typeTagArray, Element: elem}, nil
	case MapType:
		elem, err := MarshalType(v.Element)
		if err != nil {
			return nil, err
		}
		return &typeEnvelope{Type: typeTagMap, Element: elem}, nil
	case UnionType:
		members := make([]json.RawMessage, 0, len(v.Members))
		for _, m := range v.Members {
			raw, err := MarshalType(m)
			if err != nil {
				return nil, err
			}
			members = append(members, raw)
		}
		return &typeEnvelope{Type: typeTagUnion, Members: members}, nil
	case RefType:
		id := v.Reference
		return &typeEnvelope{Type: typeTagRef, Reference: &id}, nil
	default:
		return nil, fmt.Errorf("cannot encode property type %T", t)
	}
}

// UnmarshalType decodes a PropertyType written by MarshalType.
func UnmarshalType(data []byte) (PropertyType, error) {
	var env typeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case typeTagTag:
		switch env.Variant {
		case TagStandard, TagMap, TagASG:
			return TagType{Variant: env.Variant}, nil
		}
		return nil, fmt.Errorf("unknown tag variant %q", env.Variant)
	case typeTagArray, typeTagMap:
		if len(env.Element) == 0 {
			return nil, fmt.Errorf("%s type without element", env.Type)
		}
		elem, err := UnmarshalType(env.Element)
		if err != nil {
			return nil, err
		}
		if env.Type == typeTagArray {
			return ArrayType{Element: elem}, nil
		}
		return MapType{Element: elem}, nil
	case typeTagUnion:
		if len(env.Members) < 2 {
			return nil, fmt.Errorf("union with %d members", len(env.Members))
		}
		members := make([]PropertyType, 0, len(env.Members))
		for _, raw := range env.Members {
			m, err := UnmarshalType(raw)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return UnionType{Members: members}, nil
	case typeTagRef:
		if env.Reference == nil {
			return nil, fmt.Errorf("ref type without reference")
		}
		return RefType{Reference: *env.Reference}, nil
	default:
		if IsPrimitive(env.Type) {
			return Primitive(env.Type), nil
		}
		return nil, fmt.Errorf("unknown property type %q", env.Type)
	}
}
