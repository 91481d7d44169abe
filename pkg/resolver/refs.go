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

package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"k8s.io/kube-openapi/pkg/validation/spec"
)

const maxRefHops = 32

// deref follows local $refs until it reaches a schema without one. The
// returned name is the last definitions or properties key on the way, used
// to name the type the schema turns into.
func deref(root *spec.Schema, sch spec.Schema) (spec.Schema, string, error) {
	name := ""
	for hops := 0; ; hops++ {
		ref := sch.Ref.String()
		if ref == "" {
			return sch, name, nil
		}
		if hops >= maxRefHops {
			return spec.Schema{}, "", fmt.Errorf("$ref %q: too many indirections", ref)
		}
		target, targetName, err := lookupRef(root, ref)
		if err != nil {
			return spec.Schema{}, "", err
		}
		if targetName != "" {
			name = targetName
		}
		sch = target
	}
}

func lookupRef(root *spec.Schema, ref string) (spec.Schema, string, error) {
	fragment, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return spec.Schema{}, "", fmt.Errorf("$ref %q: only local references are supported", ref)
	}
	ptr, err := jsonpointer.New(fragment)
	if err != nil {
		return spec.Schema{}, "", fmt.Errorf("$ref %q: %w", ref, err)
	}

	cur := *root
	name := ""
	tokens := ptr.DecodedTokens()
	next := func(i int) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("$ref %q: %s needs a key", ref, tokens[i])
		}
		return tokens[i+1], nil
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "definitions", "properties", "patternProperties":
			key, err := next(i)
			if err != nil {
				return spec.Schema{}, "", err
			}
			var m map[string]spec.Schema
			switch tok {
			case "definitions":
				m = cur.Definitions
			case "properties":
				m = cur.Properties
			default:
				m = cur.PatternProperties
			}
			s, ok := m[key]
			if !ok {
				return spec.Schema{}, "", fmt.Errorf("$ref %q: %s/%s not found", ref, tok, key)
			}
			cur = s
			if tok != "patternProperties" {
				name = key
			}
			i++
		case "items":
			if cur.Items == nil {
				return spec.Schema{}, "", fmt.Errorf("$ref %q: no items", ref)
			}
			if cur.Items.Schema != nil {
				cur = *cur.Items.Schema
				continue
			}
			s, err := indexed(ref, cur.Items.Schemas, tokens, i)
			if err != nil {
				return spec.Schema{}, "", err
			}
			cur = s
			i++
		case "additionalProperties":
			if cur.AdditionalProperties == nil || cur.AdditionalProperties.Schema == nil {
				return spec.Schema{}, "", fmt.Errorf("$ref %q: no additionalProperties schema", ref)
			}
			cur = *cur.AdditionalProperties.Schema
		case "oneOf", "anyOf", "allOf":
			branches := cur.OneOf
			if tok == "anyOf" {
				branches = cur.AnyOf
			} else if tok == "allOf" {
				branches = cur.AllOf
			}
			s, err := indexed(ref, branches, tokens, i)
			if err != nil {
				return spec.Schema{}, "", err
			}
			cur = s
			i++
		default:
			return spec.Schema{}, "", fmt.Errorf("$ref %q: unsupported segment %q", ref, tok)
		}
	}
	return cur, name, nil
}

func indexed(ref string, schemas []spec.Schema, tokens []string, i int) (spec.Schema, error) {
	if i+1 >= len(tokens) {
		return spec.Schema{}, fmt.Errorf("$ref %q: %s needs an index", ref, tokens[i])
	}
	n, err := strconv.Atoi(tokens[i+1])
	if err != nil || n < 0 || n >= len(schemas) {
		return spec.Schema{}, fmt.Errorf("$ref %q: index %q out of range", ref, tokens[i+1])
	}
	return schemas[n], nil
}
