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

package store

import (
	"fmt"
	"slices"
	"strings"
)

// Operator selects how a Lookup compares index values.
type Operator string

const (
	Equals    Operator = "="
	HasPrefix Operator = "^="
)

// Result is the outcome of a Lookup. The zero value is an empty result.
type Result struct {
	kind     Kind
	field    string
	value    string
	Entities []Entity
}

// Len returns the number of matches.
func (r Result) Len() int {
	return len(r.Entities)
}

// Only returns the single match and panics with a *CardinalityError when
// there are zero or several.
func (r Result) Only() Entity {
	if len(r.Entities) != 1 {
		panic(r.cardinalityError("exactly one"))
	}
	return r.Entities[0]
}

// Optional returns the match if there is one, and panics with a
// *CardinalityError when there are several.
func (r Result) Optional() (Entity, bool) {
	switch len(r.Entities) {
	case 0:
		return nil, false
	case 1:
		return r.Entities[0], true
	default:
		panic(r.cardinalityError("at most one"))
	}
}

func (r Result) cardinalityError(expected string) *CardinalityError {
	return &CardinalityError{
		Kind:     r.kind,
		Field:    r.field,
		Value:    r.value,
		Expected: expected,
		Got:      len(r.Entities),
	}
}

// Lookup finds entities of a kind by an indexed field. It never fails: an
// unknown value yields an empty result. Looking up a field that was never
// indexed is a programming error and panics.
func (s *Store) Lookup(kind Kind, field string, op Operator, value string) Result {
	fields, ok := s.indexes[kind]
	if !ok {
		panic(fmt.Sprintf("store: unknown entity kind %q", kind))
	}
	index, ok := fields[field]
	if !ok {
		panic(fmt.Sprintf("store: field %q of kind %q is not indexed", field, kind))
	}

	var ids []ID
	switch op {
	case Equals:
		ids = slices.Clone(index[value])
	case HasPrefix:
		for key, matches := range index {
			if strings.HasPrefix(key, value) {
				ids = append(ids, matches...)
			}
		}
		// allocation order, independent of map iteration
		slices.Sort(ids)
	default:
		panic(fmt.Sprintf("store: unsupported lookup operator %q", op))
	}

	return Result{
		kind:     kind,
		field:    field,
		value:    value,
		Entities: s.resolveAll(ids),
	}
}
