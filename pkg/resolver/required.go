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
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/kube-openapi/pkg/validation/spec"
)

const maxRequiredDepth = 32

// definitelyRequired returns the fields that every instance of sch must
// carry: its own required list, the fields required by every branch of a
// oneOf or anyOf, and the fields required by any branch of an allOf. Nested
// combinators and $refs are followed.
func definitelyRequired(root *spec.Schema, sch spec.Schema) sets.Set[string] {
	return requiredIn(root, sch, 0)
}

func requiredIn(root *spec.Schema, sch spec.Schema, depth int) sets.Set[string] {
	out := sets.New[string]()
	if depth > maxRequiredDepth {
		return out
	}
	resolved, _, err := deref(root, sch)
	if err != nil {
		return out
	}

	out.Insert(resolved.Required...)
	for _, branches := range [][]spec.Schema{resolved.OneOf, resolved.AnyOf} {
		if len(branches) == 0 {
			continue
		}
		common := requiredIn(root, branches[0], depth+1)
		for _, b := range branches[1:] {
			common = common.Intersection(requiredIn(root, b, depth+1))
		}
		out = out.Union(common)
	}
	for _, b := range resolved.AllOf {
		out = out.Union(requiredIn(root, b, depth+1))
	}
	return out
}
