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

package diff

import "k8s.io/apimachinery/pkg/util/sets"

// ScalarDiff holds both sides of a changed value.
type ScalarDiff[T any] struct {
	Old T
	New T
}

// MapDiff holds the changes between two keyed collections. Added entries come
// from the new side and removed entries from the old side.
type MapDiff[T any, U any] struct {
	Added   map[string]T
	Removed map[string]T
	Updated map[string]U
}

// Empty returns true if nothing changed.
func (m MapDiff[T, U]) Empty() bool {
	return len(m.Added) == 0 && len(m.Removed) == 0 && len(m.Updated) == 0
}

// ListDiff holds the elements of an unkeyed list present on one side only.
type ListDiff[T any] struct {
	Added   []T
	Removed []T
}

func diffScalar[T comparable](a, b T) *ScalarDiff[T] {
	if a == b {
		return nil
	}
	return &ScalarDiff[T]{Old: a, New: b}
}

// diffMap buckets the keys of a and b. update compares an entry present on
// both sides and returns false when it is unchanged.
func diffMap[T any, U any](a, b map[string]T, update func(x, y T) (U, bool)) MapDiff[T, U] {
	out := MapDiff[T, U]{
		Added:   map[string]T{},
		Removed: map[string]T{},
		Updated: map[string]U{},
	}
	oldKeys, newKeys := sets.KeySet(a), sets.KeySet(b)
	for _, key := range sets.List(oldKeys.Difference(newKeys)) {
		out.Removed[key] = a[key]
	}
	for _, key := range sets.List(newKeys.Difference(oldKeys)) {
		out.Added[key] = b[key]
	}
	for _, key := range sets.List(oldKeys.Intersection(newKeys)) {
		if u, changed := update(a[key], b[key]); changed {
			out.Updated[key] = u
		}
	}
	return out
}

// diffList matches every element of a against the first unclaimed equal
// element of b. Unmatched elements of a are removed, unmatched elements of b
// are added.
func diffList[T any](a, b []T, equal func(x, y T) bool) *ListDiff[T] {
	claimed := make([]bool, len(b))
	out := &ListDiff[T]{}
	for _, x := range a {
		found := false
		for j, y := range b {
			if claimed[j] || !equal(x, y) {
				continue
			}
			claimed[j] = true
			found = true
			break
		}
		if !found {
			out.Removed = append(out.Removed, x)
		}
	}
	for j, y := range b {
		if !claimed[j] {
			out.Added = append(out.Added, y)
		}
	}
	if len(out.Added) == 0 && len(out.Removed) == 0 {
		return nil
	}
	return out
}
