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
	"slices"
	"strings"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// DefinitionResolver dereferences RefType targets. Each store has its own
// resolver; references are meaningless outside the store that issued them.
type DefinitionResolver interface {
	TypeDefinition(id store.ID) (*TypeDefinition, bool)
}

// CanonicalForm is the store independent rendering of a PropertyType. Two
// types are normalized-equal exactly when their canonical forms are equal.
type CanonicalForm string

// Normalize renders t with references replaced by the structure of their
// definitions and union members in sorted order.
//
// References are unfolded one level deep: the fields of a referenced
// definition are rendered, but a reference found inside those fields renders
// as the definition name only. Recursive definitions therefore terminate.
func Normalize(t PropertyType, r DefinitionResolver) CanonicalForm {
	rd := renderer{resolver: r, sortUnions: true}
	var b strings.Builder
	rd.write(&b, t, 1)
	return CanonicalForm(b.String())
}

// Render returns the textual form of t as stored: references render as
// their IDs and union members keep their order.
func Render(t PropertyType) string {
	var b strings.Builder
	renderer{}.write(&b, t, 0)
	return b.String()
}

// Equal reports whether a (from the store behind ra) and b (from the store
// behind rb) are normalized-equal.
func Equal(a PropertyType, ra DefinitionResolver, b PropertyType, rb DefinitionResolver) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Normalize(a, ra) == Normalize(b, rb)
}

// RemoveDuplicates keeps the first occurrence of every normalized-equal
// type, preserving order. It fails when the result would be empty.
func RemoveDuplicates(types []PropertyType, r DefinitionResolver) ([]PropertyType, error) {
	seen := make(map[CanonicalForm]struct{}, len(types))
	out := make([]PropertyType, 0, len(types))
	for _, t := range types {
		if t == nil {
			continue
		}
		key := Normalize(t, r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrEmptyUnion
	}
	return out, nil
}

type renderer struct {
	resolver   DefinitionResolver
	sortUnions bool
}

func (rd renderer) write(b *strings.Builder, t PropertyType, depth int) {
	switch v := t.(type) {
	case nil:
		b.WriteString("<nil>")
	case Primitive:
		b.WriteString(string(v))
	case TagType:
		b.WriteString("tag(")
		b.WriteString(string(v.Variant))
		b.WriteString(")")
	case ArrayType:
		b.WriteString("array<")
		rd.write(b, v.Element, depth)
		b.WriteString(">")
	case MapType:
		b.WriteString("map<")
		rd.write(b, v.Element, depth)
		b.WriteString(">")
	case UnionType:
		members := make([]string, 0, len(v.Members))
		for _, m := range v.Members {
			var mb strings.Builder
			rd.write(&mb, m, depth)
			members = append(members, mb.String())
		}
		if rd.sortUnions {
			slices.Sort(members)
		}
		b.WriteString("union<")
		b.WriteString(strings.Join(members, " | "))
		b.WriteString(">")
	case RefType:
		rd.writeRef(b, v, depth)
	}
}

func (rd renderer) writeRef(b *strings.Builder, ref RefType, depth int) {
	if rd.resolver == nil {
		b.WriteString("ref<")
		b.WriteString(ref.Reference.String())
		b.WriteString(">")
		return
	}
	def, ok := rd.resolver.TypeDefinition(ref.Reference)
	if !ok {
		b.WriteString("ref<unresolved>")
		return
	}
	if depth <= 0 {
		b.WriteString("ref<")
		b.WriteString(def.Name)
		b.WriteString(">")
		return
	}

	names := make([]string, 0, len(def.Properties))
	for name := range def.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	b.WriteString(def.Name)
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		rd.write(b, def.Properties[name].Type, depth-1)
	}
	b.WriteString("}")
}
