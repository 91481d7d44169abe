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
	"strings"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
)

// fieldPath is a resolved path to a property, possibly nested in type
// definitions.
type fieldPath struct {
	// names are the path segments without array wildcards.
	names    []string
	property *model.Property
	// topLevel is true for a staged resource property.
	topLevel bool
}

func (fp fieldPath) attributeName() string {
	return strings.Join(fp.names, ".")
}

// walk resolves path against the staged properties, unwrapping arrays and
// maps and following refs into type definitions.
func (s *session) walk(path string) (fieldPath, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return fieldPath{}, false
	}
	p, ok := s.rb.Properties().Staged(segs[0])
	if !ok {
		return fieldPath{}, false
	}

	fp := fieldPath{names: []string{segs[0]}, property: p, topLevel: true}
	for _, seg := range segs[1:] {
		if seg == "*" {
			continue
		}
		ref, ok := model.ElementOf(fp.property.Type).(model.RefType)
		if !ok {
			return fieldPath{}, false
		}
		def, ok := s.resolver.TypeDefinition(ref.Reference)
		if !ok {
			return fieldPath{}, false
		}
		next, ok := def.Properties[seg]
		if !ok {
			return fieldPath{}, false
		}
		fp.names = append(fp.names, seg)
		fp.property = next
		fp.topLevel = false
	}
	return fp, true
}

// markPaths applies mark to every property named by paths. Unknown paths are
// reported, except those under a field that already failed to convert.
func (s *session) markPaths(paths []string, mark func(*model.Property)) {
	for _, path := range paths {
		fp, ok := s.walk(path)
		if !ok {
			if segs := splitPath(path); len(segs) > 0 && s.failed.Has(segs[0]) {
				continue
			}
			s.report.Add(s.doc.TypeName, problems.UnresolvedPath, "path %q does not name a property", path)
			continue
		}
		mark(fp.property)
	}
}

// reclassifyAttributes moves read-only fields from the staged properties to
// the staged attributes.
//
// A top level field stays a property when the resource already has a
// property of that name and an attribute of that name with a different
// type: the source describes two distinct fields sharing a name. Nested
// paths add an attribute named by the dotted path and leave the type
// definitions alone.
func (s *session) reclassifyAttributes() {
	props := s.rb.Properties()
	for _, path := range s.doc.ReadOnlyProperties {
		fp, ok := s.walk(path)
		if !ok {
			s.log.V(1).Info("read-only path does not resolve", "path", path)
			continue
		}
		name := fp.attributeName()

		if !fp.topLevel {
			s.rb.SetAttribute(name, attributeOf(fp.property))
			continue
		}
		if s.collides(name, fp.property) {
			s.log.V(1).Info("keeping read-only field as property", "name", name)
			continue
		}
		props.Delete(name)
		s.rb.SetAttribute(name, attributeOf(fp.property))
	}
}

func (s *session) collides(name string, candidate *model.Property) bool {
	if _, ok := s.rb.Properties().Committed(name); !ok {
		return false
	}
	attr, ok := s.rb.Attributes().Committed(name)
	if !ok {
		return false
	}
	return !model.Equal(attr.Type, s.resolver, candidate.Type, s.resolver)
}

func attributeOf(p *model.Property) *model.Property {
	attr := p.Clone()
	attr.Required = nil
	attr.DefaultValue = nil
	attr.CausesReplacement = ""
	attr.Scrutinizable = ""
	return attr
}

// detectTagging rewrites the tag property of a taggable resource.
func (s *session) detectTagging() {
	if !s.doc.isTaggable() {
		return
	}
	name := s.doc.tagProperty()
	if s.rb.MarkTagged(name) {
		return
	}
	if s.doc.explicitlyTaggable() && !s.failed.Has(name) {
		s.report.Add(s.doc.TypeName, problems.MissingTagProperty, "taggable resource has no property %q", name)
	}
}
