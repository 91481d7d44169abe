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
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/kube-openapi/pkg/validation/spec"
	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// Resolver imports registry schemas into a database.
type Resolver struct {
	builder *builder.Builder
	report  *problems.Report
	log     logr.Logger
}

// New returns a Resolver writing through b. Recoverable problems are added
// to report, which may be nil.
func New(b *builder.Builder, report *problems.Report, log logr.Logger) *Resolver {
	return &Resolver{
		builder: b,
		report:  report,
		log:     log.WithName("resolver"),
	}
}

// session holds the state of importing one document.
type session struct {
	*Resolver

	doc      *RegistrySchema
	root     *spec.Schema
	rb       *builder.ResourceBuilder
	resolver model.DefinitionResolver
	log      logr.Logger

	// fresh holds the type definitions created or refreshed by this import.
	// They are complete, or being completed further up the stack, and are
	// never recursed into again.
	fresh sets.Set[store.ID]
	// failed holds top level fields whose conversion was reported.
	failed sets.Set[string]
	// resolving holds the $ref targets on the current typeOf stack.
	resolving sets.Set[string]
}

// Import converts doc and merges it into the database. Fields that cannot be
// converted are reported and skipped; the returned error is non-nil only
// when the whole import must be abandoned.
func (r *Resolver) Import(doc *RegistrySchema) (*model.Resource, error) {
	rb, err := r.builder.Resource(doc.TypeName)
	if err != nil {
		return nil, err
	}

	s := &session{
		Resolver: r,
		doc:      doc,
		root:     &doc.Schema,
		rb:       rb,
		resolver: r.builder.Resolver(),
		log:      r.log.WithValues("resource", doc.TypeName),
		fresh:    sets.New[store.ID](),
		failed:   sets.New[string](),

		resolving: sets.New[string](),
	}

	res := rb.Resource()
	if doc.Description != "" {
		res.Documentation = doc.Description
	}

	required := definitelyRequired(s.root, doc.Schema)
	for _, name := range slices.Sorted(maps.Keys(doc.Schema.Properties)) {
		p, err := s.fieldProperty(name, doc.Schema.Properties[name], required.Has(name))
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			s.failed.Insert(name)
			r.report.Add(doc.TypeName, problems.FieldConversion, "property %s: %v", name, err)
			continue
		}
		rb.SetProperty(name, p)
	}

	s.markPaths(doc.CreateOnlyProperties, func(p *model.Property) {
		p.CausesReplacement = model.ReplacementYes
	})
	s.markPaths(doc.DeprecatedProperties, func(p *model.Property) {
		p.Deprecated = model.DeprecationWarn
	})
	if len(doc.PrimaryIdentifier) > 0 {
		ids := make([]string, 0, len(doc.PrimaryIdentifier))
		for _, path := range doc.PrimaryIdentifier {
			ids = append(ids, strings.Join(splitPath(path), "."))
		}
		res.PrimaryIdentifier = ids
	}
	s.reclassifyAttributes()
	s.detectTagging()

	rb.Commit()
	return res, nil
}

// fieldProperty converts one field schema into a Property candidate.
func (s *session) fieldProperty(name string, sch spec.Schema, required bool) (*model.Property, error) {
	t, err := s.typeOf(name, sch)
	if err != nil {
		return nil, err
	}

	p := &model.Property{
		Type:     t,
		Required: ptr.To(required),
	}

	resolved, _, err := deref(s.root, sch)
	if err != nil {
		return nil, err
	}
	p.Documentation = sch.Description
	if p.Documentation == "" {
		p.Documentation = resolved.Description
	}
	def := sch.Default
	if def == nil {
		def = resolved.Default
	}
	if def != nil {
		raw, err := json.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("default value: %w", err)
		}
		p.DefaultValue = ptr.To(string(raw))
	}
	p.RelationshipRefs = relationshipRefs(sch, resolved)
	return p, nil
}

// relationshipRefs reads the relationshipRef annotation from a field or its
// items.
func relationshipRefs(schemas ...spec.Schema) []model.RelationshipRef {
	var refs []model.RelationshipRef
	seen := sets.New[model.RelationshipRef]()
	add := func(sch spec.Schema) {
		raw, ok := sch.ExtraProps["relationshipRef"].(map[string]interface{})
		if !ok {
			return
		}
		typeName, _ := raw["typeName"].(string)
		path, _ := raw["propertyPath"].(string)
		if typeName == "" || path == "" {
			return
		}
		ref := model.RelationshipRef{
			TargetResourceType: typeName,
			TargetPropertyName: strings.Join(splitPath(path), "."),
		}
		if !seen.Has(ref) {
			seen.Insert(ref)
			refs = append(refs, ref)
		}
	}
	for _, sch := range schemas {
		add(sch)
		if sch.Items != nil && sch.Items.Schema != nil {
			add(*sch.Items.Schema)
		}
	}
	return refs
}

// typeOf classifies a schema. hint names the type definition an inline
// record turns into; a $ref target's name takes precedence.
func (s *session) typeOf(hint string, sch spec.Schema) (model.PropertyType, error) {
	resolved, refName, err := deref(s.root, sch)
	if err != nil {
		return nil, err
	}
	if refName != "" {
		hint = refName
	}
	if ref := sch.Ref.String(); ref != "" {
		if s.resolving.Has(ref) {
			// records close their cycle through the type definition
			if !isObject(resolved) || len(resolved.Properties) == 0 || isMapLike(resolved) {
				s.report.Add(s.doc.TypeName, problems.FieldConversion, "%s: recursive reference %s typed as json", hint, ref)
				return model.JSON, nil
			}
		} else {
			s.resolving.Insert(ref)
			defer s.resolving.Delete(ref)
		}
	}

	switch {
	case isOpaque(resolved):
		return model.JSON, nil
	case hasCombinator(resolved) && len(resolved.Properties) == 0 && s.hasTypedBranch(resolved):
		return s.combinatorType(hint, resolved)
	}

	if len(resolved.Type) > 1 {
		members := make([]model.PropertyType, 0, len(resolved.Type))
		for _, typeName := range resolved.Type {
			single := resolved
			single.Type = spec.StringOrArray{typeName}
			t, err := s.typeOf(hint, single)
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		return s.union(members)
	}

	switch {
	case isObject(resolved):
		return s.objectType(hint, resolved)
	case isArray(resolved):
		return s.arrayType(hint, resolved)
	}
	return primitiveType(resolved)
}

func (s *session) union(members []model.PropertyType) (model.PropertyType, error) {
	t, err := model.NewUnion(members, s.resolver)
	if err != nil {
		if errors.Is(err, model.ErrEmptyUnion) {
			return nil, fatal(s.doc.TypeName, err)
		}
		return nil, err
	}
	return t, nil
}

func isOpaque(sch spec.Schema) bool {
	return len(sch.Type) == 0 &&
		!hasCombinator(sch) &&
		len(sch.Properties) == 0 &&
		!isMapLike(sch) &&
		sch.Items == nil &&
		len(sch.Enum) == 0 &&
		sch.ExtraProps["const"] == nil
}

func hasCombinator(sch spec.Schema) bool {
	return len(sch.OneOf) > 0 || len(sch.AnyOf) > 0 || len(sch.AllOf) > 0
}

func isMapLike(sch spec.Schema) bool {
	return len(sch.PatternProperties) > 0 ||
		(sch.AdditionalProperties != nil && sch.AdditionalProperties.Schema != nil)
}

func isObject(sch spec.Schema) bool {
	if len(sch.Type) > 0 {
		return sch.Type.Contains("object")
	}
	return len(sch.Properties) > 0 || isMapLike(sch)
}

func isArray(sch spec.Schema) bool {
	if len(sch.Type) > 0 {
		return sch.Type.Contains("array")
	}
	return sch.Items != nil
}

// isTyped reports whether a combinator branch describes a shape rather than
// only constraining its parent, as in oneOf: [{required: [A]}, {required: [B]}].
func (s *session) isTyped(sch spec.Schema) bool {
	if sch.Ref.String() != "" || len(sch.Type) > 0 || len(sch.Properties) > 0 || sch.Items != nil || isMapLike(sch) {
		return true
	}
	return hasCombinator(sch) && s.hasTypedBranch(sch)
}

func (s *session) hasTypedBranch(sch spec.Schema) bool {
	return slices.ContainsFunc(branchesOf(sch), s.isTyped)
}

// branchesOf lists the branches that contribute to a schema's type. Only
// the first allOf branch is honored.
func branchesOf(sch spec.Schema) []spec.Schema {
	var out []spec.Schema
	out = append(out, sch.OneOf...)
	out = append(out, sch.AnyOf...)
	if len(sch.AllOf) > 0 {
		out = append(out, sch.AllOf[0])
	}
	return out
}

func (s *session) combinatorType(hint string, sch spec.Schema) (model.PropertyType, error) {
	var typed []spec.Schema
	for _, b := range branchesOf(sch) {
		if s.isTyped(b) {
			typed = append(typed, b)
		}
	}

	if len(typed) >= 2 && s.allRecords(typed) {
		merged := s.mergeRecords(typed)
		s.report.Add(s.doc.TypeName, problems.UnionOfObjects,
			"%s: merged %d record branches into one type", hint, len(typed))
		return s.objectType(hint, merged)
	}

	members := make([]model.PropertyType, 0, len(typed))
	for _, b := range typed {
		t, err := s.typeOf(hint, b)
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	return s.union(members)
}

// isRecord reports whether sch, once dereferenced, becomes a named record
// type.
func (s *session) isRecord(sch spec.Schema) bool {
	resolved, _, err := deref(s.root, sch)
	if err != nil || hasCombinator(resolved) {
		return false
	}
	return isObject(resolved) && !isMapLike(resolved) && len(resolved.Properties) > 0 && !s.isTagShape(resolved)
}

func (s *session) allRecords(branches []spec.Schema) bool {
	for _, b := range branches {
		if !s.isRecord(b) {
			return false
		}
	}
	return true
}

// mergeRecords builds one object schema holding the fields of every branch.
// A field keeps the schema of the first branch declaring it, and is required
// only when every branch requires it.
func (s *session) mergeRecords(branches []spec.Schema) spec.Schema {
	merged := spec.Schema{}
	merged.Type = spec.StringOrArray{"object"}
	merged.Properties = map[string]spec.Schema{}

	var required sets.Set[string]
	for _, b := range branches {
		resolved, _, _ := deref(s.root, b)
		for name, field := range resolved.Properties {
			if _, ok := merged.Properties[name]; !ok {
				merged.Properties[name] = field
			}
		}
		req := definitelyRequired(s.root, resolved)
		if required == nil {
			required = req
		} else {
			required = required.Intersection(req)
		}
	}
	merged.Required = sets.List(required)
	return merged
}

func (s *session) objectType(hint string, sch spec.Schema) (model.PropertyType, error) {
	if isMapLike(sch) {
		elem, err := s.typeOf(hint, mapElementSchema(sch))
		if err != nil {
			return nil, err
		}
		return model.Map(elem), nil
	}
	if len(sch.Properties) == 0 {
		return model.JSON, nil
	}
	if s.isTagShape(sch) {
		return model.Tag(model.TagStandard), nil
	}
	return s.namedType(hint, sch)
}

// mapElementSchema unifies every pattern branch and the additionalProperties
// schema into the schema of one map value.
func mapElementSchema(sch spec.Schema) spec.Schema {
	var branches []spec.Schema
	for _, pattern := range slices.Sorted(maps.Keys(sch.PatternProperties)) {
		branches = append(branches, sch.PatternProperties[pattern])
	}
	if sch.AdditionalProperties != nil && sch.AdditionalProperties.Schema != nil {
		branches = append(branches, *sch.AdditionalProperties.Schema)
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return spec.Schema{SchemaProps: spec.SchemaProps{AnyOf: branches}}
}

// isTagShape matches the canonical {Key: string, Value: string} record.
func (s *session) isTagShape(sch spec.Schema) bool {
	if len(sch.Properties) != 2 {
		return false
	}
	for _, name := range []string{"Key", "Value"} {
		field, ok := sch.Properties[name]
		if !ok {
			return false
		}
		resolved, _, err := deref(s.root, field)
		if err != nil || len(resolved.Type) != 1 || resolved.Type[0] != "string" {
			return false
		}
	}
	return true
}

// namedType resolves a record schema to a type definition in the resource's
// scope. The definition is linked and marked fresh before its fields are
// converted, so a field referring back to it terminates.
func (s *session) namedType(name string, sch spec.Schema) (model.PropertyType, error) {
	if existing, ok := s.rb.FindTypeDefinition(name); ok {
		if s.fresh.Has(existing.EntityID()) {
			return model.Ref(existing), nil
		}
		if sets.KeySet(existing.Properties).IsSuperset(sets.KeySet(sch.Properties)) {
			s.log.V(1).Info("reusing type definition", "name", name)
			return model.Ref(existing), nil
		}
	}

	tb, _ := s.rb.TypeDefinition(name)
	def := tb.TypeDefinition()
	s.fresh.Insert(def.EntityID())
	if def.Documentation == "" {
		def.Documentation = sch.Description
	}

	required := definitelyRequired(s.root, sch)
	for _, field := range slices.Sorted(maps.Keys(sch.Properties)) {
		p, err := s.fieldProperty(field, sch.Properties[field], required.Has(field))
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			s.report.Add(s.doc.TypeName, problems.FieldConversion, "%s.%s: %v", name, field, err)
			continue
		}
		tb.SetProperty(field, p)
	}
	tb.Commit()
	return tb.Ref(), nil
}

func (s *session) arrayType(hint string, sch spec.Schema) (model.PropertyType, error) {
	if sch.Items == nil {
		return model.Array(model.JSON), nil
	}
	itemHint := hint + "Items"
	if sch.Items.Schema != nil {
		elem, err := s.typeOf(itemHint, *sch.Items.Schema)
		if err != nil {
			return nil, err
		}
		return model.Array(elem), nil
	}
	if len(sch.Items.Schemas) == 0 {
		return model.Array(model.JSON), nil
	}
	members := make([]model.PropertyType, 0, len(sch.Items.Schemas))
	for _, item := range sch.Items.Schemas {
		t, err := s.typeOf(itemHint, item)
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	elem, err := s.union(members)
	if err != nil {
		return nil, err
	}
	return model.Array(elem), nil
}

func primitiveType(sch spec.Schema) (model.PropertyType, error) {
	if len(sch.Type) == 0 {
		if allStrings(sch.Enum) && (len(sch.Enum) > 0 || isString(sch.ExtraProps["const"])) {
			return model.String, nil
		}
		return model.JSON, nil
	}

	switch sch.Type[0] {
	case "string":
		if sch.Format == "date-time" || sch.Format == "timestamp" {
			return model.DateTime, nil
		}
		return model.String, nil
	case "number":
		return model.Number, nil
	case "integer":
		return model.Integer, nil
	case "boolean":
		return model.Boolean, nil
	case "null":
		return model.Null, nil
	}
	return nil, unsupportedf("type %q", sch.Type[0])
}

func allStrings(values []interface{}) bool {
	for _, v := range values {
		if !isString(v) {
			return false
		}
	}
	return true
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}
