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
	"fmt"
	"maps"
	"slices"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
)

// sharedTagType is the bare property type every resource uses for its tag
// list.
const sharedTagType = "Tag"

const tagProperty = "Tags"

// Importer merges resource specifications into a database.
type Importer struct {
	builder *builder.Builder
	report  *problems.Report
	log     logr.Logger
}

// NewImporter returns an Importer writing through b.
func NewImporter(b *builder.Builder, report *problems.Report, log logr.Logger) *Importer {
	return &Importer{
		builder: b,
		report:  report,
		log:     log.WithName("legacy"),
	}
}

// Import merges every resource type of spec. Unconvertible fields are
// reported and skipped; an error is returned only for input the importer
// cannot interpret at all.
func (i *Importer) Import(spec *Specification) ([]*model.Resource, error) {
	var out []*model.Resource
	for _, name := range slices.Sorted(maps.Keys(spec.ResourceTypes)) {
		res, err := i.importResource(spec, name, spec.ResourceTypes[name])
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

type resourceImport struct {
	*Importer
	spec         *Specification
	resourceType string
	rb           *builder.ResourceBuilder
	// visited holds the property types populated by this import.
	visited sets.Set[string]
}

func (i *Importer) importResource(spec *Specification, name string, rt *ResourceType) (*model.Resource, error) {
	rb, err := i.builder.Resource(name)
	if err != nil {
		return nil, err
	}
	ri := &resourceImport{
		Importer:     i,
		spec:         spec,
		resourceType: name,
		rb:           rb,
		visited:      sets.New[string](),
	}

	res := rb.Resource()
	if rt.Documentation != "" {
		res.Documentation = rt.Documentation
	}

	for _, propName := range slices.Sorted(maps.Keys(rt.Properties)) {
		p, err := ri.property(rt.Properties[propName])
		if err != nil {
			if IsUnknownPrimitive(err) {
				return nil, fmt.Errorf("%s.%s: %w", name, propName, err)
			}
			i.report.Add(name, problems.FieldConversion, "property %s: %v", propName, err)
			continue
		}
		rb.SetProperty(propName, p)
	}
	for _, attrName := range slices.Sorted(maps.Keys(rt.Attributes)) {
		t, err := deriveType(rt.Attributes[attrName].Type, ri.namedType, i.builder.Resolver())
		if err != nil {
			if IsUnknownPrimitive(err) {
				return nil, fmt.Errorf("%s attribute %s: %w", name, attrName, err)
			}
			i.report.Add(name, problems.FieldConversion, "attribute %s: %v", attrName, err)
			continue
		}
		rb.SetAttribute(attrName, &model.Property{Type: t})
	}

	if tags, ok := rb.Properties().Staged(tagProperty); ok && looksLikeTags(tags.Type) {
		rb.MarkTagged(tagProperty)
	}
	rb.Commit()
	return res, nil
}

func looksLikeTags(t model.PropertyType) bool {
	if _, ok := model.ElementOf(t).(model.TagType); ok {
		return true
	}
	m, ok := t.(model.MapType)
	return ok && m.Element == model.String
}

func (ri *resourceImport) property(p *Property) (*model.Property, error) {
	t, err := deriveType(p.Type, ri.namedType, ri.builder.Resolver())
	if err != nil {
		return nil, err
	}
	return &model.Property{
		Type:              t,
		Required:          ptr.To(p.Required),
		Documentation:     p.Documentation,
		CausesReplacement: replacement(p.UpdateType),
	}, nil
}

// namedType resolves a property type name to a reference to a type
// definition in the resource's scope. The shared Tag type is the standard
// tag shape.
func (ri *resourceImport) namedType(name string) (model.PropertyType, error) {
	pt, shared, ok := ri.spec.findPropertyType(ri.resourceType, name)
	if !ok {
		return nil, fmt.Errorf("reference to unknown property type %q", name)
	}
	if shared && name == sharedTagType {
		return model.Tag(model.TagStandard), nil
	}

	tb, _ := ri.rb.TypeDefinition(name)
	if ri.visited.Has(name) {
		return tb.Ref(), nil
	}
	ri.visited.Insert(name)

	def := tb.TypeDefinition()
	if pt.Documentation != "" {
		def.Documentation = pt.Documentation
	}
	for _, propName := range slices.Sorted(maps.Keys(pt.Properties)) {
		p, err := ri.property(pt.Properties[propName])
		if err != nil {
			if IsUnknownPrimitive(err) {
				return nil, err
			}
			ri.report.Add(ri.resourceType, problems.FieldConversion, "%s.%s: %v", name, propName, err)
			continue
		}
		tb.SetProperty(propName, p)
	}
	tb.Commit()
	return tb.Ref(), nil
}
