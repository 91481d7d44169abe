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

import (
	"slices"

	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// DatabaseDiff is the difference between an old and a new database.
type DatabaseDiff struct {
	Services MapDiff[*model.Service, *ServiceDiff]

	oldResolver model.DefinitionResolver
	newResolver model.DefinitionResolver
}

// Empty returns true if the databases are equivalent.
func (d *DatabaseDiff) Empty() bool {
	return d.Services.Empty()
}

type ServiceDiff struct {
	ShortName               *ScalarDiff[string]
	Capitalized             *ScalarDiff[string]
	CloudFormationNamespace *ScalarDiff[string]
	Resources               MapDiff[*model.Resource, *ResourceDiff]
}

func (d *ServiceDiff) empty() bool {
	return d.ShortName == nil && d.Capitalized == nil && d.CloudFormationNamespace == nil && d.Resources.Empty()
}

type ResourceDiff struct {
	Name                    *ScalarDiff[string]
	Documentation           *ScalarDiff[string]
	Scrutinizable           *ScalarDiff[string]
	CloudFormationTransform *ScalarDiff[string]
	IsStateful              *ScalarDiff[bool]
	PrimaryIdentifier       *ScalarDiff[[]string]
	TagInformation          *ScalarDiff[*model.TagInformation]
	Properties              MapDiff[*model.Property, *PropertyDiff]
	Attributes              MapDiff[*model.Property, *PropertyDiff]
	TypeDefinitions         MapDiff[*model.TypeDefinition, *TypeDefinitionDiff]

	AdditionalReplacementProperties *ScalarDiff[[][]string]
}

func (d *ResourceDiff) empty() bool {
	return d.Name == nil && d.Documentation == nil && d.Scrutinizable == nil &&
		d.CloudFormationTransform == nil && d.IsStateful == nil && d.PrimaryIdentifier == nil &&
		d.AdditionalReplacementProperties == nil &&
		d.TagInformation == nil && d.Properties.Empty() && d.Attributes.Empty() && d.TypeDefinitions.Empty()
}

type TypeDefinitionDiff struct {
	Documentation         *ScalarDiff[string]
	MustRenderForBwCompat *ScalarDiff[bool]
	Properties            MapDiff[*model.Property, *PropertyDiff]
}

func (d *TypeDefinitionDiff) empty() bool {
	return d.Documentation == nil && d.MustRenderForBwCompat == nil && d.Properties.Empty()
}

type PropertyDiff struct {
	Type              *ScalarDiff[model.PropertyType]
	PreviousTypes     *ListDiff[model.PropertyType]
	Required          *ScalarDiff[bool]
	DefaultValue      *ScalarDiff[string]
	Deprecated        *ScalarDiff[model.Deprecation]
	CausesReplacement *ScalarDiff[model.Replacement]
	Documentation     *ScalarDiff[string]
	Scrutinizable     *ScalarDiff[string]
	RelationshipRefs  *ListDiff[model.RelationshipRef]
}

func (d *PropertyDiff) empty() bool {
	return d.Type == nil && d.PreviousTypes == nil && d.Required == nil && d.DefaultValue == nil &&
		d.Deprecated == nil && d.CausesReplacement == nil && d.Documentation == nil &&
		d.Scrutinizable == nil && d.RelationshipRefs == nil
}

// Compare returns the structural difference between two databases.
// Identifiers are never compared across databases: types are compared by
// their normalized form, each resolved against its own database.
func Compare(oldDB, newDB *store.Store) *DatabaseDiff {
	c := comparer{
		oldDB: oldDB,
		newDB: newDB,
		oldR:  model.Resolver(oldDB),
		newR:  model.Resolver(newDB),
	}
	return &DatabaseDiff{
		Services:    diffMap(servicesByName(oldDB), servicesByName(newDB), c.service),
		oldResolver: c.oldR,
		newResolver: c.newR,
	}
}

type comparer struct {
	oldDB, newDB *store.Store
	oldR, newR   model.DefinitionResolver
}

func servicesByName(db *store.Store) map[string]*model.Service {
	out := map[string]*model.Service{}
	for _, svc := range model.Services(db) {
		out[svc.Name] = svc
	}
	return out
}

func (c comparer) service(a, b *model.Service) (*ServiceDiff, bool) {
	d := &ServiceDiff{
		ShortName:               diffScalar(a.ShortName, b.ShortName),
		Capitalized:             diffScalar(a.Capitalized, b.Capitalized),
		CloudFormationNamespace: diffScalar(a.CloudFormationNamespace, b.CloudFormationNamespace),
		Resources:               diffMap(resourcesByType(c.oldDB, a), resourcesByType(c.newDB, b), c.resource),
	}
	return d, !d.empty()
}

func resourcesByType(db *store.Store, svc *model.Service) map[string]*model.Resource {
	out := map[string]*model.Resource{}
	for _, res := range model.ResourcesOf(db, svc) {
		out[res.CloudFormationType] = res
	}
	return out
}

func typeDefinitionsByName(db *store.Store, res *model.Resource) map[string]*model.TypeDefinition {
	out := map[string]*model.TypeDefinition{}
	for _, td := range model.TypeDefinitionsOf(db, res) {
		out[td.Name] = td
	}
	return out
}

func (c comparer) resource(a, b *model.Resource) (*ResourceDiff, bool) {
	d := &ResourceDiff{
		Name:                    diffScalar(a.Name, b.Name),
		Documentation:           diffScalar(a.Documentation, b.Documentation),
		Scrutinizable:           diffScalar(a.Scrutinizable, b.Scrutinizable),
		CloudFormationTransform: diffScalar(a.CloudFormationTransform, b.CloudFormationTransform),
		IsStateful:              diffScalar(ptr.Deref(a.IsStateful, false), ptr.Deref(b.IsStateful, false)),
		Properties:              diffMap(a.Properties, b.Properties, c.property),
		Attributes:              diffMap(a.Attributes, b.Attributes, c.property),
		TypeDefinitions: diffMap(typeDefinitionsByName(c.oldDB, a), typeDefinitionsByName(c.newDB, b),
			c.typeDefinition),
	}
	if !slices.Equal(a.PrimaryIdentifier, b.PrimaryIdentifier) {
		d.PrimaryIdentifier = &ScalarDiff[[]string]{Old: a.PrimaryIdentifier, New: b.PrimaryIdentifier}
	}
	if !slices.EqualFunc(a.AdditionalReplacementProperties, b.AdditionalReplacementProperties, slices.Equal[[]string]) {
		d.AdditionalReplacementProperties = &ScalarDiff[[][]string]{
			Old: a.AdditionalReplacementProperties,
			New: b.AdditionalReplacementProperties,
		}
	}
	if !equalTagInformation(a.TagInformation, b.TagInformation) {
		d.TagInformation = &ScalarDiff[*model.TagInformation]{Old: a.TagInformation, New: b.TagInformation}
	}
	return d, !d.empty()
}

func equalTagInformation(a, b *model.TagInformation) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (c comparer) typeDefinition(a, b *model.TypeDefinition) (*TypeDefinitionDiff, bool) {
	d := &TypeDefinitionDiff{
		Documentation:         diffScalar(a.Documentation, b.Documentation),
		MustRenderForBwCompat: diffScalar(a.MustRenderForBwCompat, b.MustRenderForBwCompat),
		Properties:            diffMap(a.Properties, b.Properties, c.property),
	}
	return d, !d.empty()
}

func (c comparer) equalTypes(a, b model.PropertyType) bool {
	return model.Equal(a, c.oldR, b, c.newR)
}

func (c comparer) property(a, b *model.Property) (*PropertyDiff, bool) {
	d := &PropertyDiff{
		PreviousTypes:     diffList(a.PreviousTypes, b.PreviousTypes, c.equalTypes),
		Required:          diffScalar(a.IsRequired(), b.IsRequired()),
		DefaultValue:      diffScalar(ptr.Deref(a.DefaultValue, ""), ptr.Deref(b.DefaultValue, "")),
		Deprecated:        diffScalar(a.Deprecated, b.Deprecated),
		CausesReplacement: diffScalar(a.CausesReplacement, b.CausesReplacement),
		Documentation:     diffScalar(a.Documentation, b.Documentation),
		Scrutinizable:     diffScalar(a.Scrutinizable, b.Scrutinizable),
		RelationshipRefs: diffList(a.RelationshipRefs, b.RelationshipRefs, func(x, y model.RelationshipRef) bool {
			return x == y
		}),
	}
	if !c.equalTypes(a.Type, b.Type) {
		d.Type = &ScalarDiff[model.PropertyType]{Old: a.Type, New: b.Type}
	}
	return d, !d.empty()
}
