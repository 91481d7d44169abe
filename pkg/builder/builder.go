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

package builder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// Builder is the entry point every import source uses to create or update
// entities in a database. Resources are keyed by their CloudFormation type
// and services by their derived name, so two sources mentioning the same
// resource always operate on the same entities.
type Builder struct {
	db       *store.Store
	resolver model.DefinitionResolver
	log      logr.Logger
}

// New returns a Builder writing into db.
func New(db *store.Store, log logr.Logger) *Builder {
	return &Builder{
		db:       db,
		resolver: model.Resolver(db),
		log:      log.WithName("builder"),
	}
}

// DB returns the database the builder writes into.
func (b *Builder) DB() *store.Store {
	return b.db
}

// Resolver returns a definition resolver over the builder's database.
func (b *Builder) Resolver() model.DefinitionResolver {
	return b.resolver
}

// ServiceIdentity holds the service fields derived from a CloudFormation type
// name.
type ServiceIdentity struct {
	Name                    string
	ShortName               string
	Capitalized             string
	CloudFormationNamespace string
	ResourceName            string
}

// ParseTypeName derives service naming from a type name such as
// AWS::S3::Bucket. Two segment names such as Foo::Bar form a service of
// their own namespace.
func ParseTypeName(cloudFormationType string) (ServiceIdentity, error) {
	parts := strings.Split(cloudFormationType, "::")
	if len(parts) < 2 || len(parts) > 3 || slices.Contains(parts, "") {
		return ServiceIdentity{}, fmt.Errorf("invalid resource type name %q: expected <Provider>::<Service>::<Resource>", cloudFormationType)
	}
	if len(parts) == 2 {
		return ServiceIdentity{
			Name:                    strings.ToLower(parts[0]),
			ShortName:               strings.ToLower(parts[0]),
			Capitalized:             parts[0],
			CloudFormationNamespace: parts[0],
			ResourceName:            parts[1],
		}, nil
	}
	short := strings.ToLower(parts[1])
	return ServiceIdentity{
		Name:                    strings.ToLower(parts[0]) + "-" + short,
		ShortName:               short,
		Capitalized:             parts[1],
		CloudFormationNamespace: parts[0] + "::" + parts[1],
		ResourceName:            parts[2],
	}, nil
}

// Resource returns a builder for the resource with the given type, creating
// the resource and its service on first use.
func (b *Builder) Resource(cloudFormationType string) (*ResourceBuilder, error) {
	id, err := ParseTypeName(cloudFormationType)
	if err != nil {
		return nil, err
	}

	res, ok := model.ResourceByType(b.db, cloudFormationType)
	if !ok {
		res = b.db.Allocate(&model.Resource{
			Name:               id.ResourceName,
			CloudFormationType: cloudFormationType,
			Properties:         map[string]*model.Property{},
			Attributes:         map[string]*model.Property{},
		}).(*model.Resource)
		b.log.V(1).Info("allocated resource", "type", cloudFormationType, "id", res.EntityID())
	}

	svc := b.service(id)
	if !b.linked(svc, res) {
		b.db.Link(model.RelHasResource, svc, res)
	}

	return &ResourceBuilder{
		builder:    b,
		resource:   res,
		properties: newBag(&res.Properties, b.resolver),
		attributes: newBag(&res.Attributes, b.resolver),
	}, nil
}

func (b *Builder) service(id ServiceIdentity) *model.Service {
	if svc, ok := model.ServiceByName(b.db, id.Name); ok {
		return svc
	}
	return b.db.Allocate(&model.Service{
		Name:                    id.Name,
		ShortName:               id.ShortName,
		Capitalized:             id.Capitalized,
		CloudFormationNamespace: id.CloudFormationNamespace,
	}).(*model.Service)
}

func (b *Builder) linked(svc *model.Service, res *model.Resource) bool {
	for _, r := range model.ResourcesOf(b.db, svc) {
		if r.EntityID() == res.EntityID() {
			return true
		}
	}
	return false
}

// ResourceBuilder stages property and attribute updates for one resource.
type ResourceBuilder struct {
	builder    *Builder
	resource   *model.Resource
	properties *PropertyBagBuilder
	attributes *PropertyBagBuilder
}

// Resource returns the underlying entity.
func (rb *ResourceBuilder) Resource() *model.Resource {
	return rb.resource
}

// Properties returns the builder for the resource's property bag.
func (rb *ResourceBuilder) Properties() *PropertyBagBuilder {
	return rb.properties
}

// Attributes returns the builder for the resource's attribute bag.
func (rb *ResourceBuilder) Attributes() *PropertyBagBuilder {
	return rb.attributes
}

// SetProperty stages a property candidate.
func (rb *ResourceBuilder) SetProperty(name string, p *model.Property) {
	rb.properties.SetProperty(name, p)
}

// SetAttribute stages an attribute candidate.
func (rb *ResourceBuilder) SetAttribute(name string, p *model.Property) {
	rb.attributes.SetProperty(name, p)
}

// Commit applies staged properties, then staged attributes.
func (rb *ResourceBuilder) Commit() {
	rb.properties.Commit()
	rb.attributes.Commit()
}

// FindTypeDefinition returns the definition named name in this resource's
// scope.
func (rb *ResourceBuilder) FindTypeDefinition(name string) (*model.TypeDefinition, bool) {
	return model.FindTypeDefinition(rb.builder.db, rb.resource, name)
}

// TypeDefinition returns a builder for the definition named name in this
// resource's scope, allocating it and linking it to the resource on first use.
// The second return value reports whether the definition was created.
func (rb *ResourceBuilder) TypeDefinition(name string) (*TypeDefinitionBuilder, bool) {
	created := false
	def, ok := rb.FindTypeDefinition(name)
	if !ok {
		def = rb.builder.db.Allocate(&model.TypeDefinition{
			Name:       name,
			Properties: map[string]*model.Property{},
		}).(*model.TypeDefinition)
		rb.builder.db.Link(model.RelUsesType, rb.resource, def)
		created = true
		rb.builder.log.V(1).Info("allocated type definition",
			"resource", rb.resource.CloudFormationType, "name", name, "id", def.EntityID())
	}
	return &TypeDefinitionBuilder{
		definition: def,
		properties: newBag(&def.Properties, rb.builder.resolver),
	}, created
}

// TypeDefinitionBuilder stages property updates for one type definition.
type TypeDefinitionBuilder struct {
	definition *model.TypeDefinition
	properties *PropertyBagBuilder
}

// TypeDefinition returns the underlying entity.
func (tb *TypeDefinitionBuilder) TypeDefinition() *model.TypeDefinition {
	return tb.definition
}

// Properties returns the builder for the definition's property bag.
func (tb *TypeDefinitionBuilder) Properties() *PropertyBagBuilder {
	return tb.properties
}

// SetProperty stages a property candidate.
func (tb *TypeDefinitionBuilder) SetProperty(name string, p *model.Property) {
	tb.properties.SetProperty(name, p)
}

// Commit applies staged properties.
func (tb *TypeDefinitionBuilder) Commit() {
	tb.properties.Commit()
}

// Ref returns a reference type pointing at the definition.
func (tb *TypeDefinitionBuilder) Ref() model.PropertyType {
	return model.Ref(tb.definition)
}
