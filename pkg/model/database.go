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
	"io"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// Schema returns the store schema of the service specification database.
func Schema() store.Schema {
	return store.Schema{
		Kinds: map[store.Kind]store.KindSpec{
			KindService: {
				New: func() store.Entity { return &Service{} },
				Indexes: map[string]store.IndexFunc{
					"name": func(e store.Entity) string { return e.(*Service).Name },
				},
			},
			KindResource: {
				New: func() store.Entity { return &Resource{} },
				Indexes: map[string]store.IndexFunc{
					"cloudFormationType": func(e store.Entity) string { return e.(*Resource).CloudFormationType },
					"name":               func(e store.Entity) string { return e.(*Resource).Name },
				},
			},
			KindTypeDefinition: {
				New: func() store.Entity { return &TypeDefinition{} },
				Indexes: map[string]store.IndexFunc{
					"name": func(e store.Entity) string { return e.(*TypeDefinition).Name },
				},
			},
		},
		Relationships: map[string]store.RelationshipSpec{
			RelHasResource: {From: KindService, To: KindResource},
			RelUsesType:    {From: KindResource, To: KindTypeDefinition},
		},
	}
}

// NewDatabase returns an empty service specification database.
func NewDatabase() *store.Store {
	return store.New(Schema())
}

// LoadDatabase reads a database written with Save.
func LoadDatabase(r io.Reader) (*store.Store, error) {
	db := NewDatabase()
	if err := db.Load(r); err != nil {
		return nil, err
	}
	return db, nil
}

// LookupResource finds resources by CloudFormation type.
func LookupResource(db *store.Store, cloudFormationType string) store.Result {
	return db.Lookup(KindResource, "cloudFormationType", store.Equals, cloudFormationType)
}

// ResourceByType returns the resource with the given CloudFormation type, if
// any. More than one match violates the uniqueness of the key and panics.
func ResourceByType(db *store.Store, cloudFormationType string) (*Resource, bool) {
	e, ok := LookupResource(db, cloudFormationType).Optional()
	if !ok {
		return nil, false
	}
	return e.(*Resource), true
}

// ServiceByName returns the service with the given name, if any.
func ServiceByName(db *store.Store, name string) (*Service, bool) {
	e, ok := db.Lookup(KindService, "name", store.Equals, name).Optional()
	if !ok {
		return nil, false
	}
	return e.(*Service), true
}

// Services returns every service in allocation order.
func Services(db *store.Store) []*Service {
	return store.AllOf[*Service](db, KindService)
}

// Resources returns every resource in allocation order.
func Resources(db *store.Store) []*Resource {
	return store.AllOf[*Resource](db, KindResource)
}

// ResourcesOf returns the resources of a service.
func ResourcesOf(db *store.Store, svc *Service) []*Resource {
	return store.FollowOf[*Resource](db, RelHasResource, svc)
}

// ServiceOf returns the service owning a resource, if it has been linked.
func ServiceOf(db *store.Store, res *Resource) (*Service, bool) {
	svcs := store.IncomingOf[*Service](db, RelHasResource, res)
	if len(svcs) == 0 {
		return nil, false
	}
	return svcs[0], true
}

// TypeDefinitionsOf returns the type definitions in a resource's scope.
func TypeDefinitionsOf(db *store.Store, res *Resource) []*TypeDefinition {
	return store.FollowOf[*TypeDefinition](db, RelUsesType, res)
}

// FindTypeDefinition returns the type definition with the given name in a
// resource's scope.
func FindTypeDefinition(db *store.Store, res *Resource, name string) (*TypeDefinition, bool) {
	var found *TypeDefinition
	for _, td := range TypeDefinitionsOf(db, res) {
		if td.Name != name {
			continue
		}
		if found != nil {
			panic(&store.CardinalityError{
				Kind:     KindTypeDefinition,
				Field:    "name",
				Value:    res.CloudFormationType + "." + name,
				Expected: "at most one",
				Got:      2,
			})
		}
		found = td
	}
	return found, found != nil
}

// Resolver returns the DefinitionResolver of a database.
func Resolver(db *store.Store) DefinitionResolver {
	return dbResolver{db: db}
}

type dbResolver struct {
	db *store.Store
}

func (r dbResolver) TypeDefinition(id store.ID) (*TypeDefinition, bool) {
	e, ok := r.db.Find(KindTypeDefinition, id)
	if !ok {
		return nil, false
	}
	return e.(*TypeDefinition), true
}
