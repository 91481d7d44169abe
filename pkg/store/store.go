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
)

// IndexFunc extracts the value of an indexed field from an entity. Indexed
// fields must not change after the entity has been allocated.
type IndexFunc func(Entity) string

// KindSpec describes one entity kind.
type KindSpec struct {
	// New returns an empty entity of this kind; used when loading documents.
	New func() Entity
	// Indexes maps field names to their extractors.
	Indexes map[string]IndexFunc
}

// RelationshipSpec constrains the kinds a named relationship connects.
type RelationshipSpec struct {
	From Kind
	To   Kind
}

// Schema declares the kinds, indexes and relationships of a store.
type Schema struct {
	Kinds         map[Kind]KindSpec
	Relationships map[string]RelationshipSpec
}

type link struct {
	from ID
	to   ID
}

// Store is an append-mostly graph of entities and relationships.
type Store struct {
	schema Schema
	nextID ID

	entities map[ID]Entity
	// byKind preserves allocation order per kind.
	byKind map[Kind][]ID
	// indexes: kind -> field -> value -> ids
	indexes map[Kind]map[string]map[string][]ID

	links    map[string][]link
	outgoing map[string]map[ID][]ID
	incoming map[string]map[ID][]ID
}

// New returns an empty store for the given schema.
func New(schema Schema) *Store {
	s := &Store{
		schema:   schema,
		nextID:   1,
		entities: make(map[ID]Entity),
		byKind:   make(map[Kind][]ID),
		indexes:  make(map[Kind]map[string]map[string][]ID),
		links:    make(map[string][]link),
		outgoing: make(map[string]map[ID][]ID),
		incoming: make(map[string]map[ID][]ID),
	}
	for kind, spec := range schema.Kinds {
		fields := make(map[string]map[string][]ID, len(spec.Indexes))
		for field := range spec.Indexes {
			fields[field] = make(map[string][]ID)
		}
		s.indexes[kind] = fields
	}
	for name := range schema.Relationships {
		s.outgoing[name] = make(map[ID][]ID)
		s.incoming[name] = make(map[ID][]ID)
	}
	return s
}

// Schema returns the schema the store was created with.
func (s *Store) Schema() Schema {
	return s.schema
}

// Allocate assigns a fresh ID to e and adds it to the store. It never
// consults existing entities; deduplication is the caller's job.
func (s *Store) Allocate(e Entity) Entity {
	id := s.nextID
	s.nextID++
	s.insert(id, e)
	return e
}

func (s *Store) insert(id ID, e Entity) {
	kind := e.EntityKind()
	spec, ok := s.schema.Kinds[kind]
	if !ok {
		panic(fmt.Sprintf("store: unknown entity kind %q", kind))
	}
	e.bind(id)
	s.entities[id] = e
	s.byKind[kind] = append(s.byKind[kind], id)
	for field, extract := range spec.Indexes {
		value := extract(e)
		s.indexes[kind][field][value] = append(s.indexes[kind][field][value], id)
	}
}

// Link records a relationship from one entity to another. Links are not
// deduplicated: linking the same pair twice yields two traversal results.
func (s *Store) Link(relationship string, from, to Entity) {
	spec, ok := s.schema.Relationships[relationship]
	if !ok {
		panic(fmt.Sprintf("store: unknown relationship %q", relationship))
	}
	if from.EntityKind() != spec.From || to.EntityKind() != spec.To {
		panic(fmt.Sprintf("store: relationship %q connects %s to %s, got %s to %s",
			relationship, spec.From, spec.To, from.EntityKind(), to.EntityKind()))
	}
	s.mustExist(from)
	s.mustExist(to)
	s.addLink(relationship, from.EntityID(), to.EntityID())
}

func (s *Store) addLink(relationship string, from, to ID) {
	s.links[relationship] = append(s.links[relationship], link{from: from, to: to})
	s.outgoing[relationship][from] = append(s.outgoing[relationship][from], to)
	s.incoming[relationship][to] = append(s.incoming[relationship][to], from)
}

func (s *Store) mustExist(e Entity) {
	if got, ok := s.entities[e.EntityID()]; !ok || got != e {
		panic(&NotFoundError{Kind: e.EntityKind(), ID: e.EntityID()})
	}
}

// Follow returns the targets of relationship edges leaving from.
func (s *Store) Follow(relationship string, from Entity) []Entity {
	return s.resolveAll(s.edges(s.outgoing, relationship)[from.EntityID()])
}

// Incoming returns the sources of relationship edges arriving at to.
func (s *Store) Incoming(relationship string, to Entity) []Entity {
	return s.resolveAll(s.edges(s.incoming, relationship)[to.EntityID()])
}

func (s *Store) edges(dir map[string]map[ID][]ID, relationship string) map[ID][]ID {
	edges, ok := dir[relationship]
	if !ok {
		panic(fmt.Sprintf("store: unknown relationship %q", relationship))
	}
	return edges
}

func (s *Store) resolveAll(ids []ID) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entities[id])
	}
	return out
}

// Get dereferences an ID of the given kind. It panics with a *NotFoundError
// when no such entity exists.
func (s *Store) Get(kind Kind, id ID) Entity {
	e, ok := s.Find(kind, id)
	if !ok {
		panic(&NotFoundError{Kind: kind, ID: id})
	}
	return e
}

// Find is the non-panicking form of Get.
func (s *Store) Find(kind Kind, id ID) (Entity, bool) {
	e, ok := s.entities[id]
	if !ok || e.EntityKind() != kind {
		return nil, false
	}
	return e, true
}

// All returns every entity of a kind in allocation order.
func (s *Store) All(kind Kind) []Entity {
	return s.resolveAll(s.byKind[kind])
}

// Len returns the number of entities of a kind.
func (s *Store) Len(kind Kind) int {
	return len(s.byKind[kind])
}

// Kinds returns the registered kinds in a stable order.
func (s *Store) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s.schema.Kinds))
	for k := range s.schema.Kinds {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// AllOf returns every entity of a kind, converted to its concrete type.
func AllOf[T Entity](s *Store, kind Kind) []T {
	entities := s.All(kind)
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.(T))
	}
	return out
}

// FollowOf is Follow with the results converted to their concrete type.
func FollowOf[T Entity](s *Store, relationship string, from Entity) []T {
	return convert[T](s.Follow(relationship, from))
}

// IncomingOf is Incoming with the results converted to their concrete type.
func IncomingOf[T Entity](s *Store, relationship string, to Entity) []T {
	return convert[T](s.Incoming(relationship, to))
}

func convert[T Entity](entities []Entity) []T {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.(T))
	}
	return out
}
