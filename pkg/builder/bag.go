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
	"slices"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

// PropertyBagBuilder stages field candidates for a property map and merges
// them into it on Commit. Staged candidates are applied in the order they
// were first staged.
type PropertyBagBuilder struct {
	target   *map[string]*model.Property
	resolver model.DefinitionResolver

	order   []string
	staged  map[string]*model.Property
	deleted []string
}

func newBag(target *map[string]*model.Property, r model.DefinitionResolver) *PropertyBagBuilder {
	return &PropertyBagBuilder{
		target:   target,
		resolver: r,
		staged:   map[string]*model.Property{},
	}
}

// SetProperty stages a candidate for name, replacing any earlier candidate
// staged under the same name.
func (b *PropertyBagBuilder) SetProperty(name string, candidate *model.Property) {
	if _, ok := b.staged[name]; !ok {
		b.order = append(b.order, name)
	}
	b.staged[name] = candidate
	b.deleted = slices.DeleteFunc(b.deleted, func(n string) bool { return n == name })
}

// Staged returns the candidate currently staged for name.
func (b *PropertyBagBuilder) Staged(name string) (*model.Property, bool) {
	p, ok := b.staged[name]
	return p, ok
}

// Unstage removes and returns the candidate staged for name.
func (b *PropertyBagBuilder) Unstage(name string) (*model.Property, bool) {
	p, ok := b.staged[name]
	if !ok {
		return nil, false
	}
	delete(b.staged, name)
	b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
	return p, true
}

// Delete unstages name and removes it from the target bag on the next
// Commit. Staging name again before Commit cancels the removal.
func (b *PropertyBagBuilder) Delete(name string) {
	b.Unstage(name)
	if !slices.Contains(b.deleted, name) {
		b.deleted = append(b.deleted, name)
	}
}

// Names returns the staged field names in staging order.
func (b *PropertyBagBuilder) Names() []string {
	return slices.Clone(b.order)
}

// Committed returns the property already present in the target bag.
func (b *PropertyBagBuilder) Committed(name string) (*model.Property, bool) {
	if *b.target == nil {
		return nil, false
	}
	p, ok := (*b.target)[name]
	return p, ok
}

// Commit applies pending deletions, merges every staged candidate into the
// target bag and clears the stage. A field seen for the first time is
// stored as a simplified copy of its candidate.
func (b *PropertyBagBuilder) Commit() {
	if *b.target == nil {
		*b.target = map[string]*model.Property{}
	}
	bag := *b.target
	for _, name := range b.deleted {
		delete(bag, name)
	}
	for _, name := range b.order {
		candidate := b.staged[name]
		existing, ok := bag[name]
		if !ok {
			fresh := candidate.Clone()
			Simplify(fresh)
			bag[name] = fresh
			continue
		}
		MergeProperty(existing, candidate, b.resolver)
	}
	b.order = nil
	b.deleted = nil
	b.staged = map[string]*model.Property{}
}
