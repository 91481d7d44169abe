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

import "strconv"

// ID identifies an entity within one store.
type ID int

func (id ID) String() string {
	return "#" + strconv.Itoa(int(id))
}

// Kind names a class of entities, e.g. "resource".
type Kind string

// Entity is implemented by every value held in a Store. Types outside this
// package satisfy it by embedding Base and declaring their Kind.
type Entity interface {
	EntityKind() Kind
	EntityID() ID
	bind(id ID)
}

// Base carries the identity a Store assigns at allocation time.
type Base struct {
	id ID
}

// EntityID returns the ID assigned by the owning store, or zero if the entity
// was never allocated.
func (b *Base) EntityID() ID {
	return b.id
}

func (b *Base) bind(id ID) {
	b.id = id
}
