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
	"errors"
	"fmt"
)

var (
	// ErrNotEmpty is returned when loading a document into a store that
	// already holds entities.
	ErrNotEmpty = errors.New("store is not empty")
	// ErrUnsupportedVersion is returned for documents written by an
	// incompatible store version.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// CardinalityError reports that a lookup returned a different number of
// entities than the caller asserted. It indicates a logic error or an input
// that violates a uniqueness invariant, and is raised as a panic.
type CardinalityError struct {
	Kind     Kind
	Field    string
	Value    string
	Expected string
	Got      int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("lookup %s.%s=%q: expected %s result, found %d", e.Kind, e.Field, e.Value, e.Expected, e.Got)
}

// NotFoundError reports a dereference of an ID that does not exist in the
// store or belongs to another kind. It is raised as a panic.
type NotFoundError struct {
	Kind Kind
	ID   ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s entity with id %s", e.Kind, e.ID)
}

// IsFatal reports whether err (or any error in its chain) is one of the
// store's cardinality or dereference violations.
func IsFatal(err error) bool {
	var ce *CardinalityError
	var nf *NotFoundError
	return errors.As(err, &ce) || errors.As(err, &nf)
}
