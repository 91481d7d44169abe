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
	"errors"
	"fmt"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// FatalError aborts an import. It is returned for input the resolver has no
// policy for, as opposed to a single unconvertible field which is reported
// and skipped.
type FatalError struct {
	Resource string
	Err      error
}

func (e *FatalError) Error() string { return fmt.Sprintf("%s: %v", e.Resource, e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err (or any error in its chain) must abort the
// build.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe) || store.IsFatal(err)
}

func fatal(resource string, err error) error { return &FatalError{Resource: resource, Err: err} }

// UnsupportedSchemaError is returned for a schema node the resolver cannot
// classify.
type UnsupportedSchemaError struct {
	Reason string
}

func (e *UnsupportedSchemaError) Error() string { return "unsupported schema: " + e.Reason }

func unsupportedf(format string, a ...any) error {
	return &UnsupportedSchemaError{Reason: fmt.Sprintf(format, a...)}
}
