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

package problems

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Category classifies a recoverable problem found while importing a source.
type Category string

const (
	// FieldConversion means a field's schema could not be converted and the
	// field was skipped.
	FieldConversion Category = "field-conversion"
	// UnionOfObjects means the branches of a union were all record types and
	// were merged into a single synthetic record.
	UnionOfObjects Category = "union-of-objects"
	// MissingTagProperty means a taggable resource does not declare the
	// property its tags are supposed to live in.
	MissingTagProperty Category = "missing-tag-property"
	// UnresolvedPath means a documented field path such as a create-only or
	// deprecated path does not name a known field.
	UnresolvedPath Category = "unresolved-path"
	// InvalidDocument means a whole document was unusable.
	InvalidDocument Category = "invalid-document"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	FieldConversion,
	UnionOfObjects,
	MissingTagProperty,
	UnresolvedPath,
	InvalidDocument,
}

// Problem is a single recoverable issue tied to the resource it came from.
type Problem struct {
	// Resource is the CloudFormation type name, or the source file when no
	// resource could be identified.
	Resource string
	Category Category
	Message  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s [%s] %s", p.Resource, p.Category, p.Message)
}

// Report collects problems in the order they were found. The zero value is
// ready to use, and a nil *Report discards everything added to it.
type Report struct {
	problems []Problem
}

// Add records a problem for resource.
func (r *Report) Add(resource string, category Category, format string, args ...any) {
	if r == nil {
		return
	}
	r.problems = append(r.problems, Problem{
		Resource: resource,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Len returns the number of recorded problems.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.problems)
}

// All returns every recorded problem.
func (r *Report) All() []Problem {
	if r == nil {
		return nil
	}
	return slices.Clone(r.problems)
}

// ForResource returns the problems recorded against one resource.
func (r *Report) ForResource(resource string) []Problem {
	var out []Problem
	for _, p := range r.All() {
		if p.Resource == resource {
			out = append(out, p)
		}
	}
	return out
}

// Counts returns the number of problems per category.
func (r *Report) Counts() map[Category]int {
	counts := map[Category]int{}
	for _, p := range r.All() {
		counts[p.Category]++
	}
	return counts
}

// Resources returns the sorted names of resources with at least one problem.
func (r *Report) Resources() []string {
	var names []string
	for _, p := range r.All() {
		if !slices.Contains(names, p.Resource) {
			names = append(names, p.Resource)
		}
	}
	slices.Sort(names)
	return names
}

const maxSummary = 3

// String summarizes the report on one line.
func (r *Report) String() string {
	n := r.Len()
	if n == 0 {
		return "no problems"
	}
	descs := make([]string, 0, maxSummary+1)
	for i, p := range r.problems {
		if i >= maxSummary {
			descs = append(descs, fmt.Sprintf("and %d more", n-i))
			break
		}
		descs = append(descs, p.String())
	}
	return strings.Join(descs, "; ")
}

// Write prints the report grouped by resource.
func (r *Report) Write(w io.Writer) error {
	for _, res := range r.Resources() {
		if _, err := fmt.Fprintf(w, "%s\n", res); err != nil {
			return err
		}
		for _, p := range r.ForResource(res) {
			if _, err := fmt.Fprintf(w, "  [%s] %s\n", p.Category, p.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
