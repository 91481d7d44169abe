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

// Package query selects resources from a database with CEL predicates.
//
// A predicate sees a single variable, resource, holding:
//
//	cloudFormationType  string
//	name                string
//	service             string
//	documentation       string
//	tagged              bool
//	stateful            bool
//	primaryIdentifier   list(string)
//	properties          map(string, string)  field name to canonical type
//	attributes          map(string, string)  field name to canonical type
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"k8s.io/utils/ptr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// ResourceVariable is the name under which a resource is exposed to a
// predicate.
const ResourceVariable = "resource"

// Query is a compiled predicate. It is safe for concurrent use.
type Query struct {
	// Original is the expression as given, kept for error messages.
	Original string
	program  cel.Program
}

func environment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Lists(),
		cel.OptionalTypes(),
		cel.Variable(ResourceVariable, cel.MapType(cel.StringType, cel.DynType)),
	)
}

// Compile parses and type-checks expr. The expression must evaluate to a
// bool.
func Compile(expr string) (*Query, error) {
	env, err := environment()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expected bool result, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Query{Original: expr, program: prg}, nil
}

// Matches evaluates q against res.
func (q *Query) Matches(db *store.Store, res *model.Resource) (bool, error) {
	out, _, err := q.program.Eval(map[string]any{ResourceVariable: Activation(db, res)})
	if err != nil {
		return false, fmt.Errorf("eval %q on %s: %w", q.Original, res.CloudFormationType, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q on %s: expected bool result, got %s",
			q.Original, res.CloudFormationType, out.Type().TypeName())
	}
	return matched, nil
}

// Filter returns the resources of db matched by q, ordered by
// CloudFormation type.
func Filter(db *store.Store, q *Query) ([]*model.Resource, error) {
	var out []*model.Resource
	for _, res := range model.Resources(db) {
		ok, err := q.Matches(db, res)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b *model.Resource) int {
		return strings.Compare(a.CloudFormationType, b.CloudFormationType)
	})
	return out, nil
}

// Activation returns the value bound to the resource variable for res.
func Activation(db *store.Store, res *model.Resource) map[string]any {
	r := model.Resolver(db)
	service := ""
	if svc, ok := model.ServiceOf(db, res); ok {
		service = svc.Name
	}
	primary := make([]any, 0, len(res.PrimaryIdentifier))
	for _, id := range res.PrimaryIdentifier {
		primary = append(primary, id)
	}
	return map[string]any{
		"cloudFormationType": res.CloudFormationType,
		"name":               res.Name,
		"service":            service,
		"documentation":      res.Documentation,
		"tagged":             res.TagInformation != nil,
		"stateful":           ptr.Deref(res.IsStateful, false),
		"primaryIdentifier":  primary,
		"properties":         fields(res.Properties, r),
		"attributes":         fields(res.Attributes, r),
	}
}

func fields(bag map[string]*model.Property, r model.DefinitionResolver) map[string]any {
	out := make(map[string]any, len(bag))
	for name, p := range bag {
		out[name] = string(model.Normalize(p.Type, r))
	}
	return out
}
