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

package view

import (
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/query"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// QueryView renders the resources matched by a query.
type QueryView interface {
	Render(result QueryResult) error
}

type QueryResult struct {
	Expression string
	DB         *store.Store
	Resources  []*model.Resource
}

// Human view implementation.

type queryHumanView struct {
	*HumanView
}

func (v *queryHumanView) Render(result QueryResult) error {
	for _, res := range result.Resources {
		service := ""
		if svc, ok := model.ServiceOf(result.DB, res); ok {
			service = svc.Name
		}
		v.Printf("%-50s %-24s %3d properties %3d attributes\n",
			res.CloudFormationType, service, len(res.Properties), len(res.Attributes))
	}
	return nil
}

// Structured view implementation.

type queryStructuredView struct {
	*StructuredView
}

type queryDocument struct {
	Type       string           `json:"type"`
	Expression string           `json:"expression"`
	Resources  []map[string]any `json:"resources"`
}

func (v *queryStructuredView) Render(result QueryResult) error {
	out := queryDocument{
		Type:       "query",
		Expression: result.Expression,
		Resources:  make([]map[string]any, 0, len(result.Resources)),
	}
	for _, res := range result.Resources {
		out.Resources = append(out.Resources, query.Activation(result.DB, res))
	}
	return v.StructuredView.Render(out)
}

func NewQueryView(v Viewer) QueryView {
	switch vt := v.(type) {
	case *HumanView:
		return &queryHumanView{HumanView: vt}
	case *StructuredView:
		return &queryStructuredView{StructuredView: vt}
	default:
		panic("unknown view type")
	}
}
