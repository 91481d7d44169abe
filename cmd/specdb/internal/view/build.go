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
	"github.com/fatih/color"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
)

// BuildView renders the outcome of a build.
type BuildView interface {
	Render(result BuildResult) error
}

type BuildResult struct {
	Output          string
	Services        int
	Resources       int
	TypeDefinitions int
	Imported        int
	Report          *problems.Report
	// ShowProblems lists every problem instead of the per category counts.
	ShowProblems bool
}

// Human view implementation.

type buildHumanView struct {
	*HumanView
}

func (v *buildHumanView) Render(result BuildResult) error {
	v.Println(color.RGB(50, 108, 229).Sprintf("Built!"), result.Output)
	v.Printf("  %d services, %d resources, %d type definitions (%d definitions imported)\n",
		result.Services, result.Resources, result.TypeDefinitions, result.Imported)

	if result.Report.Len() == 0 {
		return nil
	}
	if result.ShowProblems {
		return result.Report.Write(v.Writer)
	}
	v.Println(color.YellowString("%d problems:", result.Report.Len()))
	counts := result.Report.Counts()
	for _, category := range problems.Categories {
		if n := counts[category]; n > 0 {
			v.Printf("  %-22s %d\n", category, n)
		}
	}
	return nil
}

// Structured view implementation.

type buildStructuredView struct {
	*StructuredView
}

type problemDocument struct {
	Resource string `json:"resource"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

type buildDocument struct {
	Type            string            `json:"type"`
	Output          string            `json:"output,omitempty"`
	Services        int               `json:"services"`
	Resources       int               `json:"resources"`
	TypeDefinitions int               `json:"typeDefinitions"`
	Imported        int               `json:"imported"`
	Problems        []problemDocument `json:"problems,omitempty"`
}

func (v *buildStructuredView) Render(result BuildResult) error {
	out := buildDocument{
		Type:            "build",
		Output:          result.Output,
		Services:        result.Services,
		Resources:       result.Resources,
		TypeDefinitions: result.TypeDefinitions,
		Imported:        result.Imported,
	}
	for _, p := range result.Report.All() {
		out.Problems = append(out.Problems, problemDocument{
			Resource: p.Resource,
			Category: string(p.Category),
			Message:  p.Message,
		})
	}
	return v.StructuredView.Render(out)
}

func NewBuildView(v Viewer) BuildView {
	switch vt := v.(type) {
	case *HumanView:
		return &buildHumanView{HumanView: vt}
	case *StructuredView:
		return &buildStructuredView{StructuredView: vt}
	default:
		panic("unknown view type")
	}
}
