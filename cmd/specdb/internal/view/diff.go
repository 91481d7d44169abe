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
	"maps"
	"slices"

	"github.com/fatih/color"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/diff"
)

// DiffView renders the difference between two databases.
type DiffView interface {
	Render(result DiffResult) error
}

type DiffResult struct {
	Old, New string
	Diff     *diff.DatabaseDiff
}

// Human view implementation.

type diffHumanView struct {
	*HumanView
}

func (v *diffHumanView) Render(result DiffResult) error {
	if result.Diff.Empty() {
		v.Println(color.RGB(50, 108, 229).Sprintf("Identical!"), "no differences found.")
		return nil
	}
	return diff.Format(v.Writer, result.Diff)
}

// Structured view implementation.

type diffStructuredView struct {
	*StructuredView
}

type changeSet struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Updated []string `json:"updated,omitempty"`
}

type diffDocument struct {
	Type      string               `json:"type"`
	Old       string               `json:"old"`
	New       string               `json:"new"`
	Empty     bool                 `json:"empty"`
	Services  changeSet            `json:"services"`
	Resources map[string]changeSet `json:"resources,omitempty"`
}

func changes[T, U any](d diff.MapDiff[T, U]) changeSet {
	return changeSet{
		Added:   slices.Sorted(maps.Keys(d.Added)),
		Removed: slices.Sorted(maps.Keys(d.Removed)),
		Updated: slices.Sorted(maps.Keys(d.Updated)),
	}
}

func (v *diffStructuredView) Render(result DiffResult) error {
	d := result.Diff
	out := diffDocument{
		Type:     "diff",
		Old:      result.Old,
		New:      result.New,
		Empty:    d.Empty(),
		Services: changes(d.Services),
	}
	for name, sd := range d.Services.Updated {
		if out.Resources == nil {
			out.Resources = map[string]changeSet{}
		}
		out.Resources[name] = changes(sd.Resources)
	}
	return v.StructuredView.Render(out)
}

func NewDiffView(v Viewer) DiffView {
	switch vt := v.(type) {
	case *HumanView:
		return &diffHumanView{HumanView: vt}
	case *StructuredView:
		return &diffStructuredView{StructuredView: vt}
	default:
		panic("unknown view type")
	}
}
