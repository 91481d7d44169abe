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

package diff

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

var (
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	updatedColor = color.New(color.FgYellow)
)

// Format writes d as an indented tree. Added entries are prefixed with +,
// removed entries with - and updated entries with ~.
func Format(w io.Writer, d *DatabaseDiff) error {
	f := &formatter{diff: d}
	f.services()
	_, err := io.WriteString(w, f.b.String())
	return err
}

type formatter struct {
	diff  *DatabaseDiff
	b     strings.Builder
	depth int
}

func (f *formatter) line(c *color.Color, prefix, format string, args ...any) {
	f.b.WriteString(strings.Repeat("  ", f.depth))
	f.b.WriteString(c.Sprint(prefix + " " + fmt.Sprintf(format, args...)))
	f.b.WriteString("\n")
}

func (f *formatter) nested(fn func()) {
	f.depth++
	fn()
	f.depth--
}

func (f *formatter) services() {
	d := f.diff.Services
	for _, name := range sortedKeys(d.Added) {
		f.line(addedColor, "+", "service %s", name)
	}
	for _, name := range sortedKeys(d.Removed) {
		f.line(removedColor, "-", "service %s", name)
	}
	for _, name := range sortedKeys(d.Updated) {
		sd := d.Updated[name]
		f.line(updatedColor, "~", "service %s", name)
		f.nested(func() {
			f.scalar("shortName", sd.ShortName)
			f.scalar("capitalized", sd.Capitalized)
			f.scalar("cloudFormationNamespace", sd.CloudFormationNamespace)
			f.resources(sd.Resources)
		})
	}
}

func (f *formatter) resources(d MapDiff[*model.Resource, *ResourceDiff]) {
	for _, name := range sortedKeys(d.Added) {
		f.line(addedColor, "+", "resource %s", name)
	}
	for _, name := range sortedKeys(d.Removed) {
		f.line(removedColor, "-", "resource %s", name)
	}
	for _, name := range sortedKeys(d.Updated) {
		rd := d.Updated[name]
		f.line(updatedColor, "~", "resource %s", name)
		f.nested(func() {
			f.scalar("name", rd.Name)
			f.scalar("documentation", rd.Documentation)
			f.scalar("scrutinizable", rd.Scrutinizable)
			f.scalar("cloudFormationTransform", rd.CloudFormationTransform)
			f.scalar("isStateful", rd.IsStateful)
			f.scalar("primaryIdentifier", rd.PrimaryIdentifier)
			f.scalar("additionalReplacementProperties", rd.AdditionalReplacementProperties)
			if rd.TagInformation != nil {
				f.line(updatedColor, "~", "tagInformation: %s -> %s",
					tagInfo(rd.TagInformation.Old), tagInfo(rd.TagInformation.New))
			}
			f.properties("property", rd.Properties)
			f.properties("attribute", rd.Attributes)
			f.typeDefinitions(rd.TypeDefinitions)
		})
	}
}

func tagInfo(t *model.TagInformation) string {
	if t == nil {
		return "none"
	}
	return fmt.Sprintf("%s(%s)", t.TagPropertyName, t.Variant)
}

func (f *formatter) typeDefinitions(d MapDiff[*model.TypeDefinition, *TypeDefinitionDiff]) {
	for _, name := range sortedKeys(d.Added) {
		f.line(addedColor, "+", "type %s", name)
	}
	for _, name := range sortedKeys(d.Removed) {
		f.line(removedColor, "-", "type %s", name)
	}
	for _, name := range sortedKeys(d.Updated) {
		td := d.Updated[name]
		f.line(updatedColor, "~", "type %s", name)
		f.nested(func() {
			f.scalar("documentation", td.Documentation)
			f.scalar("mustRenderForBwCompat", td.MustRenderForBwCompat)
			f.properties("property", td.Properties)
		})
	}
}

func (f *formatter) properties(noun string, d MapDiff[*model.Property, *PropertyDiff]) {
	for _, name := range sortedKeys(d.Added) {
		f.line(addedColor, "+", "%s %s: %s", noun, name, f.newType(d.Added[name].Type))
	}
	for _, name := range sortedKeys(d.Removed) {
		f.line(removedColor, "-", "%s %s: %s", noun, name, f.oldType(d.Removed[name].Type))
	}
	for _, name := range sortedKeys(d.Updated) {
		pd := d.Updated[name]
		f.line(updatedColor, "~", "%s %s", noun, name)
		f.nested(func() {
			if pd.Type != nil {
				f.line(updatedColor, "~", "type: %s -> %s", f.oldType(pd.Type.Old), f.newType(pd.Type.New))
			}
			if pd.PreviousTypes != nil {
				for _, t := range pd.PreviousTypes.Removed {
					f.line(removedColor, "-", "previousType %s", f.oldType(t))
				}
				for _, t := range pd.PreviousTypes.Added {
					f.line(addedColor, "+", "previousType %s", f.newType(t))
				}
			}
			f.scalar("required", pd.Required)
			f.scalar("defaultValue", pd.DefaultValue)
			f.scalar("deprecated", pd.Deprecated)
			f.scalar("causesReplacement", pd.CausesReplacement)
			f.scalar("documentation", pd.Documentation)
			f.scalar("scrutinizable", pd.Scrutinizable)
			if pd.RelationshipRefs != nil {
				for _, r := range pd.RelationshipRefs.Removed {
					f.line(removedColor, "-", "relationshipRef %s.%s", r.TargetResourceType, r.TargetPropertyName)
				}
				for _, r := range pd.RelationshipRefs.Added {
					f.line(addedColor, "+", "relationshipRef %s.%s", r.TargetResourceType, r.TargetPropertyName)
				}
			}
		})
	}
}

func (f *formatter) oldType(t model.PropertyType) string {
	return string(model.Normalize(t, f.diff.oldResolver))
}

func (f *formatter) newType(t model.PropertyType) string {
	return string(model.Normalize(t, f.diff.newResolver))
}

func (f *formatter) scalar(field string, d any) {
	switch v := d.(type) {
	case *ScalarDiff[string]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %q -> %q", field, v.Old, v.New)
		}
	case *ScalarDiff[bool]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %t -> %t", field, v.Old, v.New)
		}
	case *ScalarDiff[[]string]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %v -> %v", field, v.Old, v.New)
		}
	case *ScalarDiff[[][]string]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %v -> %v", field, v.Old, v.New)
		}
	case *ScalarDiff[model.Deprecation]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %q -> %q", field, v.Old, v.New)
		}
	case *ScalarDiff[model.Replacement]:
		if v != nil {
			f.line(updatedColor, "~", "%s: %q -> %q", field, v.Old, v.New)
		}
	}
}

func sortedKeys[T any](m map[string]T) []string {
	return slices.Sorted(maps.Keys(m))
}
