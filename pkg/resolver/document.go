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
	"encoding/json"
	"fmt"
	"strings"

	"k8s.io/kube-openapi/pkg/validation/spec"
	"sigs.k8s.io/yaml"
)

// RegistrySchema is a resource provider schema: a JSON schema for the
// resource's properties plus resource level metadata.
type RegistrySchema struct {
	TypeName              string     `json:"typeName"`
	Description           string     `json:"description,omitempty"`
	SourceURL             string     `json:"sourceUrl,omitempty"`
	ReadOnlyProperties    []string   `json:"readOnlyProperties,omitempty"`
	CreateOnlyProperties  []string   `json:"createOnlyProperties,omitempty"`
	WriteOnlyProperties   []string   `json:"writeOnlyProperties,omitempty"`
	DeprecatedProperties  []string   `json:"deprecatedProperties,omitempty"`
	PrimaryIdentifier     []string   `json:"primaryIdentifier,omitempty"`
	AdditionalIdentifiers [][]string `json:"additionalIdentifiers,omitempty"`
	Taggable              *bool      `json:"taggable,omitempty"`
	Tagging               *Tagging   `json:"tagging,omitempty"`
	ReplacementStrategy   string     `json:"replacementStrategy,omitempty"`

	// Schema is the document read as a JSON schema. Its properties are the
	// resource's fields and its definitions are the targets of local $refs.
	Schema spec.Schema `json:"-"`
}

// Tagging describes how a resource supports tags.
type Tagging struct {
	Taggable                 *bool  `json:"taggable,omitempty"`
	TagOnCreate              *bool  `json:"tagOnCreate,omitempty"`
	TagUpdatable             *bool  `json:"tagUpdatable,omitempty"`
	CloudFormationSystemTags *bool  `json:"cloudFormationSystemTags,omitempty"`
	TagProperty              string `json:"tagProperty,omitempty"`
}

func (d *RegistrySchema) UnmarshalJSON(data []byte) error {
	type plain RegistrySchema
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &p.Schema); err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	*d = RegistrySchema(p)
	return nil
}

// ParseRegistrySchema reads a registry schema from JSON or YAML.
func ParseRegistrySchema(data []byte) (*RegistrySchema, error) {
	var doc RegistrySchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry schema: %w", err)
	}
	if doc.TypeName == "" {
		return nil, fmt.Errorf("registry schema has no typeName")
	}
	return &doc, nil
}

// explicitlyTaggable reports whether the document says anything about tags.
func (d *RegistrySchema) explicitlyTaggable() bool {
	return d.Taggable != nil || (d.Tagging != nil && (d.Tagging.Taggable != nil || d.Tagging.TagProperty != ""))
}

func (d *RegistrySchema) isTaggable() bool {
	if d.Tagging != nil && d.Tagging.Taggable != nil {
		return *d.Tagging.Taggable
	}
	if d.Taggable != nil {
		return *d.Taggable
	}
	return true
}

const defaultTagProperty = "Tags"

func (d *RegistrySchema) tagProperty() string {
	if d.Tagging != nil && d.Tagging.TagProperty != "" {
		if segs := splitPath(d.Tagging.TagProperty); len(segs) > 0 {
			return segs[0]
		}
	}
	return defaultTagProperty
}

// splitPath turns a field path such as /properties/Foo/*/Bar or Foo.Bar into
// its segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "properties/")
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '.' })
}
