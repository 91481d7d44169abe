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

// Package config reads build manifests.
//
// A manifest is an HCL file listing the source documents of a database in
// the order they are applied:
//
//	source "registry" { path = "schemas/registry" }
//	source "legacy"   { path = "spec/CloudFormationResourceSpecification.json" }
//	source "sam"      { path = "${manifest_dir}/sam.json" }
//
// Relative paths are resolved against the directory holding the manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// SourceKind names the format of a source document.
type SourceKind string

const (
	// SourceRegistry is a registry schema file or a directory of them.
	SourceRegistry SourceKind = "registry"
	// SourceLegacy is a legacy resource specification.
	SourceLegacy SourceKind = "legacy"
	// SourceSAM is a SAM resource specification.
	SourceSAM SourceKind = "sam"
)

// Kinds lists every supported source kind.
var Kinds = []SourceKind{SourceRegistry, SourceLegacy, SourceSAM}

// Manifest is a decoded build manifest.
type Manifest struct {
	// Output, when set, is where the built database is written.
	Output  string    `hcl:"output,optional"`
	Sources []*Source `hcl:"source,block"`
}

// Source is one document, or directory of documents, to import.
type Source struct {
	Label string `hcl:"kind,label"`
	Path  string `hcl:"path"`
	// Optional sources are skipped when their path does not exist.
	Optional bool `hcl:"optional,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Kind returns the block label as a SourceKind.
func (s *Source) Kind() SourceKind {
	return SourceKind(s.Label)
}

func (s *Source) String() string {
	return fmt.Sprintf("%s %q", s.Label, s.Path)
}

// LoadFile reads and decodes the manifest at filename.
func LoadFile(filename string) (*Manifest, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes a manifest from src. filename is used for diagnostics and
// as the base of relative source paths.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	dir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest directory: %w", err)
	}
	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"manifest_dir": cty.StringVal(dir),
		},
	}

	var m Manifest
	diags = gohcl.DecodeBody(file.Body, ctx, &m)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	if diags := m.validate(); diags.HasErrors() {
		return nil, fmt.Errorf("invalid manifest %s: %w", filename, diags)
	}

	for _, s := range m.Sources {
		s.Path = resolve(dir, s.Path)
	}
	if m.Output != "" {
		m.Output = resolve(dir, m.Output)
	}
	return &m, nil
}

func (m *Manifest) validate() hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, s := range m.Sources {
		if !s.Kind().valid() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported source kind",
				Detail:   fmt.Sprintf("Source kind %q is not one of %v.", s.Label, Kinds),
				Subject:  s.DefRange.Ptr(),
			})
		}
		if s.Path == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Empty source path",
				Detail:   fmt.Sprintf("The %s source needs a non-empty path.", s.Label),
				Subject:  s.DefRange.Ptr(),
			})
		}
	}
	return diags
}

func (k SourceKind) valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
