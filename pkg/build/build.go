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

// Package build turns a manifest into a database.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/config"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/legacy"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/metrics"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/resolver"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

// registryExtensions are the file extensions read from a registry
// directory.
var registryExtensions = []string{".json", ".yaml", ".yml"}

// Options configures Run. The zero value is usable.
type Options struct {
	Log logr.Logger
	// Metrics receives import counters and timings. A nil Metrics is
	// replaced with a fresh one.
	Metrics *metrics.Metrics
}

// Result is the outcome of a successful build.
type Result struct {
	DB      *store.Store
	Report  *problems.Report
	Metrics *metrics.Metrics
	// Imported counts the resource definitions merged, including repeats
	// of the same resource from different sources.
	Imported int
}

// Run applies every source of m in order to a new database. Problems with
// individual fields or documents are collected in the result's report; the
// returned error is non-nil only for failures that abort the build.
func Run(ctx context.Context, m *config.Manifest, opts Options) (*Result, error) {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	db := model.NewDatabase()
	b := builder.New(db, log)
	report := &problems.Report{}
	r := &runner{
		log:      log.WithName("build"),
		metrics:  opts.Metrics,
		report:   report,
		resolver: resolver.New(b, report, log),
		legacy:   legacy.NewImporter(b, report, log),
	}

	result := &Result{DB: db, Report: r.report, Metrics: opts.Metrics}
	for _, src := range m.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.source(ctx, src)
		result.Imported += n
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src, err)
		}
	}

	opts.Metrics.ObserveProblems(r.report)
	opts.Metrics.ObserveDatabase(db)
	r.log.Info("database built",
		"services", db.Len(model.KindService),
		"resources", db.Len(model.KindResource),
		"typeDefinitions", db.Len(model.KindTypeDefinition),
		"problems", r.report.Len())
	return result, nil
}

type runner struct {
	log      logr.Logger
	metrics  *metrics.Metrics
	report   *problems.Report
	resolver *resolver.Resolver
	legacy   *legacy.Importer
}

func (r *runner) source(ctx context.Context, src *config.Source) (int, error) {
	log := r.log.WithValues("kind", src.Label, "path", src.Path)
	if _, err := os.Stat(src.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) && src.Optional {
			log.Info("skipping missing optional source")
			return 0, nil
		}
		return 0, err
	}

	switch src.Kind() {
	case config.SourceRegistry:
		files, err := registryFiles(src.Path)
		if err != nil {
			return 0, err
		}
		log.V(1).Info("importing registry schemas", "files", len(files))
		imported := 0
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return imported, err
			}
			n, err := r.registryFile(file)
			imported += n
			if err != nil {
				return imported, err
			}
		}
		return imported, nil
	case config.SourceLegacy, config.SourceSAM:
		return r.legacyFile(string(src.Kind()), src.Path)
	default:
		return 0, fmt.Errorf("unsupported source kind %q", src.Label)
	}
}

func (r *runner) registryFile(path string) (n int, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveImport(string(config.SourceRegistry), time.Since(start), n, err) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	doc, err := resolver.ParseRegistrySchema(data)
	if err != nil {
		r.report.Add(path, problems.InvalidDocument, "%v", err)
		return 0, nil
	}

	err = guard(func() error {
		_, err := r.resolver.Import(doc)
		return err
	})
	switch {
	case err == nil:
		return 1, nil
	case resolver.IsFatal(err):
		return 0, fmt.Errorf("%s: %w", path, err)
	default:
		r.report.Add(doc.TypeName, problems.InvalidDocument, "%v", err)
		return 0, nil
	}
}

func (r *runner) legacyFile(kind, path string) (n int, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveImport(kind, time.Since(start), n, err) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	spec, err := legacy.Parse(data)
	if err != nil {
		return 0, err
	}
	var imported []*model.Resource
	err = guard(func() error {
		var err error
		imported, err = r.legacy.Import(spec)
		return err
	})
	return len(imported), err
}

// guard runs fn and converts a store panic into the error it carries.
func guard(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			e, ok := v.(error)
			if !ok || !store.IsFatal(e) {
				panic(v)
			}
			err = e
		}
	}()
	return fn()
}

// registryFiles returns path itself, or the schema files directly inside
// the directory at path in name order.
func registryFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !hasRegistryExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

func hasRegistryExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range registryExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
