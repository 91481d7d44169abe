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

// Package metrics records what a database build did: resources imported per
// source kind, problems per category, import latency and the final size of
// the database.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

const (
	namespace = "specdb"
	subsystem = "build"
)

// Metrics holds the prometheus collectors of one build. Every Metrics owns a
// private registry so concurrent builds never share series.
type Metrics struct {
	registry *prometheus.Registry

	resourcesImported *prometheus.CounterVec
	problems          *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
	entities          *prometheus.GaugeVec
}

// New returns Metrics registered with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resourcesImported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resources_imported_total",
				Help:      "Number of resource definitions imported, by source kind.",
			},
			[]string{"source"},
		),
		problems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "problems_total",
				Help:      "Number of import problems reported, by category.",
			},
			[]string{"category"},
		),
		importDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "import_duration_seconds",
				Help:      "Time spent importing one source document.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"source", "result"}, // result is "success" or "error"
		),
		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "entities",
				Help:      "Number of entities in the built database, by kind.",
			},
			[]string{"kind"},
		),
	}
	m.MustRegister(m.registry)
	return m
}

// MustRegister registers the collectors with registry.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.resourcesImported)
	registry.MustRegister(m.problems)
	registry.MustRegister(m.importDuration)
	registry.MustRegister(m.entities)
}

// Gatherer returns the private registry of m.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveImport records one source document import.
func (m *Metrics) ObserveImport(source string, elapsed time.Duration, resources int, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.importDuration.WithLabelValues(source, result).Observe(elapsed.Seconds())
	if resources > 0 {
		m.resourcesImported.WithLabelValues(source).Add(float64(resources))
	}
}

// ObserveProblems counts every problem in report by category.
func (m *Metrics) ObserveProblems(report *problems.Report) {
	for category, n := range report.Counts() {
		m.problems.WithLabelValues(string(category)).Add(float64(n))
	}
}

// ObserveDatabase sets the entity gauges from the contents of db.
func (m *Metrics) ObserveDatabase(db *store.Store) {
	for _, kind := range db.Kinds() {
		m.entities.WithLabelValues(string(kind)).Set(float64(db.Len(kind)))
	}
}

// WriteToTextfile writes the current values in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}
