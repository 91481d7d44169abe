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

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/builder"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/problems"
)

func TestObserveImport(t *testing.T) {
	m := New()

	m.ObserveImport("registry", 2*time.Millisecond, 3, nil)
	m.ObserveImport("registry", time.Millisecond, 1, nil)
	m.ObserveImport("legacy", time.Millisecond, 0, errors.New("broken"))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.resourcesImported.WithLabelValues("registry")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.resourcesImported))
	assert.Equal(t, 2, testutil.CollectAndCount(m.importDuration))
}

func TestObserveProblems(t *testing.T) {
	m := New()

	report := &problems.Report{}
	report.Add("AWS::S3::Bucket", problems.FieldConversion, "field %s", "A")
	report.Add("AWS::S3::Bucket", problems.FieldConversion, "field %s", "B")
	report.Add("AWS::SQS::Queue", problems.UnresolvedPath, "path")
	m.ObserveProblems(report)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.problems.WithLabelValues(string(problems.FieldConversion))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.problems.WithLabelValues(string(problems.UnresolvedPath))))

	require.NotPanics(t, func() { m.ObserveProblems(nil) })
}

func TestObserveDatabase(t *testing.T) {
	m := New()

	b := builder.New(model.NewDatabase(), logr.Discard())
	rb, err := b.Resource("AWS::S3::Bucket")
	require.NoError(t, err)
	rb.TypeDefinition("Rule")
	_, err = b.Resource("AWS::S3::AccessPoint")
	require.NoError(t, err)

	m.ObserveDatabase(b.DB())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.entities.WithLabelValues("service")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entities.WithLabelValues("resource")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entities.WithLabelValues("typeDefinition")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveImport("sam", time.Millisecond, 5, nil)

	families, err := b.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.NotEqual(t, "specdb_build_resources_imported_total", mf.GetName())
	}

	require.NotPanics(t, func() {
		New().MustRegister(prometheus.NewRegistry())
	})
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveImport("registry", time.Millisecond, 2, nil)

	path := filepath.Join(t.TempDir(), "build.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `specdb_build_resources_imported_total{source="registry"} 2`))
}
