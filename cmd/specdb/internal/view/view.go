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
	"encoding/json"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"
)

var _ Viewer = (*HumanView)(nil)
var _ Viewer = (*StructuredView)(nil)

type Viewer interface {
	Logger() logr.Logger
}

// NewViewer returns the view for vt. Logs go to logs, rendered output to s.
func NewViewer(vt ViewType, s *Stream, logs *Stream, level LogLevel) Viewer {
	switch vt {
	case ViewHuman:
		return NewHumanView(s, logs, level)
	case ViewJSON:
		return NewJSONView(s, logs, level)
	case ViewYAML:
		return NewYAMLView(s, logs, level)
	default:
		panic("unknown view type")
	}
}

type HumanView struct {
	*Stream
	logger logr.Logger
}

func NewHumanView(s *Stream, logs *Stream, level LogLevel) *HumanView {
	logger := NewNopLogger()
	if level != LogLevelSilent {
		logger = NewHumanLogger(logs.Writer, level)
	}
	return &HumanView{
		Stream: s,
		logger: logger,
	}
}

func (h *HumanView) Logger() logr.Logger {
	return h.logger
}

// StructuredView renders results as JSON or YAML documents.
type StructuredView struct {
	*Stream
	logger  logr.Logger
	marshal func(any) ([]byte, error)
}

func NewJSONView(s *Stream, logs *Stream, level LogLevel) *StructuredView {
	return newStructuredView(s, logs, level, func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	})
}

func NewYAMLView(s *Stream, logs *Stream, level LogLevel) *StructuredView {
	return newStructuredView(s, logs, level, yaml.Marshal)
}

func newStructuredView(s *Stream, logs *Stream, level LogLevel, marshal func(any) ([]byte, error)) *StructuredView {
	logger := NewNopLogger()
	if level != LogLevelSilent {
		logger = NewJSONLogger(logs.Writer, level)
	}
	return &StructuredView{
		Stream:  s,
		logger:  logger,
		marshal: marshal,
	}
}

func (v *StructuredView) Logger() logr.Logger {
	return v.logger
}

// Render writes out as a single document.
func (v *StructuredView) Render(out any) error {
	data, err := v.marshal(out)
	if err != nil {
		return err
	}
	v.Printf("%s", data)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		v.Println()
	}
	return nil
}
