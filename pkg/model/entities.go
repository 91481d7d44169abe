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

package model

import (
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/store"
)

const (
	KindService        store.Kind = "service"
	KindResource       store.Kind = "resource"
	KindTypeDefinition store.Kind = "typeDefinition"
)

const (
	// RelHasResource links a Service to the Resources it contains.
	RelHasResource = "hasResource"
	// RelUsesType links a Resource to the TypeDefinitions in its scope.
	RelUsesType = "usesType"
)

// Service groups the resources of one CloudFormation namespace.
type Service struct {
	store.Base              `json:"-"`
	Name                    string `json:"name"`
	ShortName               string `json:"shortName"`
	Capitalized             string `json:"capitalized"`
	CloudFormationNamespace string `json:"cloudFormationNamespace"`
}

func (*Service) EntityKind() store.Kind { return KindService }

// TagInformation records which property carries tags and in which form.
type TagInformation struct {
	TagPropertyName string     `json:"tagPropertyName"`
	Variant         TagVariant `json:"variant"`
}

// Resource is one CloudFormation resource type. CloudFormationType is the
// globally unique key.
type Resource struct {
	store.Base                      `json:"-"`
	Name                            string               `json:"name"`
	CloudFormationType              string               `json:"cloudFormationType"`
	Documentation                   string               `json:"documentation,omitempty"`
	Properties                      map[string]*Property `json:"properties"`
	Attributes                      map[string]*Property `json:"attributes"`
	PrimaryIdentifier               []string             `json:"primaryIdentifier,omitempty"`
	TagInformation                  *TagInformation      `json:"tagInformation,omitempty"`
	IsStateful                      *bool                `json:"isStateful,omitempty"`
	Scrutinizable                   string               `json:"scrutinizable,omitempty"`
	AdditionalReplacementProperties [][]string           `json:"additionalReplacementProperties,omitempty"`
	CloudFormationTransform         string               `json:"cloudFormationTransform,omitempty"`
}

func (*Resource) EntityKind() store.Kind { return KindResource }

// TypeDefinition is a named record type. Its identity is scoped to the
// Resource that uses it.
type TypeDefinition struct {
	store.Base            `json:"-"`
	Name                  string               `json:"name"`
	Properties            map[string]*Property `json:"properties"`
	Documentation         string               `json:"documentation,omitempty"`
	MustRenderForBwCompat bool                 `json:"mustRenderForBwCompat,omitempty"`
}

func (*TypeDefinition) EntityKind() store.Kind { return KindTypeDefinition }
