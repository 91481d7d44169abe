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

package builder

import (
	"github.com/cdklabs/awscdk-service-spec-sub000/pkg/model"
)

const autoScalingGroup = "AWS::AutoScaling::AutoScalingGroup"

// TagVariantFor picks the tag representation for a resource's tag property
// of type t.
func TagVariantFor(cloudFormationType string, t model.PropertyType) model.TagVariant {
	if cloudFormationType == autoScalingGroup {
		return model.TagASG
	}
	switch v := t.(type) {
	case model.TagType:
		return v.Variant
	case model.MapType:
		if v.Element == model.String {
			return model.TagMap
		}
	}
	return model.TagStandard
}

// MarkTagged records name as the resource's tag property and rewrites the
// property's type to the matching tag type. It returns false when the
// resource has no such property, staged or committed.
func (rb *ResourceBuilder) MarkTagged(name string) bool {
	candidate, staged := rb.properties.Staged(name)
	if !staged {
		committed, ok := rb.properties.Committed(name)
		if !ok {
			return false
		}
		candidate = &model.Property{Type: committed.Type}
		rb.properties.SetProperty(name, candidate)
	}

	variant := TagVariantFor(rb.resource.CloudFormationType, candidate.Type)
	candidate.Type = model.Tag(variant)
	rb.resource.TagInformation = &model.TagInformation{
		TagPropertyName: name,
		Variant:         variant,
	}
	return true
}
