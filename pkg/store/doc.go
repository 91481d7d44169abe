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

// Package store implements the in-memory graph database that holds the
// service specification model.
//
// A Store holds entities of registered kinds and named, directed
// relationships between them. Every entity receives an opaque ID when it is
// allocated. IDs are only stable within one build: two stores built from the
// same inputs may assign different IDs, so IDs must never be used as a key
// across stores.
//
// Allocation is unconditional. The store never checks whether an entity with
// the same natural key already exists, callers are expected to Lookup first:
//
//	existing := db.Lookup(model.KindResource, "cloudFormationType", store.Equals, "AWS::S3::Bucket")
//	if res, ok := existing.Optional(); ok {
//	    // reuse res
//	}
//
// Lookups never fail. Result.Only and Result.Optional assert the cardinality
// the caller expects and panic with a *CardinalityError when it is violated,
// which aborts the build.
//
// A Store is not safe for concurrent use. A build owns its store exclusively.
package store
