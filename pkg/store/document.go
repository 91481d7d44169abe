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

package store

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// DocumentVersion is the version written by Save.
const DocumentVersion = 1

// Document is the portable form of a store. IDs are preserved within a
// document, but carry no meaning across documents written by different
// builds.
type Document struct {
	Version       int                  `json:"version"`
	Entities      []EntityRecord       `json:"entities"`
	Relationships []RelationshipRecord `json:"relationships"`
}

// EntityRecord is one serialized entity.
type EntityRecord struct {
	ID   ID              `json:"id"`
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// RelationshipRecord is one serialized relationship edge.
type RelationshipRecord struct {
	Name string `json:"name"`
	From ID     `json:"from"`
	To   ID     `json:"to"`
}

// Document builds the portable form of the store.
func (s *Store) Document() (*Document, error) {
	ids := make([]ID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	doc := &Document{
		Version:       DocumentVersion,
		Entities:      make([]EntityRecord, 0, len(ids)),
		Relationships: []RelationshipRecord{},
	}
	for _, id := range ids {
		e := s.entities[id]
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s: %w", e.EntityKind(), id, err)
		}
		doc.Entities = append(doc.Entities, EntityRecord{ID: id, Kind: e.EntityKind(), Data: data})
	}

	names := make([]string, 0, len(s.links))
	for name := range s.links {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, l := range s.links[name] {
			doc.Relationships = append(doc.Relationships, RelationshipRecord{Name: name, From: l.from, To: l.to})
		}
	}
	return doc, nil
}

// Save writes the store as a JSON document.
func (s *Store) Save(w io.Writer) error {
	doc, err := s.Document()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Load reads a document written by Save into an empty store.
func (s *Store) Load(r io.Reader) error {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode store document: %w", err)
	}
	return s.Restore(&doc)
}

// Restore rebuilds the store content from a document, keeping its IDs.
// Every record is decoded and every edge checked before the store is
// touched, so a failed Restore leaves the store empty.
func (s *Store) Restore(doc *Document) error {
	if len(s.entities) > 0 {
		return ErrNotEmpty
	}
	if doc.Version != DocumentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	records := slices.Clone(doc.Entities)
	slices.SortFunc(records, func(a, b EntityRecord) int { return int(a.ID) - int(b.ID) })

	decoded := make(map[ID]Entity, len(records))
	for _, rec := range records {
		spec, ok := s.schema.Kinds[rec.Kind]
		if !ok {
			return fmt.Errorf("entity %s has unknown kind %q", rec.ID, rec.Kind)
		}
		if _, dup := decoded[rec.ID]; dup {
			return fmt.Errorf("duplicate entity id %s", rec.ID)
		}
		e := spec.New()
		if err := json.Unmarshal(rec.Data, e); err != nil {
			return fmt.Errorf("failed to decode %s %s: %w", rec.Kind, rec.ID, err)
		}
		decoded[rec.ID] = e
	}

	for _, rel := range doc.Relationships {
		spec, ok := s.schema.Relationships[rel.Name]
		if !ok {
			return fmt.Errorf("unknown relationship %q", rel.Name)
		}
		from, okFrom := decoded[rel.From]
		to, okTo := decoded[rel.To]
		if !okFrom || !okTo || from.EntityKind() != spec.From || to.EntityKind() != spec.To {
			return fmt.Errorf("relationship %q references missing entities %s -> %s", rel.Name, rel.From, rel.To)
		}
	}

	for _, rec := range records {
		s.insert(rec.ID, decoded[rec.ID])
		if rec.ID >= s.nextID {
			s.nextID = rec.ID + 1
		}
	}
	for _, rel := range doc.Relationships {
		s.addLink(rel.Name, rel.From, rel.To)
	}
	return nil
}
