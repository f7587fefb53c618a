//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
)

// Entity is a single entity in the store: its identifier, its attribute
// map, the identifiers of its parents in the hierarchy, and its tag map.
// Entities are immutable once built; the constructor copies every
// collection it is handed.
type Entity struct {
	uid     EntityUID
	attrs   map[string]Value
	parents []EntityUID
	tags    map[string]Value
}

// NewEntity builds an Entity. The uid must be non-zero and no attribute or
// tag value may be nil. attrs, parents and tags may each be nil, which is
// treated as empty.
func NewEntity(uid EntityUID, attrs map[string]Value, parents []EntityUID, tags map[string]Value) (Entity, error) {
	if uid.IsZero() {
		return Entity{}, argumentErrorf("entity", "entity uid must be set")
	}
	a := make(map[string]Value, len(attrs))
	for k, v := range attrs {
		if v == nil {
			return Entity{}, argumentErrorf("entity", "nil attribute value for key %q", k)
		}
		a[k] = v
	}
	t := make(map[string]Value, len(tags))
	for k, v := range tags {
		if v == nil {
			return Entity{}, argumentErrorf("entity", "nil tag value for key %q", k)
		}
		t[k] = v
	}
	p := make([]EntityUID, len(parents))
	copy(p, parents)
	return Entity{uid: uid, attrs: a, parents: p, tags: t}, nil
}

// UID returns the entity's identifier.
func (e Entity) UID() EntityUID { return e.uid }

// Attr returns the named attribute value, if present.
func (e Entity) Attr(name string) (Value, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// Tag returns the named tag value, if present.
func (e Entity) Tag(name string) (Value, bool) {
	v, ok := e.tags[name]
	return v, ok
}

// Parents returns a copy of the entity's parent identifiers.
func (e Entity) Parents() []EntityUID {
	p := make([]EntityUID, len(e.parents))
	copy(p, e.parents)
	return p
}

// Attrs returns a copy of the entity's attribute map.
func (e Entity) Attrs() map[string]Value {
	a := make(map[string]Value, len(e.attrs))
	for k, v := range e.attrs {
		a[k] = v
	}
	return a
}

// Tags returns a copy of the entity's tag map.
func (e Entity) Tags() map[string]Value {
	t := make(map[string]Value, len(e.tags))
	for k, v := range e.tags {
		t[k] = v
	}
	return t
}

type wireEntity struct {
	UID     json.RawMessage            `json:"uid"`
	Attrs   map[string]json.RawMessage `json:"attrs"`
	Parents []json.RawMessage          `json:"parents"`
	Tags    map[string]json.RawMessage `json:"tags"`
}

// MarshalJSON renders the entity in the interchange form consumed by the
// evaluator: {"uid": ..., "attrs": {...}, "parents": [...], "tags": {...}}.
// All four fields are always emitted.
func (e Entity) MarshalJSON() ([]byte, error) {
	attrs := e.attrs
	if attrs == nil {
		attrs = map[string]Value{}
	}
	tags := e.tags
	if tags == nil {
		tags = map[string]Value{}
	}
	parents := e.parents
	if parents == nil {
		parents = []EntityUID{}
	}
	return json.Marshal(struct {
		UID     EntityUID        `json:"uid"`
		Attrs   map[string]Value `json:"attrs"`
		Parents []EntityUID      `json:"parents"`
		Tags    map[string]Value `json:"tags"`
	}{UID: e.uid, Attrs: attrs, Parents: parents, Tags: tags})
}

// UnmarshalJSON parses the interchange form. The uid field is required;
// attrs, parents and tags default to empty when omitted.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var w wireEntity
	if err := json.Unmarshal(data, &w); err != nil {
		return deserializationErrorf("invalid entity JSON: %v", err)
	}
	if len(w.UID) == 0 {
		return deserializationErrorf("entity is missing a \"uid\" field")
	}
	uid, err := decodeUID(w.UID)
	if err != nil {
		return err
	}
	attrs := make(map[string]Value, len(w.Attrs))
	for k, raw := range w.Attrs {
		v, err := DecodeValue(raw)
		if err != nil {
			return err
		}
		attrs[k] = v
	}
	tags := make(map[string]Value, len(w.Tags))
	for k, raw := range w.Tags {
		v, err := DecodeValue(raw)
		if err != nil {
			return err
		}
		tags[k] = v
	}
	parents := make([]EntityUID, 0, len(w.Parents))
	for _, raw := range w.Parents {
		p, err := decodeUID(raw)
		if err != nil {
			return err
		}
		parents = append(parents, p)
	}
	built, err := NewEntity(uid, attrs, parents, tags)
	if err != nil {
		return deserializationErrorf("invalid entity: %v", err)
	}
	*e = built
	return nil
}

// decodeUID accepts either the bare {"type","id"} form used inside entity
// documents or the full "__entity" value escape.
func decodeUID(raw json.RawMessage) (EntityUID, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return EntityUID{}, deserializationErrorf("invalid entity uid JSON: %v", err)
	}
	if inner, ok := body["__entity"]; ok {
		raw = inner
	}
	var te struct {
		Type *string `json:"type"`
		ID   *string `json:"id"`
	}
	if err := json.Unmarshal(raw, &te); err != nil {
		return EntityUID{}, deserializationErrorf("invalid entity uid JSON: %v", err)
	}
	if te.Type == nil || te.ID == nil {
		return EntityUID{}, deserializationErrorf("entity uid requires \"type\" and \"id\" fields")
	}
	uid, err := NewEntityUID(*te.Type, *te.ID)
	if err != nil {
		return EntityUID{}, deserializationErrorf("invalid entity uid: %v", err)
	}
	return uid, nil
}
