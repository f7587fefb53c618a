//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"sort"
)

// Entities is a collection of entities keyed by uid. At most one entity may
// exist per uid; duplicates are rejected at insertion.
type Entities struct {
	byUID map[EntityUID]Entity
	order []EntityUID
}

// NewEntities builds a collection from the given entities.
func NewEntities(entities ...Entity) (*Entities, error) {
	es := &Entities{byUID: make(map[EntityUID]Entity, len(entities))}
	for _, e := range entities {
		if err := es.Add(e); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// Add inserts an entity, failing if one with the same uid is already
// present.
func (es *Entities) Add(e Entity) error {
	if e.uid.IsZero() {
		return argumentErrorf("entities", "entity uid must be set")
	}
	if _, exists := es.byUID[e.uid]; exists {
		return argumentErrorf("entities", "duplicate entity uid %s", e.uid.ExprString())
	}
	if es.byUID == nil {
		es.byUID = map[EntityUID]Entity{}
	}
	es.byUID[e.uid] = e
	es.order = append(es.order, e.uid)
	return nil
}

// Get returns the entity with the given uid, if present.
func (es *Entities) Get(uid EntityUID) (Entity, bool) {
	e, ok := es.byUID[uid]
	return e, ok
}

// Len returns the number of entities.
func (es *Entities) Len() int {
	if es == nil {
		return 0
	}
	return len(es.byUID)
}

// Iterate calls fn for each entity in insertion order until fn returns
// false.
func (es *Entities) Iterate(fn func(Entity) bool) {
	if es == nil {
		return
	}
	for _, uid := range es.order {
		if !fn(es.byUID[uid]) {
			return
		}
	}
}

// UIDs returns the uids of all entities, sorted by their canonical
// rendering.
func (es *Entities) UIDs() []EntityUID {
	uids := make([]EntityUID, 0, es.Len())
	if es != nil {
		uids = append(uids, es.order...)
	}
	sort.Slice(uids, func(i, j int) bool {
		return uids[i].ExprString() < uids[j].ExprString()
	})
	return uids
}

// MarshalJSON renders the collection as a JSON array of entity documents in
// insertion order.
func (es *Entities) MarshalJSON() ([]byte, error) {
	out := make([]Entity, 0, es.Len())
	es.Iterate(func(e Entity) bool {
		out = append(out, e)
		return true
	})
	return json.Marshal(out)
}

// UnmarshalJSON parses a JSON array of entity documents, enforcing uid
// uniqueness.
func (es *Entities) UnmarshalJSON(data []byte) error {
	var raw []Entity
	if err := json.Unmarshal(data, &raw); err != nil {
		return deserializationErrorf("invalid entities JSON: %v", err)
	}
	built, err := NewEntities(raw...)
	if err != nil {
		return deserializationErrorf("invalid entities: %v", err)
	}
	*es = *built
	return nil
}
