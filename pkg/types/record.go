//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Record is an immutable mapping of attribute names to Values. A value must
// be present for every key; absence is modelled by omitting the key, never
// by a nil value.
type Record struct {
	entries map[string]Value
}

// NewRecord builds a Record from m, copying the map. Nil values are
// rejected at insertion.
func NewRecord(m map[string]Value) (Record, error) {
	entries := make(map[string]Value, len(m))
	for k, v := range m {
		if v == nil {
			return Record{}, argumentErrorf("record", "nil value for key %q", k)
		}
		entries[k] = v
	}
	return Record{entries: entries}, nil
}

func (r Record) isValue() {}

// Len returns the number of entries.
func (r Record) Len() int { return len(r.entries) }

// Get returns the value for key, if present.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.entries[key]
	return v, ok
}

// Keys returns the record's keys in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Iterate calls fn for each entry in lexical key order until fn returns
// false.
func (r Record) Iterate(fn func(string, Value) bool) {
	for _, k := range r.Keys() {
		if !fn(k, r.entries[k]) {
			return
		}
	}
}

// Equal implements Value.
func (r Record) Equal(o Value) bool {
	or, ok := o.(Record)
	if !ok || len(r.entries) != len(or.entries) {
		return false
	}
	for k, v := range r.entries {
		ov, ok := or.entries[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ExprString implements Value, e.g. `{"a": 1, "b": true}`, keys in lexical
// order.
func (r Record) ExprString() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.Keys() {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteCedar(k))
		sb.WriteString(": ")
		sb.WriteString(r.entries[k].ExprString())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (r Record) String() string { return r.ExprString() }

// MarshalJSON implements Value as a JSON object with encoded values, keys
// in lexical order for deterministic output.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i != 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
