//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Set is an immutable collection of Values. Duplicates are removed at
// construction and element order is not significant for equality.
type Set struct {
	elems []Value
}

// NewSet builds a Set from the given elements. Nil elements are rejected;
// duplicates (by Equal) are dropped, keeping first occurrence order.
func NewSet(elems ...Value) (Set, error) {
	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			return Set{}, argumentErrorf("set", "nil element")
		}
		dup := false
		for _, existing := range out {
			if existing.Equal(e) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return Set{elems: out}, nil
}

func (s Set) isValue() {}

// Len returns the number of distinct elements.
func (s Set) Len() int { return len(s.elems) }

// Contains reports whether v is an element of the set.
func (s Set) Contains(v Value) bool {
	for _, e := range s.elems {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

// Iterate calls fn for each element until fn returns false.
func (s Set) Iterate(fn func(Value) bool) {
	for _, e := range s.elems {
		if !fn(e) {
			return
		}
	}
}

// Equal implements Value; order-insensitive.
func (s Set) Equal(o Value) bool {
	os, ok := o.(Set)
	if !ok || len(s.elems) != len(os.elems) {
		return false
	}
	for _, e := range s.elems {
		if !os.Contains(e) {
			return false
		}
	}
	return true
}

// ExprString implements Value, e.g. `[1, 2, 3]`. Elements render in
// insertion order.
func (s Set) ExprString() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range s.elems {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.ExprString())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (s Set) String() string { return s.ExprString() }

// MarshalJSON implements Value as a JSON array of encoded elements.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range s.elems {
		if i != 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
