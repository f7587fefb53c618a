//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Bool is a Cedar boolean value.
type Bool bool

func (b Bool) isValue() {}

// Equal implements Value.
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && b == ob
}

// ExprString implements Value.
func (b Bool) ExprString() string { return strconv.FormatBool(bool(b)) }

func (b Bool) String() string { return b.ExprString() }

// MarshalJSON implements Value.
func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// Long is a Cedar 64-bit signed integer value.
type Long int64

func (l Long) isValue() {}

// Equal implements Value.
func (l Long) Equal(o Value) bool {
	ol, ok := o.(Long)
	return ok && l == ol
}

// ExprString implements Value.
func (l Long) ExprString() string { return strconv.FormatInt(int64(l), 10) }

func (l Long) String() string { return l.ExprString() }

// MarshalJSON implements Value.
func (l Long) MarshalJSON() ([]byte, error) { return json.Marshal(int64(l)) }

// String is a Cedar string value.
type String string

func (s String) isValue() {}

// Equal implements Value.
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && s == os
}

// ExprString implements Value.
func (s String) ExprString() string { return quoteCedar(string(s)) }

func (s String) String() string { return string(s) }

// MarshalJSON implements Value.
func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

// quoteCedar renders s as a double-quoted Cedar string literal, escaping
// the characters the Cedar grammar requires.
func quoteCedar(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
