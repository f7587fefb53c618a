//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"strings"
	"unicode/utf16"
)

// MaxEntityUIDLength bounds the textual form accepted by ParseEntityUID.
const MaxEntityUIDLength = 1024

// EntityUID identifies an entity by type path and id, e.g.
// Namespace::User::"alice". The textual grammar is
//
//	(Ident::)+ '"' id '"'
//
// where Ident is [A-Za-z_][A-Za-z0-9_]* and the id may contain any character
// except an unescaped quote or backslash, with the escape sequences \\ \" \'
// \n \r \t \0 and \uXXXX. Construction is the only validation gate; a
// constructed EntityUID never changes.
type EntityUID struct {
	typePath string
	id       string
}

// NewEntityUID builds an EntityUID from an already-split type path
// (e.g. "Namespace::User") and a raw, unescaped id.
func NewEntityUID(typePath, id string) (EntityUID, error) {
	if err := validateTypePath(typePath); err != nil {
		return EntityUID{}, err
	}
	uid := EntityUID{typePath: typePath, id: id}
	if len(uid.ExprString()) > MaxEntityUIDLength {
		return EntityUID{}, &InvalidEUIDError{Input: typePath, Reason: "exceeds maximum length"}
	}
	return uid, nil
}

// ParseEntityUID parses the textual form Type::"id".
func ParseEntityUID(s string) (EntityUID, error) {
	if s == "" {
		return EntityUID{}, &InvalidEUIDError{Input: s, Reason: "empty"}
	}
	if len(s) > MaxEntityUIDLength {
		return EntityUID{}, &InvalidEUIDError{Input: s, Reason: "exceeds maximum length"}
	}

	// The type path cannot contain quotes, so the first quote opens the id.
	q := strings.IndexByte(s, '"')
	if q < 0 {
		return EntityUID{}, &InvalidEUIDError{Input: s, Reason: `missing ::"id" suffix`}
	}
	if q < 3 || s[q-2:q] != "::" {
		return EntityUID{}, &InvalidEUIDError{Input: s, Reason: `id must be introduced by ::`}
	}
	typePath := s[:q-2]
	if err := validateTypePath(typePath); err != nil {
		return EntityUID{}, err
	}

	if s[len(s)-1] != '"' || len(s) == q+1 {
		return EntityUID{}, &InvalidEUIDError{Input: s, Reason: "unterminated id"}
	}
	id, err := unescapeID(s, s[q+1:len(s)-1])
	if err != nil {
		return EntityUID{}, err
	}
	return EntityUID{typePath: typePath, id: id}, nil
}

func (u EntityUID) isValue() {}

// Type returns the entity type path, e.g. "Namespace::User".
func (u EntityUID) Type() string { return u.typePath }

// ID returns the raw (unescaped) entity id.
func (u EntityUID) ID() string { return u.id }

// IsZero reports whether u is the zero EntityUID (no constructor produces
// one; useful for detecting unset optional fields).
func (u EntityUID) IsZero() bool { return u.typePath == "" && u.id == "" }

// Equal implements Value.
func (u EntityUID) Equal(o Value) bool {
	ou, ok := o.(EntityUID)
	return ok && u == ou
}

// ExprString implements Value, rendering the canonical Type::"id" form with
// id escaping applied.
func (u EntityUID) ExprString() string {
	return u.typePath + "::" + quoteCedar(u.id)
}

func (u EntityUID) String() string { return u.ExprString() }

type jsonEUID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// MarshalJSON implements Value using the engine's "__entity" escape.
func (u EntityUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]jsonEUID{
		"__entity": {Type: u.typePath, ID: u.id},
	})
}

func validateTypePath(typePath string) error {
	if typePath == "" {
		return &InvalidEUIDError{Input: typePath, Reason: "empty type path"}
	}
	for _, seg := range strings.Split(typePath, "::") {
		if !isIdent(seg) {
			return &InvalidEUIDError{Input: typePath, Reason: "type path segment " + seg + " is not an identifier"}
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// unescapeID resolves the escape sequences permitted inside a quoted id.
// full is the complete uid text, used only for error reporting.
func unescapeID(full, id string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch c {
		case '"':
			return "", &InvalidEUIDError{Input: full, Reason: "unescaped quote in id"}
		case '\\':
			i++
			if i >= len(id) {
				return "", &InvalidEUIDError{Input: full, Reason: "dangling escape in id"}
			}
			switch id[i] {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			case 'u':
				if i+4 >= len(id) {
					return "", &InvalidEUIDError{Input: full, Reason: "truncated \\u escape in id"}
				}
				r, ok := parseHex4(id[i+1 : i+5])
				if !ok {
					return "", &InvalidEUIDError{Input: full, Reason: "malformed \\u escape in id"}
				}
				i += 4
				// Combine surrogate pairs when both halves are escaped.
				if utf16.IsSurrogate(r) && i+6 < len(id) && id[i+1] == '\\' && id[i+2] == 'u' {
					if r2, ok := parseHex4(id[i+3 : i+7]); ok {
						if dec := utf16.DecodeRune(r, r2); dec != 0xFFFD {
							r = dec
							i += 6
						}
					}
				}
				sb.WriteRune(r)
			default:
				return "", &InvalidEUIDError{Input: full, Reason: "unknown escape \\" + string(id[i]) + " in id"}
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

func parseHex4(s string) (rune, bool) {
	var r rune
	for i := 0; i < 4; i++ {
		r <<= 4
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}
