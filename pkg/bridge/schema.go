//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// SchemaForm discriminates the two textual schema representations the
// engine accepts.
type SchemaForm int

const (
	// JSONSchemaForm is the engine's JSON schema format.
	JSONSchemaForm SchemaForm = iota
	// CedarSchemaForm is the human-readable schema format.
	CedarSchemaForm
)

// Schema is an opaque validated container for schema text. JSON-form
// schemas are checked for JSON well-formedness at construction; semantic
// validation belongs to the engine. Equality is content equality.
type Schema struct {
	form SchemaForm
	text string
}

// NewJSONSchema wraps a JSON-format schema document, verifying it is
// syntactically valid JSON.
func NewJSONSchema(text string) (*Schema, error) {
	if !json.Valid([]byte(text)) {
		return nil, errors.New("schema is not valid JSON")
	}
	return &Schema{form: JSONSchemaForm, text: text}, nil
}

// NewCedarSchema wraps a human-readable schema document. No local parsing
// is attempted; the engine is the authority on the grammar.
func NewCedarSchema(text string) (*Schema, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("schema text must be non-empty")
	}
	return &Schema{form: CedarSchemaForm, text: text}, nil
}

// Form returns the schema's representation.
func (s *Schema) Form() SchemaForm { return s.form }

// Text returns the wrapped document verbatim.
func (s *Schema) Text() string { return s.text }

// Equal is content equality.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.form == o.form && s.text == o.text
}

// MarshalJSON renders the schema for the wire: JSON-form schemas embed
// as-is, human-readable schemas as a string.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s.form == JSONSchemaForm {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}
