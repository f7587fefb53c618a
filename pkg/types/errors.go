//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import "fmt"

// ArgumentError reports a construction-time validation failure: the input
// does not satisfy the variant's grammar or invariants. No value is
// constructed when an ArgumentError is returned.
type ArgumentError struct {
	// Kind names the value variant being constructed, e.g. "decimal".
	Kind string
	// Reason describes why the input was rejected.
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
}

func argumentErrorf(kind, format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// InvalidEUIDError reports a malformed entity identifier. Construction is
// the only validation gate for EntityUIDs; one of these can only originate
// from ParseEntityUID/NewEntityUID or from decoding an engine payload that
// carries a malformed identifier.
type InvalidEUIDError struct {
	Input  string
	Reason string
}

func (e *InvalidEUIDError) Error() string {
	return fmt.Sprintf("invalid entity uid %q: %s", e.Input, e.Reason)
}

// ValueSerializationError reports an attempt to encode something the
// interchange format cannot represent.
type ValueSerializationError struct {
	Message string
}

func (e *ValueSerializationError) Error() string {
	return "value serialization: " + e.Message
}

// ValueDeserializationError reports an interchange payload whose shape
// matches no known value variant, or whose contents fail a variant's
// validation. The message always describes the offending shape; decode
// failures are never coerced to a default value.
type ValueDeserializationError struct {
	Message string
}

func (e *ValueDeserializationError) Error() string {
	return "value deserialization: " + e.Message
}

func deserializationErrorf(format string, args ...interface{}) *ValueDeserializationError {
	return &ValueDeserializationError{Message: fmt.Sprintf(format, args...)}
}
