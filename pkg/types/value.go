//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package types defines the Cedar value and entity model exchanged with the
// native engine.
//
// Every value variant is validated at construction and immutable afterwards:
// a successfully constructed value is guaranteed valid for its entire
// lifetime, so nothing downstream (encoding, the foreign call, diagnostics
// rendering) revalidates.
//
// # Variants
//
// Primitive values:
//   - [Bool], [Long], [String]
//
// Structured values:
//   - [Set]: immutable, duplicate-free collection
//   - [Record]: string-keyed value mapping
//   - [EntityUID]: a typed entity reference, e.g. User::"alice"
//
// Extension values (engine-defined, carried as function calls on the wire):
//   - [Decimal]: fixed-point decimal with up to four fractional digits
//   - [IPAddr]: IPv4/IPv6 address or prefix
//   - [Datetime], [Duration], [Offset]
//   - [Unknown]: placeholder for partial evaluation
//
// # Interchange encoding
//
// Values marshal to the JSON form the native engine defines: primitives are
// bare JSON, sets are arrays, records are objects, entity references use the
// "__entity" escape and extension values the "__extn" escape. Decoding is
// shape-matched (the wire format carries no type tag); see [DecodeValue] for
// the precedence order.
package types

import "encoding/json"

// Value is a value in the Cedar policy language.
//
// All implementations are immutable and safe for concurrent use.
type Value interface {
	json.Marshaler

	// Equal reports structural equality with another Value. Values of
	// different variants are never equal.
	Equal(Value) bool

	// ExprString renders the value as a Cedar policy-language literal,
	// e.g. `decimal("1.5")` or `User::"alice"`. The rendering is used for
	// diagnostics and tests, not evaluation.
	ExprString() string

	String() string

	// isValue closes the variant set.
	isValue()
}
