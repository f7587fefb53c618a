//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import "encoding/json"

// Unknown is a placeholder value produced and consumed by partial
// evaluation (an experimental engine feature). The argument names the
// unknown input.
type Unknown struct {
	name string
}

// NewUnknown builds an Unknown placeholder for the named input.
func NewUnknown(name string) (Unknown, error) {
	if name == "" {
		return Unknown{}, argumentErrorf("unknown", "empty name")
	}
	return Unknown{name: name}, nil
}

func (u Unknown) isValue() {}

// Name returns the unknown input's name.
func (u Unknown) Name() string { return u.name }

// Equal implements Value.
func (u Unknown) Equal(o Value) bool {
	ou, ok := o.(Unknown)
	return ok && u.name == ou.name
}

// ExprString implements Value.
func (u Unknown) ExprString() string { return `unknown("` + u.name + `")` }

func (u Unknown) String() string { return u.ExprString() }

// MarshalJSON implements Value using the engine's "__extn" escape.
func (u Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(extnValue{Fn: "unknown", Arg: u.name})
}
