//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import "encoding/json"

// Offset is the composite extension value datetime.offset(duration): a base
// Datetime shifted by a Duration (positive toward the future, negative
// toward the past). Both components must be already-constructed values, so
// an Offset is valid by construction.
type Offset struct {
	datetime Datetime
	duration Duration
}

// NewOffset composes a Datetime and a Duration. Zero-valued (unconstructed)
// components are rejected.
func NewOffset(datetime Datetime, duration Duration) (Offset, error) {
	if datetime.value == "" {
		return Offset{}, argumentErrorf("offset", "datetime component is not set")
	}
	if duration.value == "" {
		return Offset{}, argumentErrorf("offset", "duration component is not set")
	}
	return Offset{datetime: datetime, duration: duration}, nil
}

func (o Offset) isValue() {}

// Datetime returns the base datetime component.
func (o Offset) Datetime() Datetime { return o.datetime }

// Duration returns the offset duration component.
func (o Offset) Duration() Duration { return o.duration }

// Equal implements Value.
func (o Offset) Equal(v Value) bool {
	ov, ok := v.(Offset)
	return ok && o.datetime.Equal(ov.datetime) && o.duration.Equal(ov.duration)
}

// ExprString implements Value.
func (o Offset) ExprString() string {
	return o.datetime.ExprString() + ".offset(" + o.duration.ExprString() + ")"
}

func (o Offset) String() string { return o.ExprString() }

// MarshalJSON implements Value. Unlike single-argument extensions, offset
// carries its two components under "args".
func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]extnCall{
		"__extn": {Fn: "offset", Args: []Value{o.datetime, o.duration}},
	})
}
