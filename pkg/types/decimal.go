//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"regexp"
	"strings"
)

// maxDecimalLength accounts for 19 integer digits, the point and an
// optional sign.
const maxDecimalLength = 21

var decimalPattern = regexp.MustCompile(`^-?[0-9]*\.[0-9]{0,4}$`)

// Decimal is a fixed-point decimal extension value: optional sign, optional
// integer digits, a mandatory decimal point and zero to four fractional
// digits, at most 21 characters overall. Two Decimals are equal iff their
// validated strings match.
type Decimal struct {
	value string
}

// NewDecimal validates s against the decimal grammar. Surrounding
// whitespace is trimmed before validation; the trimmed form is stored and
// never altered afterwards.
func NewDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, argumentErrorf("decimal", "empty input")
	}
	if len(s) > maxDecimalLength {
		return Decimal{}, argumentErrorf("decimal", "%q exceeds %d characters", s, maxDecimalLength)
	}
	if !decimalPattern.MatchString(s) {
		return Decimal{}, argumentErrorf("decimal", `%q does not match the decimal grammar (e.g. "1.0000")`, s)
	}
	return Decimal{value: s}, nil
}

func (d Decimal) isValue() {}

// Equal implements Value.
func (d Decimal) Equal(o Value) bool {
	od, ok := o.(Decimal)
	return ok && d.value == od.value
}

// ExprString implements Value.
func (d Decimal) ExprString() string { return `decimal("` + d.value + `")` }

func (d Decimal) String() string { return d.value }

// MarshalJSON implements Value using the engine's "__extn" escape.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(extnValue{Fn: "decimal", Arg: d.value})
}
