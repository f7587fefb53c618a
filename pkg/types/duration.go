//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// durationPattern is anchored, so "5ms" binds to the ms group even though
// the m group could consume its digits.
var durationPattern = regexp.MustCompile(
	`^(-?)(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?(?:(\d+)ms)?$`)

var unitMillis = []int64{
	86400000, // d
	3600000,  // h
	60000,    // m
	1000,     // s
	1,        // ms
}

// Duration is a time-span extension value of the form [-]NdNhNmNsNms with
// at least one component present. All forms normalize to milliseconds;
// equality and ordering compare the normalized value, so "1h" equals "60m".
type Duration struct {
	value  string
	millis int64
}

// NewDuration validates s against the duration grammar. Overflow of the
// normalized millisecond total is rejected.
func NewDuration(s string) (Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Duration{}, argumentErrorf("duration", "empty input")
	}

	m := durationPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Duration{}, argumentErrorf("duration", "%q does not match the duration grammar", s)
	}

	var total int64
	seen := false
	for i, unit := range unitMillis {
		part := m[i+2]
		if part == "" {
			continue
		}
		seen = true
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return Duration{}, argumentErrorf("duration", "%q component overflows", s)
		}
		scaled, ok := mulNoOverflow(n, unit)
		if !ok {
			return Duration{}, argumentErrorf("duration", "%q component overflows", s)
		}
		total, ok = addNoOverflow(total, scaled)
		if !ok {
			return Duration{}, argumentErrorf("duration", "%q total overflows", s)
		}
	}
	if !seen {
		return Duration{}, argumentErrorf("duration", "%q has no components", s)
	}
	if m[1] == "-" {
		total = -total
	}
	return Duration{value: trimmed, millis: total}, nil
}

func mulNoOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	return r, r/b == a
}

func addNoOverflow(a, b int64) (int64, bool) {
	r := a + b
	return r, (r > a) == (b > 0)
}

func (d Duration) isValue() {}

// Millis returns the normalized total in milliseconds.
func (d Duration) Millis() int64 { return d.millis }

// Cmp compares two Durations by normalized value, returning -1, 0 or 1.
func (d Duration) Cmp(o Duration) int {
	switch {
	case d.millis < o.millis:
		return -1
	case d.millis > o.millis:
		return 1
	default:
		return 0
	}
}

// Equal implements Value; two Durations are equal if they denote the same
// span, regardless of textual form.
func (d Duration) Equal(o Value) bool {
	od, ok := o.(Duration)
	return ok && d.millis == od.millis
}

// ExprString implements Value.
func (d Duration) ExprString() string { return `duration("` + d.value + `")` }

func (d Duration) String() string { return d.value }

// MarshalJSON implements Value using the engine's "__extn" escape.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(extnValue{Fn: "duration", Arg: d.value})
}
