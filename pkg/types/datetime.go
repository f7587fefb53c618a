//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"regexp"
	"time"
)

// Instant bounds mirror the engine: 0000-01-01T00:00:00+2359 and
// 9999-12-31T23:59:59-2359, in epoch milliseconds.
const (
	minInstantMillis = -62167305540000
	maxInstantMillis = 253402387139000
)

var offsetSuffix = regexp.MustCompile(`([+-])(\d{2})(\d{2})$`)

// Datetime is a point-in-time extension value. Accepted text forms:
//
//	YYYY-MM-DD
//	YYYY-MM-DDTHH:MM:SSZ
//	YYYY-MM-DDTHH:MM:SS.mmmZ
//	YYYY-MM-DDTHH:MM:SS(.mmm)?±hhmm
//
// The original text is retained for round-tripping; equality compares the
// parsed instant, so "2024-01-01T01:00:00+0100" equals
// "2024-01-01T00:00:00Z".
type Datetime struct {
	value   string
	instant time.Time
}

// NewDatetime validates s against the supported datetime forms.
func NewDatetime(s string) (Datetime, error) {
	if s == "" {
		return Datetime{}, argumentErrorf("datetime", "empty input")
	}
	instant, err := parseInstant(s)
	if err != nil {
		return Datetime{}, err
	}
	ms := instant.UnixMilli()
	if ms < minInstantMillis || ms > maxInstantMillis {
		return Datetime{}, argumentErrorf("datetime", "%q is outside the supported range", s)
	}
	return Datetime{value: s, instant: instant}, nil
}

func parseInstant(s string) (time.Time, error) {
	if m := offsetSuffix.FindStringSubmatchIndex(s); m != nil {
		zone := s[m[0]:]
		local := s[:m[0]]
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"} {
			if t, err := time.Parse(layout+"-0700", local+zone); err == nil {
				return t, nil
			}
		}
		return time.Time{}, argumentErrorf("datetime", "%q is not a supported datetime form", s)
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// UTC forms accept only a literal Z suffix.
	if n := len(s); n > 0 && s[n-1] == 'Z' {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"} {
			if t, err := time.Parse(layout, s[:n-1]); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, argumentErrorf("datetime", "%q is not a supported datetime form", s)
}

func (d Datetime) isValue() {}

// Instant returns the parsed point in time (UTC).
func (d Datetime) Instant() time.Time { return d.instant.UTC() }

// Equal implements Value; two Datetimes are equal if they denote the same
// instant, regardless of textual form.
func (d Datetime) Equal(o Value) bool {
	od, ok := o.(Datetime)
	return ok && d.instant.UnixMilli() == od.instant.UnixMilli()
}

// ExprString implements Value.
func (d Datetime) ExprString() string { return `datetime("` + d.value + `")` }

func (d Datetime) String() string { return d.value }

// MarshalJSON implements Value using the engine's "__extn" escape.
func (d Datetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(extnValue{Fn: "datetime", Arg: d.value})
}
