//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

// Severity ranks a DetailedError: advice < warning < error.
type Severity string

const (
	SeverityAdvice  Severity = "advice"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeverityAdvice:  1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// Cmp orders severities, returning -1, 0 or 1. Unrecognized severities rank
// below advice.
func (s Severity) Cmp(o Severity) int {
	a, b := severityRank[s], severityRank[o]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SourceLabel is a byte range in the offending source text, with an
// optional annotation.
type SourceLabel struct {
	Label string `json:"label,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// DetailedError is the structured diagnostic produced by the native
// evaluator: a required message plus optional help text, error code, URL,
// severity, source spans and recursively related errors. Absent optionals
// are omitted from the JSON form rather than encoded as null.
type DetailedError struct {
	Message         string          `json:"message"`
	Help            string          `json:"help,omitempty"`
	Code            string          `json:"code,omitempty"`
	URL             string          `json:"url,omitempty"`
	Severity        Severity        `json:"severity,omitempty"`
	SourceLocations []SourceLabel   `json:"sourceLocations,omitempty"`
	Related         []DetailedError `json:"related,omitempty"`
}

func (e DetailedError) Error() string { return e.Message }
