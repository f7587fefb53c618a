//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"encoding/json"

	"github.com/manetu/cedarbridge/pkg/types"
)

// answer is the outermost envelope every engine call returns:
//
//	{"success": "true",  "result": "<json document>"}
//	{"success": "false", "isInternal": bool, "errors": [...]}
//
// The result field is a JSON document nested in a string, per the engine's
// contract.
type answer struct {
	Success    string   `json:"success"`
	Result     string   `json:"result"`
	IsInternal *bool    `json:"isInternal"`
	Errors     []string `json:"errors"`
}

// decodeAnswer unwraps the envelope, returning the result document on
// success and a classified error on failure. isInternal=false maps to
// BadRequestError; true, absent, or any unrecognized discriminator maps to
// InternalError so that no diagnostic is ever dropped.
func decodeAnswer(raw string) ([]byte, error) {
	var a answer
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, &types.ValueDeserializationError{Message: "malformed engine answer: " + err.Error()}
	}
	switch a.Success {
	case "true":
		return []byte(a.Result), nil
	case "false":
		diags := a.Errors
		if len(diags) == 0 {
			diags = []string{"engine reported failure with no diagnostics"}
		}
		if a.IsInternal != nil && !*a.IsInternal {
			bad, err := NewBadRequestError(diags)
			if err != nil {
				return nil, err
			}
			return nil, bad
		}
		internal, err := NewInternalError(diags)
		if err != nil {
			return nil, err
		}
		return nil, internal
	default:
		internal, err := NewInternalError([]string{"unrecognized answer discriminator: " + raw})
		if err != nil {
			return nil, err
		}
		return nil, internal
	}
}
