//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"encoding/json"

	"github.com/manetu/cedarbridge/pkg/types"
)

// Decision is the outcome of request evaluation.
type Decision string

const (
	Allow Decision = "Allow"
	Deny  Decision = "Deny"
)

// Diagnostics carries the policies that determined a decision and any
// evaluation errors encountered along the way. A Deny with evaluation
// errors is still a decision, not a failure.
type Diagnostics struct {
	// Reason lists the ids of the policies that contributed to the decision.
	Reason []string `json:"reason"`
	Errors []string `json:"errors"`
}

// AuthorizationResponse is the decoded result of an AuthorizationOperation.
type AuthorizationResponse struct {
	Decision    Decision    `json:"decision"`
	Diagnostics Diagnostics `json:"diagnostics"`
	Warnings    []string    `json:"warnings"`
}

// Allowed reports whether the decision permits the request.
func (r *AuthorizationResponse) Allowed() bool { return r.Decision == Allow }

func decodeAuthResponse(doc []byte) (*AuthorizationResponse, error) {
	var resp AuthorizationResponse
	if err := json.Unmarshal(doc, &resp); err != nil {
		return nil, &types.ValueDeserializationError{Message: "malformed authorization response: " + err.Error()}
	}
	if resp.Decision != Allow && resp.Decision != Deny {
		return nil, &types.ValueDeserializationError{Message: "authorization response is missing a decision"}
	}
	return &resp, nil
}

// PartialAuthorizationResponse is the decoded result of an
// AuthorizationPartialOperation. When the engine cannot reach a decision it
// returns residual policies keyed by policy id instead.
type PartialAuthorizationResponse struct {
	Decision    *Decision                  `json:"decision"`
	Residuals   map[string]json.RawMessage `json:"residuals"`
	Diagnostics Diagnostics                `json:"diagnostics"`
	Warnings    []string                   `json:"warnings"`
}

// Decided reports whether evaluation reached a concrete decision.
func (r *PartialAuthorizationResponse) Decided() bool { return r.Decision != nil }

func decodePartialAuthResponse(doc []byte) (*PartialAuthorizationResponse, error) {
	var resp PartialAuthorizationResponse
	if err := json.Unmarshal(doc, &resp); err != nil {
		return nil, &types.ValueDeserializationError{Message: "malformed partial authorization response: " + err.Error()}
	}
	if resp.Decision == nil && len(resp.Residuals) == 0 {
		return nil, &types.ValueDeserializationError{Message: "partial authorization response carries neither a decision nor residuals"}
	}
	return &resp, nil
}

// ValidationError ties a structured diagnostic to the policy it arose in.
type ValidationError struct {
	PolicyID string        `json:"policyId"`
	Error    DetailedError `json:"error"`
}

// ValidationWarning has the same shape as ValidationError but does not
// make the policy set invalid.
type ValidationWarning struct {
	PolicyID string        `json:"policyId"`
	Warning  DetailedError `json:"warning"`
}

// ValidationResponse is the decoded result of a ValidateOperation. The
// detailed errors are surfaced verbatim for downstream tooling.
type ValidationResponse struct {
	Errors   []ValidationError   `json:"validation_errors"`
	Warnings []ValidationWarning `json:"validation_warnings"`
}

// Valid reports whether validation found no errors (warnings permitted).
func (r *ValidationResponse) Valid() bool { return len(r.Errors) == 0 }

func decodeValidationResponse(doc []byte) (*ValidationResponse, error) {
	var resp ValidationResponse
	if err := json.Unmarshal(doc, &resp); err != nil {
		return nil, &types.ValueDeserializationError{Message: "malformed validation response: " + err.Error()}
	}
	return &resp, nil
}
