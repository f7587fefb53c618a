//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"github.com/pkg/errors"

	"github.com/manetu/cedarbridge/pkg/types"
)

// AuthorizationRequest names the principal, action and resource of one
// authorization question, with an optional context record, an optional
// schema, and a flag asking the engine to validate the request against that
// schema.
type AuthorizationRequest struct {
	Principal types.EntityUID
	Action    types.EntityUID
	Resource  types.EntityUID
	Context   types.Record
	Schema    *Schema
	// Validate asks the engine to check the request against Schema before
	// evaluating. Ignored when Schema is nil.
	Validate bool
}

// NewAuthorizationRequest builds a request; principal, action and resource
// are all required.
func NewAuthorizationRequest(principal, action, resource types.EntityUID, context types.Record) (*AuthorizationRequest, error) {
	if principal.IsZero() || action.IsZero() || resource.IsZero() {
		return nil, errors.New("authorization request requires principal, action and resource")
	}
	return &AuthorizationRequest{
		Principal: principal,
		Action:    action,
		Resource:  resource,
		Context:   context,
	}, nil
}

// PartialAuthorizationRequest is the experimental variant in which
// principal or resource may be left unknown for residual evaluation.
type PartialAuthorizationRequest struct {
	Principal *types.EntityUID
	Action    types.EntityUID
	Resource  *types.EntityUID
	Context   types.Record
	Schema    *Schema
	Validate  bool
}

// NewPartialAuthorizationRequest builds a partial request; only the action
// is required.
func NewPartialAuthorizationRequest(principal *types.EntityUID, action types.EntityUID, resource *types.EntityUID, context types.Record) (*PartialAuthorizationRequest, error) {
	if action.IsZero() {
		return nil, errors.New("partial authorization request requires an action")
	}
	return &PartialAuthorizationRequest{
		Principal: principal,
		Action:    action,
		Resource:  resource,
		Context:   context,
	}, nil
}

// ValidationRequest asks the engine to validate a policy set against a
// schema.
type ValidationRequest struct {
	Schema   *Schema
	Policies *PolicySet
}

// NewValidationRequest builds a validation request; both parts are
// required.
func NewValidationRequest(schema *Schema, policies *PolicySet) (*ValidationRequest, error) {
	if schema == nil {
		return nil, errors.New("validation request requires a schema")
	}
	if policies == nil {
		return nil, errors.New("validation request requires a policy set")
	}
	return &ValidationRequest{Schema: schema, Policies: policies}, nil
}
