//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"encoding/json"

	"github.com/manetu/cedarbridge/pkg/types"
)

// wireSlice is the policies+entities payload fragment shared by the
// authorization operations. Field names are the engine's contract.
type wireSlice struct {
	Policies         map[string]string `json:"policies"`
	Entities         json.RawMessage   `json:"entities"`
	TemplatePolicies map[string]string `json:"template_policies"`
	TemplateLinks    []TemplateLink    `json:"template_instantiations"`
}

func newWireSlice(policies *PolicySet, entities *types.Entities) (*wireSlice, error) {
	if policies == nil {
		policies = &PolicySet{}
	}
	if entities == nil {
		entities, _ = types.NewEntities()
	}
	encoded, err := json.Marshal(entities)
	if err != nil {
		return nil, &types.ValueSerializationError{Message: err.Error()}
	}
	links := policies.Links
	if links == nil {
		links = []TemplateLink{}
	}
	return &wireSlice{
		Policies:         policyMap(policies.Policies),
		Entities:         encoded,
		TemplatePolicies: policyMap(policies.Templates),
		TemplateLinks:    links,
	}, nil
}

// wireAuthRequest is the full AuthorizationOperation payload.
type wireAuthRequest struct {
	Principal types.EntityUID `json:"principal"`
	Action    types.EntityUID `json:"action"`
	Resource  types.EntityUID `json:"resource"`
	Context   types.Record    `json:"context"`
	Schema    *Schema         `json:"schema,omitempty"`
	Validate  bool            `json:"validateRequest"`
	Slice     *wireSlice      `json:"slice"`
}

func encodeAuthRequest(req *AuthorizationRequest, policies *PolicySet, entities *types.Entities) ([]byte, error) {
	slice, err := newWireSlice(policies, entities)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(wireAuthRequest{
		Principal: req.Principal,
		Action:    req.Action,
		Resource:  req.Resource,
		Context:   req.Context,
		Schema:    req.Schema,
		Validate:  req.Validate && req.Schema != nil,
		Slice:     slice,
	})
	if err != nil {
		return nil, &types.ValueSerializationError{Message: err.Error()}
	}
	return payload, nil
}

// wirePartialAuthRequest is the AuthorizationPartialOperation payload;
// unknown principal/resource fields are omitted rather than null.
type wirePartialAuthRequest struct {
	Principal *types.EntityUID `json:"principal,omitempty"`
	Action    types.EntityUID  `json:"action"`
	Resource  *types.EntityUID `json:"resource,omitempty"`
	Context   types.Record     `json:"context"`
	Schema    *Schema          `json:"schema,omitempty"`
	Validate  bool             `json:"validateRequest"`
	Slice     *wireSlice       `json:"slice"`
}

func encodePartialAuthRequest(req *PartialAuthorizationRequest, policies *PolicySet, entities *types.Entities) ([]byte, error) {
	slice, err := newWireSlice(policies, entities)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(wirePartialAuthRequest{
		Principal: req.Principal,
		Action:    req.Action,
		Resource:  req.Resource,
		Context:   req.Context,
		Schema:    req.Schema,
		Validate:  req.Validate && req.Schema != nil,
		Slice:     slice,
	})
	if err != nil {
		return nil, &types.ValueSerializationError{Message: err.Error()}
	}
	return payload, nil
}

// wireValidationRequest is the ValidateOperation payload.
type wireValidationRequest struct {
	Schema   *Schema           `json:"schema"`
	Policies map[string]string `json:"policies"`
}

func encodeValidationRequest(req *ValidationRequest) ([]byte, error) {
	payload, err := json.Marshal(wireValidationRequest{
		Schema:   req.Schema,
		Policies: policyMap(req.Policies.Policies),
	})
	if err != nil {
		return nil, &types.ValueSerializationError{Message: err.Error()}
	}
	return payload, nil
}
