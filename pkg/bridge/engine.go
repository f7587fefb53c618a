//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package bridge marshals authorization requests to the natively-compiled
// policy evaluator and translates its answers back into typed results and
// errors.
package bridge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/manetu/cedarbridge/internal/ffi"
	"github.com/manetu/cedarbridge/internal/logging"
	"github.com/manetu/cedarbridge/pkg/types"
)

var log = logging.GetLogger("bridge")

// LanguageVersion is the policy language version this library speaks. The
// loaded native engine must agree on the major version.
const LanguageVersion = "4.0"

// Engine evaluates authorization and validation requests by calling the
// native evaluator. Implementations perform exactly one foreign call per
// invocation and never retry.
type Engine interface {
	IsAuthorized(ctx context.Context, req *AuthorizationRequest, policies *PolicySet, entities *types.Entities) (*AuthorizationResponse, error)

	// IsAuthorizedPartial is experimental and requires a native library
	// compiled with partial evaluation support.
	IsAuthorizedPartial(ctx context.Context, req *PartialAuthorizationRequest, policies *PolicySet, entities *types.Entities) (*PartialAuthorizationResponse, error)

	Validate(ctx context.Context, req *ValidationRequest) (*ValidationResponse, error)

	// CheckPolicies confirms every policy in the set is well-formed,
	// returning a BadRequestError carrying the syntax diagnostics otherwise.
	CheckPolicies(ctx context.Context, policies *PolicySet) error
}

// Option configures a BasicEngine.
type Option func(*BasicEngine)

// WithInvoker substitutes the foreign call surface, primarily for tests.
func WithInvoker(inv ffi.Invoker) Option {
	return func(e *BasicEngine) { e.invoker = inv }
}

// BasicEngine is the in-process Engine backed by the loaded native
// library.
type BasicEngine struct {
	invoker ffi.Invoker
}

// New builds a BasicEngine, loading the native library on first use and
// performing the language-version handshake.
func New(options ...Option) (*BasicEngine, error) {
	e := &BasicEngine{}
	for _, opt := range options {
		opt(e)
	}
	if e.invoker == nil {
		inv, err := ffi.Load()
		if err != nil {
			return nil, err
		}
		e.invoker = inv
	}

	native, err := e.invoker.LanguageVersion()
	if err != nil {
		return nil, errors.Wrap(err, "querying native language version")
	}
	if majorVersion(native) != majorVersion(LanguageVersion) {
		return nil, errors.Errorf("language version mismatch: library speaks %s, native engine speaks %s", LanguageVersion, native)
	}
	return e, nil
}

func majorVersion(v string) string {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		return v[:i]
	}
	return v
}

// call performs the single foreign call for one operation and unwraps the
// answer envelope.
func (e *BasicEngine) call(ctx context.Context, operation string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := e.invoker.Call(operation, string(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "invoking %s", operation)
	}
	return decodeAnswer(raw)
}

// IsAuthorized implements Engine.
func (e *BasicEngine) IsAuthorized(ctx context.Context, req *AuthorizationRequest, policies *PolicySet, entities *types.Entities) (*AuthorizationResponse, error) {
	if req == nil {
		return nil, errors.New("nil authorization request")
	}
	callID := uuid.New().String()

	payload, err := encodeAuthRequest(req, policies, entities)
	if err != nil {
		return nil, err
	}
	doc, err := e.call(ctx, ffi.AuthorizationOperation, payload)
	if err != nil {
		log.Debugf("call=%s authorization failed: %v", callID, err)
		return nil, err
	}
	resp, err := decodeAuthResponse(doc)
	if err != nil {
		return nil, err
	}
	log.Debugf("call=%s principal=%s action=%s resource=%s decision=%s reasons=%v",
		callID, req.Principal, req.Action, req.Resource, resp.Decision, resp.Diagnostics.Reason)
	return resp, nil
}

// IsAuthorizedPartial implements Engine. An internal failure naming the
// partial operation means the native library was compiled without the
// feature, which callers should see as MissingExperimentalFeatureError
// rather than an engine fault.
func (e *BasicEngine) IsAuthorizedPartial(ctx context.Context, req *PartialAuthorizationRequest, policies *PolicySet, entities *types.Entities) (*PartialAuthorizationResponse, error) {
	if req == nil {
		return nil, errors.New("nil partial authorization request")
	}
	payload, err := encodePartialAuthRequest(req, policies, entities)
	if err != nil {
		return nil, err
	}
	doc, err := e.call(ctx, ffi.AuthorizationPartialOperation, payload)
	if err != nil {
		var internal *InternalError
		if errors.As(err, &internal) && mentionsOperation(internal.Errors, ffi.AuthorizationPartialOperation) {
			return nil, &MissingExperimentalFeatureError{Feature: PartialEvaluation}
		}
		return nil, err
	}
	return decodePartialAuthResponse(doc)
}

func mentionsOperation(diags []string, operation string) bool {
	for _, d := range diags {
		if strings.Contains(d, operation) {
			return true
		}
	}
	return false
}

// Validate implements Engine.
func (e *BasicEngine) Validate(ctx context.Context, req *ValidationRequest) (*ValidationResponse, error) {
	if req == nil {
		return nil, errors.New("nil validation request")
	}
	payload, err := encodeValidationRequest(req)
	if err != nil {
		return nil, err
	}
	doc, err := e.call(ctx, ffi.ValidateOperation, payload)
	if err != nil {
		return nil, err
	}
	return decodeValidationResponse(doc)
}

// CheckPolicies implements Engine.
func (e *BasicEngine) CheckPolicies(ctx context.Context, policies *PolicySet) error {
	if policies == nil {
		return errors.New("nil policy set")
	}
	payload, err := json.Marshal(map[string]interface{}{
		"policies": policyMap(policies.Policies),
	})
	if err != nil {
		return &types.ValueSerializationError{Message: err.Error()}
	}
	_, err = e.call(ctx, ffi.ParsePoliciesOperation, payload)
	return err
}
