//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/cedarbridge/internal/ffi"
	"github.com/manetu/cedarbridge/pkg/types"
)

// fakeInvoker stands in for the native library. It understands just enough
// of the wire format to answer the scenario tests: universal permits and
// exact-match permits.
type fakeInvoker struct {
	version string
	calls   []string
	handler func(operation, input string) (string, error)
}

func (f *fakeInvoker) Call(operation, input string) (string, error) {
	f.calls = append(f.calls, operation)
	return f.handler(operation, input)
}

func (f *fakeInvoker) LanguageVersion() (string, error) {
	if f.version == "" {
		return "4.0", nil
	}
	return f.version, nil
}

func successAnswer(t *testing.T, result interface{}) string {
	t.Helper()
	doc, err := json.Marshal(result)
	require.NoError(t, err)
	env, err := json.Marshal(map[string]interface{}{
		"success": "true",
		"result":  string(doc),
	})
	require.NoError(t, err)
	return string(env)
}

func failureAnswer(t *testing.T, isInternal bool, diags []string) string {
	t.Helper()
	env, err := json.Marshal(map[string]interface{}{
		"success":    "false",
		"isInternal": isInternal,
		"errors":     diags,
	})
	require.NoError(t, err)
	return string(env)
}

var exactMatchPolicy = regexp.MustCompile(
	`^permit\(principal == (.+?), action == (.+?), resource == (.+?)\);$`)

// evaluatingInvoker answers AuthorizationOperation by actually matching the
// request against the sliced policies.
func evaluatingInvoker(t *testing.T) *fakeInvoker {
	t.Helper()
	return &fakeInvoker{handler: func(operation, input string) (string, error) {
		require.Equal(t, ffi.AuthorizationOperation, operation)

		var req struct {
			Principal json.RawMessage `json:"principal"`
			Action    json.RawMessage `json:"action"`
			Resource  json.RawMessage `json:"resource"`
			Slice     struct {
				Policies map[string]string `json:"policies"`
			} `json:"slice"`
		}
		require.NoError(t, json.Unmarshal([]byte(input), &req))

		render := func(raw json.RawMessage) string {
			v, err := types.DecodeValue(raw)
			require.NoError(t, err)
			return v.ExprString()
		}
		principal, action, resource := render(req.Principal), render(req.Action), render(req.Resource)

		var reasons []string
		for id, src := range req.Slice.Policies {
			src = strings.TrimSpace(src)
			if src == "permit(principal, action, resource);" {
				reasons = append(reasons, id)
				continue
			}
			if m := exactMatchPolicy.FindStringSubmatch(src); m != nil &&
				m[1] == principal && m[2] == action && m[3] == resource {
				reasons = append(reasons, id)
			}
		}
		decision := Deny
		if len(reasons) > 0 {
			decision = Allow
		} else {
			reasons = []string{}
		}
		return successAnswer(t, map[string]interface{}{
			"decision":    decision,
			"diagnostics": map[string]interface{}{"reason": reasons, "errors": []string{}},
			"warnings":    []string{},
		}), nil
	}}
}

func scenarioFixture(t *testing.T) (*AuthorizationRequest, *types.Entities) {
	t.Helper()
	principal, err := types.NewEntityUID("User", "alice")
	require.NoError(t, err)
	action, err := types.NewEntityUID("Action", "view")
	require.NoError(t, err)
	resource, err := types.NewEntityUID("Photo", "vacation.jpg")
	require.NoError(t, err)

	entities, err := types.NewEntities()
	require.NoError(t, err)
	for _, uid := range []types.EntityUID{principal, action, resource} {
		e, err := types.NewEntity(uid, nil, nil, nil)
		require.NoError(t, err)
		require.NoError(t, entities.Add(e))
	}

	req, err := NewAuthorizationRequest(principal, action, resource, types.Record{})
	require.NoError(t, err)
	return req, entities
}

func TestUniversalPermit(t *testing.T) {
	inv := evaluatingInvoker(t)
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	policies, err := NewPolicySet("permit(principal, action, resource);")
	require.NoError(t, err)

	resp, err := engine.IsAuthorized(context.Background(), req, policies, entities)
	require.NoError(t, err)
	assert.True(t, resp.Allowed())
	assert.Len(t, resp.Diagnostics.Reason, 1)
	assert.Len(t, inv.calls, 1)
}

func TestExactMatchPermit(t *testing.T) {
	engine, err := New(WithInvoker(evaluatingInvoker(t)))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	policies, err := NewPolicySet(
		`permit(principal == User::"alice", action == Action::"view", resource == Photo::"vacation.jpg");`)
	require.NoError(t, err)

	resp, err := engine.IsAuthorized(context.Background(), req, policies, entities)
	require.NoError(t, err)
	assert.True(t, resp.Allowed())

	// a different principal is a deny, not an error
	other, err := types.NewEntityUID("User", "mallory")
	require.NoError(t, err)
	req.Principal = other
	resp, err = engine.IsAuthorized(context.Background(), req, policies, entities)
	require.NoError(t, err)
	assert.False(t, resp.Allowed())
	assert.Equal(t, Deny, resp.Decision)
	assert.Empty(t, resp.Diagnostics.Reason)
}

func TestBadRequestPreservesErrorOrder(t *testing.T) {
	diags := []string{"first error", "second error", "third error"}
	inv := &fakeInvoker{handler: func(string, string) (string, error) {
		return failureAnswer(t, false, diags), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	policies, err := NewPolicySet("permit(;")
	require.NoError(t, err)

	_, err = engine.IsAuthorized(context.Background(), req, policies, entities)
	var bad *BadRequestError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, diags, bad.Errors)
}

func TestInternalFailureClassification(t *testing.T) {
	inv := &fakeInvoker{handler: func(string, string) (string, error) {
		return failureAnswer(t, true, []string{"panic in evaluator"}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	_, err = engine.IsAuthorized(context.Background(), req, &PolicySet{}, entities)
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, []string{"panic in evaluator"}, internal.Errors)
}

func TestUnrecognizedDiscriminatorMapsToInternal(t *testing.T) {
	inv := &fakeInvoker{handler: func(string, string) (string, error) {
		return `{"success":"maybe","details":"future format"}`, nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	_, err = engine.IsAuthorized(context.Background(), req, &PolicySet{}, entities)
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	// the raw payload is preserved, never dropped
	assert.Contains(t, internal.Errors[0], "future format")
}

func TestMissingExperimentalFeature(t *testing.T) {
	inv := &fakeInvoker{handler: func(operation, _ string) (string, error) {
		return failureAnswer(t, true, []string{"unsupported operation: " + operation}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	action, err := types.NewEntityUID("Action", "view")
	require.NoError(t, err)
	req, err := NewPartialAuthorizationRequest(nil, action, nil, types.Record{})
	require.NoError(t, err)

	_, err = engine.IsAuthorizedPartial(context.Background(), req, &PolicySet{}, nil)
	var missing *MissingExperimentalFeatureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, PartialEvaluation, missing.Feature)
	assert.Contains(t, missing.Error(), "--features=partial-eval")
}

func TestPartialDecision(t *testing.T) {
	inv := &fakeInvoker{handler: func(operation, _ string) (string, error) {
		require.Equal(t, ffi.AuthorizationPartialOperation, operation)
		return successAnswer(t, map[string]interface{}{
			"residuals": map[string]interface{}{
				"policy0": map[string]interface{}{"effect": "permit"},
			},
			"diagnostics": map[string]interface{}{"reason": []string{}, "errors": []string{}},
		}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	action, err := types.NewEntityUID("Action", "view")
	require.NoError(t, err)
	req, err := NewPartialAuthorizationRequest(nil, action, nil, types.Record{})
	require.NoError(t, err)

	resp, err := engine.IsAuthorizedPartial(context.Background(), req, &PolicySet{}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Decided())
	assert.Contains(t, resp.Residuals, "policy0")
}

func TestValidateSurfacesDetailedErrors(t *testing.T) {
	inv := &fakeInvoker{handler: func(operation, _ string) (string, error) {
		require.Equal(t, ffi.ValidateOperation, operation)
		return successAnswer(t, map[string]interface{}{
			"validation_errors": []map[string]interface{}{{
				"policyId": "policy0",
				"error": map[string]interface{}{
					"message":  "unrecognized entity type Phot",
					"help":     "did you mean Photo?",
					"severity": "error",
					"sourceLocations": []map[string]interface{}{
						{"start": 10, "end": 14},
					},
				},
			}},
			"validation_warnings": []map[string]interface{}{},
		}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	schema, err := NewJSONSchema(`{}`)
	require.NoError(t, err)
	policies, err := NewPolicySet(`permit(principal, action, resource);`)
	require.NoError(t, err)
	req, err := NewValidationRequest(schema, policies)
	require.NoError(t, err)

	resp, err := engine.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Valid())
	require.Len(t, resp.Errors, 1)
	detail := resp.Errors[0].Error
	assert.Equal(t, "unrecognized entity type Phot", detail.Message)
	assert.Equal(t, "did you mean Photo?", detail.Help)
	assert.Equal(t, SeverityError, detail.Severity)
	require.Len(t, detail.SourceLocations, 1)
	assert.Equal(t, 10, detail.SourceLocations[0].Start)
	assert.Equal(t, 14, detail.SourceLocations[0].End)
}

func TestCheckPoliciesBadSyntax(t *testing.T) {
	inv := &fakeInvoker{handler: func(operation, _ string) (string, error) {
		require.Equal(t, ffi.ParsePoliciesOperation, operation)
		return failureAnswer(t, false, []string{"unexpected token at offset 7"}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	policies, err := NewPolicySet("permit(;")
	require.NoError(t, err)
	err = engine.CheckPolicies(context.Background(), policies)
	var bad *BadRequestError
	require.ErrorAs(t, err, &bad)
	assert.Len(t, inv.calls, 1)
}

func TestVersionHandshake(t *testing.T) {
	_, err := New(WithInvoker(&fakeInvoker{version: "3.4"}))
	assert.Error(t, err)

	// minor drift within the same major version is tolerated
	_, err = New(WithInvoker(&fakeInvoker{
		version: "4.2",
		handler: func(string, string) (string, error) { return "", nil },
	}))
	assert.NoError(t, err)
}

func TestRequestPayloadShape(t *testing.T) {
	var captured string
	inv := &fakeInvoker{handler: func(_, input string) (string, error) {
		captured = input
		return successAnswer(t, map[string]interface{}{
			"decision":    "Deny",
			"diagnostics": map[string]interface{}{"reason": []string{}, "errors": []string{}},
		}), nil
	}}
	engine, err := New(WithInvoker(inv))
	require.NoError(t, err)

	req, entities := scenarioFixture(t)
	policies, err := NewPolicySet("permit(principal, action, resource);")
	require.NoError(t, err)
	tmpl, err := NewTemplate(`permit(principal == ?principal, action, resource);`)
	require.NoError(t, err)
	policies.Templates = append(policies.Templates, tmpl)
	link, err := NewTemplateLink(tmpl.ID, "linked0", []LinkValue{{Slot: PrincipalSlot, Value: req.Principal}})
	require.NoError(t, err)
	policies.Links = append(policies.Links, link)

	_, err = engine.IsAuthorized(context.Background(), req, policies, entities)
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(captured), &payload))
	for _, field := range []string{"principal", "action", "resource", "context", "validateRequest", "slice"} {
		assert.Contains(t, payload, field)
	}
	var slice map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload["slice"], &slice))
	for _, field := range []string{"policies", "entities", "template_policies", "template_instantiations"} {
		assert.Contains(t, slice, field)
	}
}
