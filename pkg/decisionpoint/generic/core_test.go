//
//  Copyright © Manetu Inc. All rights reserved.
//

package generic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/types"
)

// fakeEngine permits exactly one principal and records the question it was
// asked.
type fakeEngine struct {
	permitted string
	lastReq   *bridge.AuthorizationRequest
	err       error
}

func (f *fakeEngine) IsAuthorized(_ context.Context, req *bridge.AuthorizationRequest, _ *bridge.PolicySet, _ *types.Entities) (*bridge.AuthorizationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastReq = req
	decision := bridge.Deny
	reasons := []string{}
	if req.Principal.ID() == f.permitted {
		decision = bridge.Allow
		reasons = []string{"policy0"}
	}
	return &bridge.AuthorizationResponse{
		Decision:    decision,
		Diagnostics: bridge.Diagnostics{Reason: reasons, Errors: []string{}},
	}, nil
}

func (f *fakeEngine) IsAuthorizedPartial(context.Context, *bridge.PartialAuthorizationRequest, *bridge.PolicySet, *types.Entities) (*bridge.PartialAuthorizationResponse, error) {
	return nil, &bridge.MissingExperimentalFeatureError{Feature: bridge.PartialEvaluation}
}

func (f *fakeEngine) Validate(context.Context, *bridge.ValidationRequest) (*bridge.ValidationResponse, error) {
	return &bridge.ValidationResponse{}, nil
}

func (f *fakeEngine) CheckPolicies(context.Context, *bridge.PolicySet) error { return f.err }

func newTestServer(engine bridge.Engine) *Server {
	e := echo.New()
	e.HideBanner = true
	s := &Server{echo: e, engine: engine}
	e.POST("/v1/authorize", s.handleAuthorize)
	return s
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/authorize", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeEndpointAllow(t *testing.T) {
	engine := &fakeEngine{permitted: "alice"}
	s := newTestServer(engine)

	rec := post(t, s, `{
		"principal": "User::\"alice\"",
		"action": "Action::\"view\"",
		"resource": "Photo::\"vacation.jpg\"",
		"context": {"mfa": true},
		"policies": {"policy0": "permit(principal, action, resource);"},
		"entities": [{"uid": {"type": "User", "id": "alice"}}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Allow", resp.Decision)
	assert.Equal(t, []string{"policy0"}, resp.Reasons)

	// the context record made it through intact
	require.NotNil(t, engine.lastReq)
	v, ok := engine.lastReq.Context.Get("mfa")
	require.True(t, ok)
	assert.True(t, types.Bool(true).Equal(v))
}

func TestAuthorizeEndpointDeny(t *testing.T) {
	s := newTestServer(&fakeEngine{permitted: "alice"})

	rec := post(t, s, `{
		"principal": "User::\"mallory\"",
		"action": "Action::\"view\"",
		"resource": "Photo::\"vacation.jpg\"",
		"policies": {}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Deny", resp.Decision)
}

func TestAuthorizeEndpointRejectsMalformedUID(t *testing.T) {
	s := newTestServer(&fakeEngine{})

	rec := post(t, s, `{
		"principal": "not_an_euid",
		"action": "Action::\"view\"",
		"resource": "Photo::\"x\""
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "errors")
}

func TestAuthorizeEndpointEngineFailures(t *testing.T) {
	bad, err := bridge.NewBadRequestError([]string{"syntax error"})
	require.NoError(t, err)
	rec := post(t, newTestServer(&fakeEngine{err: bad}), validBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "syntax error")

	missing := &bridge.MissingExperimentalFeatureError{Feature: bridge.PartialEvaluation}
	rec = post(t, newTestServer(&fakeEngine{err: missing}), validBody)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	internal, err := bridge.NewInternalError([]string{"engine fault"})
	require.NoError(t, err)
	rec = post(t, newTestServer(&fakeEngine{err: internal}), validBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "engine fault")
}

const validBody = `{
	"principal": "User::\"alice\"",
	"action": "Action::\"view\"",
	"resource": "Photo::\"x\""
}`
