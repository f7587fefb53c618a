//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package generic implements a REST decision point: one POST endpoint that
// accepts a complete authorization question (request, policies, entities,
// optional schema) and returns the engine's decision.
package generic

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/manetu/cedarbridge/internal/logging"
	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/decisionpoint"
	"github.com/manetu/cedarbridge/pkg/types"
)

var logger = logging.GetLogger("decisionpoint.generic")

// AuthorizeRequest is the REST request body. EntityUIDs use the textual
// Type::"id" form; context and entities use the interchange encoding.
type AuthorizeRequest struct {
	Principal string            `json:"principal"`
	Action    string            `json:"action"`
	Resource  string            `json:"resource"`
	Context   json.RawMessage   `json:"context"`
	Policies  map[string]string `json:"policies"`
	Entities  json.RawMessage   `json:"entities"`
	Schema    json.RawMessage   `json:"schema"`
	Validate  bool              `json:"validateRequest"`
}

// AuthorizeResponse is the REST response body.
type AuthorizeResponse struct {
	Decision string   `json:"decision"`
	Reasons  []string `json:"reasons"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Server serves the REST decision point API.
type Server struct {
	echo   *echo.Echo
	engine bridge.Engine
}

// CreateServer creates and starts a new generic decision point server
// listening on bind.
func CreateServer(engine bridge.Engine, bind string) (decisionpoint.Server, error) {
	if engine == nil {
		return nil, errors.New("nil engine")
	}
	e := echo.New()
	e.HideBanner = true

	s := &Server{echo: e, engine: engine}
	e.POST("/v1/authorize", s.handleAuthorize)

	// Start server in goroutine since e.Start() blocks
	go func() {
		if err := e.Start(bind); err != nil && err != http.ErrServerClosed {
			logger.Errorf("rest server terminated: %v", err)
		}
	}()

	return s, nil
}

func (s *Server) handleAuthorize(c echo.Context) error {
	var body AuthorizeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": []string{err.Error()}})
	}

	req, policies, entities, err := buildQuestion(&body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": []string{err.Error()}})
	}

	resp, err := s.engine.IsAuthorized(c.Request().Context(), req, policies, entities)
	if err != nil {
		return c.JSON(statusFor(err), map[string]interface{}{"errors": diagnosticsFor(err)})
	}

	return c.JSON(http.StatusOK, AuthorizeResponse{
		Decision: string(resp.Decision),
		Reasons:  resp.Diagnostics.Reason,
		Errors:   resp.Diagnostics.Errors,
		Warnings: resp.Warnings,
	})
}

func buildQuestion(body *AuthorizeRequest) (*bridge.AuthorizationRequest, *bridge.PolicySet, *types.Entities, error) {
	principal, err := types.ParseEntityUID(body.Principal)
	if err != nil {
		return nil, nil, nil, err
	}
	action, err := types.ParseEntityUID(body.Action)
	if err != nil {
		return nil, nil, nil, err
	}
	resource, err := types.ParseEntityUID(body.Resource)
	if err != nil {
		return nil, nil, nil, err
	}

	var reqContext types.Record
	if len(body.Context) > 0 {
		v, err := types.DecodeValue(body.Context)
		if err != nil {
			return nil, nil, nil, err
		}
		record, ok := v.(types.Record)
		if !ok {
			return nil, nil, nil, errors.New("context must be a record")
		}
		reqContext = record
	}

	req, err := bridge.NewAuthorizationRequest(principal, action, resource, reqContext)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(body.Schema) > 0 {
		schema, err := bridge.NewJSONSchema(string(body.Schema))
		if err != nil {
			return nil, nil, nil, err
		}
		req.Schema = schema
		req.Validate = body.Validate
	}

	policies := &bridge.PolicySet{}
	for id, src := range body.Policies {
		p, err := bridge.NewPolicyWithID(src, id)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := policies.Add(p); err != nil {
			return nil, nil, nil, err
		}
	}

	entities, err := types.NewEntities()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(body.Entities) > 0 {
		if err := json.Unmarshal(body.Entities, entities); err != nil {
			return nil, nil, nil, err
		}
	}
	return req, policies, entities, nil
}

func statusFor(err error) int {
	var bad *bridge.BadRequestError
	var missing *bridge.MissingExperimentalFeatureError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func diagnosticsFor(err error) []string {
	var bad *bridge.BadRequestError
	var internal *bridge.InternalError
	switch {
	case errors.As(err, &bad):
		return bad.Errors
	case errors.As(err, &internal):
		return internal.Errors
	default:
		return []string{err.Error()}
	}
}

// Stop gracefully stops the Server by shutting down the echo HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
