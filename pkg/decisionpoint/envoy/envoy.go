//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package envoy implements the Envoy ext_authz v3 check API as a decision
// point: each CheckRequest's HTTP attributes are mapped to an authorization
// question against a fixed policy set.
package envoy

import (
	"context"
	"net"
	"sync"

	corev3 "github.com/envoyproxy/go-control-plane/envoy/config/core/v3"
	authv3 "github.com/envoyproxy/go-control-plane/envoy/service/auth/v3"
	typev3 "github.com/envoyproxy/go-control-plane/envoy/type/v3"
	"github.com/pkg/errors"
	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/manetu/cedarbridge/internal/logging"
	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/decisionpoint"
	"github.com/manetu/cedarbridge/pkg/types"
)

var logger = logging.GetLogger("decisionpoint.envoy")

const (
	// PrincipalHeader carries the authenticated principal id, typically
	// injected by an upstream authentication filter.
	PrincipalHeader = "x-cedar-principal"

	resultHeader  = "x-ext-authz-check-result"
	resultAllowed = "allowed"
	resultDenied  = "denied"

	principalType = "Principal"
	actionType    = "Action"
	resourceType  = "Resource"
)

// ExtAuthzServer implements the ext_authz v3 gRPC check request API.
type ExtAuthzServer struct {
	grpcServer *grpc.Server
	engine     bridge.Engine
	policies   *bridge.PolicySet
	entities   *types.Entities

	// For test only
	grpcPort chan int
}

func checkHeaders(result string) []*corev3.HeaderValueOption {
	return []*corev3.HeaderValueOption{
		{
			Header: &corev3.HeaderValue{
				Key:   resultHeader,
				Value: result,
			},
		},
	}
}

func (s *ExtAuthzServer) allow() *authv3.CheckResponse {
	return &authv3.CheckResponse{
		HttpResponse: &authv3.CheckResponse_OkResponse{
			OkResponse: &authv3.OkHttpResponse{
				Headers: checkHeaders(resultAllowed),
			},
		},
		Status: &status.Status{Code: int32(codes.OK)},
	}
}

func (s *ExtAuthzServer) deny(body string) *authv3.CheckResponse {
	return &authv3.CheckResponse{
		HttpResponse: &authv3.CheckResponse_DeniedResponse{
			DeniedResponse: &authv3.DeniedHttpResponse{
				Status:  &typev3.HttpStatus{Code: typev3.StatusCode_Forbidden},
				Body:    body,
				Headers: checkHeaders(resultDenied),
			},
		},
		Status: &status.Status{Code: int32(codes.PermissionDenied)},
	}
}

// question maps the HTTP attributes of a check request to an authorization
// question: the principal header names the principal, the method becomes
// the action and the path becomes the resource.
func question(request *authv3.CheckRequest) (*bridge.AuthorizationRequest, error) {
	httpAttrs := request.GetAttributes().GetRequest().GetHttp()

	principalID := httpAttrs.GetHeaders()[PrincipalHeader]
	if principalID == "" {
		return nil, errors.Errorf("request carries no %s header", PrincipalHeader)
	}
	principal, err := types.NewEntityUID(principalType, principalID)
	if err != nil {
		return nil, err
	}
	action, err := types.NewEntityUID(actionType, httpAttrs.GetMethod())
	if err != nil {
		return nil, err
	}
	resource, err := types.NewEntityUID(resourceType, httpAttrs.GetPath())
	if err != nil {
		return nil, err
	}

	reqContext, err := types.NewRecord(map[string]types.Value{
		"host":     types.String(httpAttrs.GetHost()),
		"protocol": types.String(httpAttrs.GetProtocol()),
	})
	if err != nil {
		return nil, err
	}
	return bridge.NewAuthorizationRequest(principal, action, resource, reqContext)
}

// Check implements the gRPC v3 check request.
func (s *ExtAuthzServer) Check(ctx context.Context, request *authv3.CheckRequest) (*authv3.CheckResponse, error) {
	req, err := question(request)
	if err != nil {
		logger.Debugf("rejecting unmappable check request: %v", err)
		return s.deny(err.Error()), nil
	}

	resp, err := s.engine.IsAuthorized(ctx, req, s.policies, s.entities)
	if err != nil {
		return nil, err
	}

	httpAttrs := request.GetAttributes().GetRequest().GetHttp()
	logger.Tracef("[gRPCv3][%s]: %s %s%s", resp.Decision, httpAttrs.GetMethod(), httpAttrs.GetHost(), httpAttrs.GetPath())

	if resp.Allowed() {
		return s.allow(), nil
	}
	return s.deny("permission denied"), nil
}

func (s *ExtAuthzServer) startGRPC(address string, ready *sync.WaitGroup) {
	defer logger.Infof("Stopped gRPC server")

	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Errorf("Failed to start gRPC server: %v", err)
		ready.Done()
		return
	}

	s.grpcServer = grpc.NewServer()
	authv3.RegisterAuthorizationServer(s.grpcServer, s)

	// Store the port for test only. Must be after grpcServer is set to avoid race condition.
	s.grpcPort <- listener.Addr().(*net.TCPAddr).Port
	ready.Done()

	logger.Infof("Starting Envoy External Authorization gRPC server at %s", listener.Addr())
	if err := s.grpcServer.Serve(listener); err != nil {
		logger.Errorf("Failed to serve gRPC server: %v", err)
	}
}

// CreateServer creates and starts a new Envoy External Authorization
// server evaluating every check request against the given policy set and
// entity store.
func CreateServer(engine bridge.Engine, bind string, policies *bridge.PolicySet, entities *types.Entities) (decisionpoint.Server, error) {
	if engine == nil {
		return nil, errors.New("nil engine")
	}
	s := &ExtAuthzServer{
		engine:   engine,
		policies: policies,
		entities: entities,
		grpcPort: make(chan int, 1),
	}

	var ready sync.WaitGroup
	ready.Add(1)
	go s.startGRPC(bind, &ready)
	ready.Wait()

	return s, nil
}

// Stop gracefully stops the gRPC server.
func (s *ExtAuthzServer) Stop(context.Context) error {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	return nil
}
