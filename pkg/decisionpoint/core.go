//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package decisionpoint provides interfaces and implementations for
// Policy Decision Point (PDP) servers.
//
// A PDP server exposes the authorization engine as a network service that
// Policy Enforcement Points (PEPs) can call to make authorization
// decisions.
//
// The following PDP server implementations are available:
//   - [generic]: HTTP/REST server accepting full authorization requests
//   - [envoy]: External authorization server for Envoy proxy
package decisionpoint

import "context"

// Server is the interface for PDP servers that can be gracefully stopped.
//
// Implementations must ensure that [Stop] completes any in-flight requests
// before returning.
type Server interface {
	// Stop gracefully shuts down the server, waiting for active requests
	// to complete or until the context is cancelled.
	Stop(context.Context) error
}
