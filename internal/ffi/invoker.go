//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package ffi owns the foreign call boundary to the natively-compiled
// policy evaluator: library resolution, load-once lifecycle and the raw
// string-in/string-out call surface. Everything above this package speaks
// JSON; everything below it is the native engine's concern, including
// thread safety of concurrent calls.
package ffi

// Operation names accepted by the native entry point. The set is the
// engine's versioned contract.
const (
	AuthorizationOperation        = "AuthorizationOperation"
	AuthorizationPartialOperation = "AuthorizationPartialOperation"
	ValidateOperation             = "ValidateOperation"
	ParsePoliciesOperation        = "ParsePoliciesOperation"
)

// Invoker is the call surface the bridge layer consumes. The production
// implementation forwards to the loaded native library; tests substitute
// fakes.
type Invoker interface {
	// Call performs one synchronous foreign call. input and the returned
	// answer are JSON documents. The call is not cancellable; a hung native
	// call hangs the caller.
	Call(operation, input string) (string, error)

	// LanguageVersion reports the policy language major.minor version the
	// native library was built against.
	LanguageVersion() (string, error)
}
