//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

import (
	"strings"

	"github.com/pkg/errors"
)

// BadRequestError reports a failure caused by the caller's input, e.g. a
// policy syntax error. It carries the engine's diagnostics verbatim, in
// their original order.
type BadRequestError struct {
	Errors []string
}

// NewBadRequestError builds a BadRequestError. The diagnostic list must be
// non-empty.
func NewBadRequestError(diags []string) (*BadRequestError, error) {
	if len(diags) == 0 {
		return nil, errors.New("bad request error requires at least one diagnostic")
	}
	return &BadRequestError{Errors: append([]string(nil), diags...)}, nil
}

func (e *BadRequestError) Error() string {
	return "bad request: " + strings.Join(e.Errors, "; ")
}

// InternalError reports a fault inside the native evaluator, or any failure
// whose discriminator we do not recognize. The raw diagnostics are always
// preserved.
type InternalError struct {
	Errors []string
}

// NewInternalError builds an InternalError. The diagnostic list must be
// non-empty.
func NewInternalError(diags []string) (*InternalError, error) {
	if len(diags) == 0 {
		return nil, errors.New("internal error requires at least one diagnostic")
	}
	return &InternalError{Errors: append([]string(nil), diags...)}, nil
}

func (e *InternalError) Error() string {
	return "internal engine error: " + strings.Join(e.Errors, "; ")
}

// MissingExperimentalFeatureError reports that the loaded native library was
// compiled without a feature the call requires.
type MissingExperimentalFeatureError struct {
	Feature ExperimentalFeature
}

func (e *MissingExperimentalFeatureError) Error() string {
	return "the loaded library does not support " + string(e.Feature) +
		"; rebuild it with " + e.Feature.CompileFlag()
}
