//
//  Copyright © Manetu Inc. All rights reserved.
//

package bridge

// ExperimentalFeature identifies an engine capability that is only
// available when the native library is compiled with the matching feature
// flag.
type ExperimentalFeature string

// PartialEvaluation gates IsAuthorizedPartial.
const PartialEvaluation ExperimentalFeature = "partial evaluation"

// CompileFlag returns the build flag that enables the feature in the
// native library.
func (f ExperimentalFeature) CompileFlag() string {
	switch f {
	case PartialEvaluation:
		return "--features=partial-eval"
	default:
		return "--features=" + string(f)
	}
}
