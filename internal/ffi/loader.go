//
//  Copyright © Manetu Inc. All rights reserved.
//

package ffi

import (
	"os"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

// EnvLibraryPath overrides library resolution with an absolute path to the
// native binary.
const EnvLibraryPath = "CEDAR_FFI_LIB"

// libraryName is the logical name used for platform-keyed resolution when
// no override is set.
const libraryName = "cedar_ffi"

type nativeInvoker struct {
	call    func(string, string) string
	version func() string
}

func (n *nativeInvoker) Call(operation, input string) (string, error) {
	return n.call(operation, input), nil
}

func (n *nativeInvoker) LanguageVersion() (string, error) {
	return n.version(), nil
}

// load runs at most once per process; the handle is never released.
var load = sync.OnceValues(func() (*nativeInvoker, error) {
	path := os.Getenv(EnvLibraryPath)
	if path == "" {
		path = defaultLibraryFile()
	}
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "loading native engine from %q", path)
	}
	inv := &nativeInvoker{}
	purego.RegisterLibFunc(&inv.call, handle, "cedar_call")
	purego.RegisterLibFunc(&inv.version, handle, "cedar_language_version")
	return inv, nil
})

// Load resolves and loads the native engine, once per process. Subsequent
// calls return the same handle (or the same load error).
func Load() (Invoker, error) {
	inv, err := load()
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func defaultLibraryFile() string {
	switch runtime.GOOS {
	case "darwin":
		return "lib" + libraryName + ".dylib"
	case "windows":
		return libraryName + ".dll"
	default:
		return "lib" + libraryName + ".so"
	}
}
