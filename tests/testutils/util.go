// Package testutils provides test infrastructure for voxsense integration tests.
package testutils

import (
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// Setup creates a test case configured to run the voxsense binary.
func Setup() *test.Case {
	return setup("voxsense")
}

// SetupReport creates a test case configured to run the vox-report binary.
func SetupReport() *test.Case {
	return setup("vox-report")
}

func setup(binary string) *test.Case {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	return agar.Setup(filepath.Join(projectRoot, "bin", binary))
}
