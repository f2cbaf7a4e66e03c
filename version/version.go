// Package version exposes build identification, set at link time:
//
//	go build -ldflags "-X github.com/farcloser/voxsense/version.version=v1.0.0 -X ..."
package version

import (
	"os"
	"path/filepath"
	"runtime/debug"
)

//nolint:gochecknoglobals // set by the linker
var (
	name    = ""
	version = ""
	commit  = ""
)

// Name returns the binary name, defaulting to the executable file name.
func Name() string {
	if name != "" {
		return name
	}

	return filepath.Base(os.Args[0])
}

// Version returns the release version, falling back to the module version recorded in the build info.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Commit returns the VCS revision, falling back to the build info.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
