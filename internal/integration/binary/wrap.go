package binary

import (
	"os"
	"os/exec"
	"strings"
)

// Available checks if a binary is available in the system PATH.
// VOXSENSE_<NAME> (for example VOXSENSE_FFMPEG) points to an explicit binary instead.
func Available(binName string) (string, bool) {
	if override := os.Getenv("VOXSENSE_" + strings.ToUpper(binName)); override != "" {
		binName = override
	}

	path, err := exec.LookPath(binName)

	return path, err == nil
}
