// Package ffprobe reads container and stream metadata with the ffprobe binary.
package ffprobe

import "time"

const (
	name = "ffprobe"
	// Network mounts and sleeping disks are slow to answer.
	timeout = 60 * time.Second
)
