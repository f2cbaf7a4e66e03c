package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Slow hard-drives spinning up or network retrieved resources may cause timeouts if too aggressive.
	timeout = 60 * time.Second

	format = "f64le"
	codec  = "pcm_f64le"
)

// DecodeSpec is the shape of the signal ffmpeg should produce.
type DecodeSpec struct {
	SampleRate  int
	MaxDuration time.Duration // zero decodes everything
	StreamIndex int           // audio stream, 0-based
}
