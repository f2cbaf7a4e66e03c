// Package energy computes per-frame loudness and noisiness measures.
package energy

import (
	"math"

	sonar "github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
)

// zeroThreshold is the magnitude under which a sample counts as zero, and zero counts as positive.
const zeroThreshold = 1e-10

// RMS returns the root mean square of each frame.
func RMS(frames [][]float64) []float64 {
	out := make([]float64, len(frames))

	for idx, frame := range frames {
		if len(frame) == 0 {
			continue
		}

		var sum float64
		for _, sample := range frame {
			sum += sample * sample
		}

		out[idx] = math.Sqrt(sum / float64(len(frame)))
	}

	return out
}

// ZeroCrossingRate returns, for each frame, the number of sign changes divided by the frame length.
func ZeroCrossingRate(frames [][]float64, sampleRate int) []float64 {
	zcr := sonar.NewZeroCrossingRate(sampleRate)
	out := make([]float64, len(frames))

	var gated []float64

	for idx, frame := range frames {
		if len(frame) < 2 {
			continue
		}

		gated = gated[:0]
		for _, sample := range frame {
			if math.Abs(sample) <= zeroThreshold {
				sample = 0
			}

			gated = append(gated, sample)
		}

		// The normalized rate is per sample pair.
		crossings := math.Round(zcr.ComputeNormalized(gated) * float64(len(frame)-1))
		out[idx] = crossings / float64(len(frame))
	}

	return out
}
