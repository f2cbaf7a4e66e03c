package quality

import (
	"math"

	"github.com/farcloser/voxsense/internal/types"
)

// Clipping finds runs of at least two consecutive samples at full scale.
// A single full scale sample is a legitimate peak and is not counted.
func Clipping(samples []float64) *types.ClippingDetection {
	result := &types.ClippingDetection{Samples: uint64(len(samples))}

	var consecutive uint64

	flush := func() {
		if consecutive >= 2 {
			result.Events++
			result.ClippedSamples += consecutive
			result.LongestRun = max(result.LongestRun, consecutive)
		}

		consecutive = 0
	}

	for _, sample := range samples {
		if math.Abs(sample) >= FullScale {
			consecutive++

			continue
		}

		flush()
	}

	// Trailing run.
	flush()

	return result
}
