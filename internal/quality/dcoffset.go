package quality

import (
	"math"

	"github.com/farcloser/voxsense/internal/types"
)

// DCOffset returns the mean of samples and its level in dBFS.
func DCOffset(samples []float64) *types.DCOffsetResult {
	if len(samples) == 0 {
		return &types.DCOffsetResult{OffsetDb: floorDb}
	}

	var sum float64
	for _, sample := range samples {
		sum += sample
	}

	offset := sum / float64(len(samples))

	return &types.DCOffsetResult{
		Offset:   offset,
		OffsetDb: toDb(math.Abs(offset)),
	}
}
