// Package quality detects recording defects in mono float signals: clipping, DC offset and silence.
package quality

import "math"

// FullScale is the magnitude at or above which a sample counts as clipped: 16-bit positive full scale.
const FullScale = 32767.0 / 32768.0

// floorDb is reported for a level of exactly zero.
const floorDb = -120.0

func toDb(level float64) float64 {
	db := 20 * math.Log10(level)
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return floorDb
	}

	return db
}
