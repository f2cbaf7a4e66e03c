package spectral

import "math"

// PitchClasses is the number of chroma bins, C first.
const PitchClasses = 12

// chromaMinHz skips the bins too coarse to resolve a semitone.
const chromaMinHz = 32.7

// Chroma folds each frame's power spectrum into pitch classes, normalized so the strongest class is 1.
func Chroma(magnitude [][]float64, freqs []float64) [][]float64 {
	classes := make([]int, len(freqs))

	for k, freq := range freqs {
		if freq < chromaMinHz {
			classes[k] = -1

			continue
		}

		// MIDI note 69 is A4 at 440 Hz, MIDI note 0 is a C.
		midi := int(math.Round(12*math.Log2(freq/440) + 69))
		classes[k] = ((midi % PitchClasses) + PitchClasses) % PitchClasses
	}

	out := make([][]float64, len(magnitude))

	for t, bins := range magnitude {
		chroma := make([]float64, PitchClasses)

		for k, mag := range bins {
			if classes[k] >= 0 {
				chroma[classes[k]] += mag * mag
			}
		}

		var peak float64
		for _, v := range chroma {
			peak = max(peak, v)
		}

		if peak > 0 {
			for i := range chroma {
				chroma[i] /= peak
			}
		}

		out[t] = chroma
	}

	return out
}

// ChromaMean averages Chroma over frames and pitch classes.
func ChromaMean(magnitude [][]float64, freqs []float64) float64 {
	frames := Chroma(magnitude, freqs)
	if len(frames) == 0 {
		return 0
	}

	var sum float64
	for _, chroma := range frames {
		for _, v := range chroma {
			sum += v
		}
	}

	return sum / float64(len(frames)*PitchClasses)
}
