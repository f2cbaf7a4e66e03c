// Package pitch estimates voiced frequencies by picking interpolated spectral peaks.
package pitch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options bounds the peak search.
type Options struct {
	MinHz     float64 // inclusive
	MaxHz     float64 // exclusive
	Threshold float64 // peaks must exceed Threshold times the frame maximum
}

// Track returns the frequency of every qualifying spectral peak of every frame.
// A peak is a local maximum above the frame threshold. Its frequency is refined by parabolic interpolation.
func Track(magnitude [][]float64, freqs []float64, opts Options) []float64 {
	if len(freqs) < 3 {
		return nil
	}

	binHz := freqs[1] - freqs[0]

	var voiced []float64

	for _, bins := range magnitude {
		ref := opts.Threshold * floats.Max(bins)
		if ref <= 0 {
			continue
		}

		gated := func(k int) float64 {
			if bins[k] > ref {
				return bins[k]
			}

			return 0
		}

		last := len(bins) - 1

		for k := 1; k <= last; k++ {
			if freqs[k] < opts.MinHz || freqs[k] >= opts.MaxHz {
				continue
			}

			current := gated(k)
			if current == 0 || current <= gated(k-1) {
				continue
			}

			if k < last && current < gated(k+1) {
				continue
			}

			voiced = append(voiced, (float64(k)+shift(bins, k))*binHz)
		}
	}

	return voiced
}

// shift is the parabolic offset of a peak at bin k, in bins.
func shift(bins []float64, k int) float64 {
	if k == 0 || k == len(bins)-1 {
		return 0
	}

	avg := 0.5 * (bins[k+1] - bins[k-1])
	curvature := 2*bins[k] - bins[k+1] - bins[k-1]

	if curvature == 0 {
		return 0
	}

	return avg / curvature
}

// Summarize returns the mean, population standard deviation and range of the estimates.
// An empty set is unvoiced and summarizes to zeros.
func Summarize(voiced []float64) (mean, std, span float64) {
	if len(voiced) == 0 {
		return 0, 0, 0
	}

	mean = stat.Mean(voiced, nil)
	std = stat.PopStdDev(voiced, nil)
	span = floats.Max(voiced) - floats.Min(voiced)

	return mean, std, span
}
