// Package cepstral computes mel-frequency cepstral coefficients and their deltas.
package cepstral

import (
	"math"

	sonar "github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"gonum.org/v1/gonum/stat"
)

const (
	// DeltaWidth is the number of frames the delta regression spans.
	DeltaWidth = 9

	amin  = 1e-10
	topDB = 80.0
)

// MelFilterBank returns bands HTK mel triangles over the frameLength/2+1 FFT bins, from 0 Hz to Nyquist.
// Each triangle peaks at 1 on its center bin.
func MelFilterBank(sampleRate, frameLength, bands int) [][]float64 {
	return sonar.NewMelScale().CreateMelFilterBank(bands, frameLength, sampleRate, 0, float64(sampleRate)/2)
}

// MFCC returns count coefficients per frame: orthonormal DCT-II of the log mel power spectrum.
// The log spectrum is floored 80 dB below its maximum over the whole clip.
func MFCC(magnitude [][]float64, bank [][]float64, count int) [][]float64 {
	melDB := make([][]float64, len(magnitude))
	peak := math.Inf(-1)

	for t, bins := range magnitude {
		row := make([]float64, len(bank))

		for m, filter := range bank {
			var energy float64
			for k, weight := range filter {
				if weight != 0 {
					energy += weight * bins[k] * bins[k]
				}
			}

			row[m] = 10 * math.Log10(max(energy, amin))
			peak = max(peak, row[m])
		}

		melDB[t] = row
	}

	floor := peak - topDB
	dct := dctMatrix(count, len(bank))

	coeffs := make([][]float64, len(melDB))

	for t, row := range melDB {
		for m := range row {
			row[m] = max(row[m], floor)
		}

		out := make([]float64, count)
		for c, basis := range dct {
			var sum float64
			for m, v := range row {
				sum += basis[m] * v
			}

			out[c] = sum
		}

		coeffs[t] = out
	}

	return coeffs
}

func dctMatrix(count, size int) [][]float64 {
	matrix := make([][]float64, count)

	for c := range count {
		scale := math.Sqrt(2.0 / float64(size))
		if c == 0 {
			scale = math.Sqrt(1.0 / float64(size))
		}

		row := make([]float64, size)
		for m := range size {
			row[m] = scale * math.Cos(math.Pi*float64(c)*(2*float64(m)+1)/(2*float64(size)))
		}

		matrix[c] = row
	}

	return matrix
}

// Delta returns the least squares slope of each coefficient over width frames centered on each frame.
// Frames closer than width/2 to an edge use the slope of the first or last full window.
// Width shrinks to the largest odd value that fits short inputs, and fewer than 3 frames give zeros.
func Delta(coeffs [][]float64, width int) [][]float64 {
	frames := len(coeffs)

	out := make([][]float64, frames)
	for t := range out {
		out[t] = make([]float64, len(coeffs[t]))
	}

	if width > frames {
		width = frames
		if width%2 == 0 {
			width--
		}
	}

	if width < 3 {
		return out
	}

	half := width / 2

	var denominator float64
	for n := 1; n <= half; n++ {
		denominator += float64(2 * n * n)
	}

	for t := range frames {
		center := min(max(t, half), frames-1-half)

		for c := range out[t] {
			var numerator float64
			for n := -half; n <= half; n++ {
				numerator += float64(n) * coeffs[center+n][c]
			}

			out[t][c] = numerator / denominator
		}
	}

	return out
}

// ColumnStats returns the mean and population standard deviation of each column.
func ColumnStats(matrix [][]float64) (means, stds []float64) {
	if len(matrix) == 0 {
		return []float64{}, []float64{}
	}

	columns := len(matrix[0])
	means = make([]float64, columns)
	stds = make([]float64, columns)

	column := make([]float64, len(matrix))

	for c := range columns {
		for t, row := range matrix {
			column[t] = row[c]
		}

		means[c] = stat.Mean(column, nil)
		stds[c] = stat.PopStdDev(column, nil)
	}

	return means, stds
}
