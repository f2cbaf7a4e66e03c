// Package tempo estimates a global tempo from the periodicity of an energy envelope.
package tempo

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Options bounds the tempo search and shapes the prior.
type Options struct {
	MinBPM   float64
	MaxBPM   float64
	StartBPM float64 // center of the log-normal prior
	Octaves  float64 // prior standard deviation, in octaves
}

// DefaultOptions searches 30 to 300 BPM with a one octave prior centered on 120 BPM.
func DefaultOptions() Options {
	return Options{MinBPM: 30, MaxBPM: 300, StartBPM: 120, Octaves: 1}
}

// noiseFloor discards autocorrelation lags that are rounding noise relative to lag zero.
const noiseFloor = 1e-6

// Onset returns the half-wave rectified first difference of an envelope. The first value is zero.
func Onset(envelope []float64) []float64 {
	out := make([]float64, len(envelope))
	for t := 1; t < len(envelope); t++ {
		out[t] = max(0, envelope[t]-envelope[t-1])
	}

	return out
}

// Estimate returns the tempo in BPM of an onset envelope sampled at frameRate frames per second.
// It weights the autocorrelation of the envelope by the tempo prior and picks the strongest lag.
// A flat envelope, or one with no periodicity in range, yields 0.
func Estimate(onset []float64, frameRate float64, opts Options) float64 {
	acf := autocorrelate(onset)
	if len(acf) == 0 || acf[0] <= 0 {
		return 0
	}

	floor := acf[0] * noiseFloor

	var (
		best      float64
		bestScore float64
	)

	for lag := 1; lag < len(acf); lag++ {
		bpm := 60 * frameRate / float64(lag)
		if bpm > opts.MaxBPM {
			continue
		}

		if bpm < opts.MinBPM {
			break
		}

		if acf[lag] <= floor {
			continue
		}

		octaves := math.Log2(bpm/opts.StartBPM) / opts.Octaves
		score := acf[lag] * math.Exp(-0.5*octaves*octaves)

		if score > bestScore {
			best, bestScore = bpm, score
		}
	}

	return best
}

// autocorrelate returns the linear autocorrelation of signal for lags 0 to len(signal)-1.
func autocorrelate(signal []float64) []float64 {
	if len(signal) == 0 {
		return nil
	}

	flat := true

	for _, v := range signal {
		if v != 0 {
			flat = false

			break
		}
	}

	if flat {
		return make([]float64, len(signal))
	}

	// Zero padding to twice the length keeps the circular correlation from wrapping.
	padded := make([]float64, 2*len(signal))
	copy(padded, signal)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}

	inverse := fft.IFFT(spectrum)

	out := make([]float64, len(signal))
	for lag := range out {
		out[lag] = real(inverse[lag])
	}

	return out
}
