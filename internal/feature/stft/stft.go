// Package stft frames a mono signal and computes its short-time magnitude spectrum.
package stft

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrogram holds centered frames of a signal and their magnitude spectra.
type Spectrogram struct {
	Frames    [][]float64 // raw time-domain frames, frameLength samples each
	Magnitude [][]float64 // per frame, frameLength/2+1 bins
	Freqs     []float64   // center frequency of each bin, Hz
	BinHz     float64
}

// Analyze frames samples with Frame, applies a Hann window and takes the magnitude of the real FFT.
// The FFT plan is allocated per call.
func Analyze(samples []float64, sampleRate, frameLength, hop int) *Spectrogram {
	frames := Frame(samples, frameLength, hop)
	hann := window.Hann(frameLength)
	fft := fourier.NewFFT(frameLength)

	windowed := make([]float64, frameLength)
	coeffs := make([]complex128, frameLength/2+1)
	magnitude := make([][]float64, len(frames))

	for idx, frame := range frames {
		for i, sample := range frame {
			windowed[i] = sample * hann[i]
		}

		coeffs = fft.Coefficients(coeffs, windowed)

		bins := make([]float64, len(coeffs))
		for k, c := range coeffs {
			bins[k] = cmplx.Abs(c)
		}

		magnitude[idx] = bins
	}

	return &Spectrogram{
		Frames:    frames,
		Magnitude: magnitude,
		Freqs:     Frequencies(sampleRate, frameLength),
		BinHz:     float64(sampleRate) / float64(frameLength),
	}
}

// Frame splits samples into overlapping frames of frameLength, hop apart.
// The signal is zero padded by frameLength/2 on both sides, so frame t is centered on sample t*hop,
// and there are 1 + len(samples)/hop frames.
func Frame(samples []float64, frameLength, hop int) [][]float64 {
	pad := frameLength / 2

	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	count := 1 + (len(padded)-frameLength)/hop
	frames := make([][]float64, count)

	for idx := range count {
		start := idx * hop
		frames[idx] = padded[start : start+frameLength]
	}

	return frames
}

// Frequencies returns the center frequency of each real FFT bin.
func Frequencies(sampleRate, frameLength int) []float64 {
	freqs := make([]float64, frameLength/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(frameLength)
	}

	return freqs
}
