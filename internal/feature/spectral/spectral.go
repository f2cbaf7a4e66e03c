// Package spectral computes per-frame shape measures of a magnitude spectrogram.
//
// Every function takes magnitude[frame][bin] over frameLength/2+1 bins and returns one value per frame.
// Silent frames yield zero.
package spectral

import (
	sonar "github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
)

// DefaultRolloff is the fraction of spectral energy under the rolloff frequency.
const DefaultRolloff = 0.85

// Centroid returns the magnitude-weighted mean frequency of each frame.
func Centroid(magnitude [][]float64, sampleRate int) []float64 {
	return sonar.NewSpectralCentroid(sampleRate).ComputeFrames(magnitude)
}

// Bandwidth returns the second order spread of each frame around its centroid.
func Bandwidth(magnitude [][]float64, sampleRate int, centroids []float64) []float64 {
	return sonar.NewSpectralBandwidth(sampleRate).ComputeFrames(magnitude, centroids)
}

// Rolloff returns the lowest frequency under which the given fraction of each frame's energy lies.
func Rolloff(magnitude [][]float64, sampleRate int, percent float64) []float64 {
	return sonar.NewSpectralRolloff(sampleRate).ComputeFrames(magnitude, percent)
}
