package voxsense

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDescriptor is returned when extraction produced a non-finite or negative quantity.
var ErrInvalidDescriptor = errors.New("invalid audio descriptor")

// Descriptor is the fixed set of acoustic statistics extracted from one clip.
type Descriptor struct {
	// Pitch statistics over voiced bins, in Hz. All zero when nothing was voiced.
	PitchMean  float64 `json:"pitch_mean"`
	PitchStd   float64 `json:"pitch_std"`
	PitchRange float64 `json:"pitch_range"`

	// Frame RMS statistics.
	EnergyMean float64 `json:"energy_mean"`
	EnergyStd  float64 `json:"energy_std"`
	EnergyMax  float64 `json:"energy_max"`

	ZeroCrossingRate float64 `json:"zero_crossing_rate"` // mean fraction of sign changes per frame

	SpectralCentroid  float64 `json:"spectral_centroid"`  // Hz
	SpectralRolloff   float64 `json:"spectral_rolloff"`   // Hz, 85% of magnitude
	SpectralBandwidth float64 `json:"spectral_bandwidth"` // Hz
	SpectralContrast  float64 `json:"spectral_contrast"`  // dB
	Chroma            float64 `json:"chroma"`             // mean normalized chroma energy, 0-1

	Tempo           float64 `json:"tempo"` // BPM, 0 when no periodicity
	DurationSeconds float64 `json:"duration_seconds"`

	Cepstral Cepstral `json:"cepstral"`

	// Recording checks, nil for descriptors that were not extracted from samples.
	Quality *Quality `json:"quality,omitempty"`
}

// Cepstral holds timbre texture statistics. They are reported, not scored.
type Cepstral struct {
	MFCCMean  []float64 `json:"mfcc_mean"`
	MFCCStd   []float64 `json:"mfcc_std"`
	DeltaMean []float64 `json:"delta_mean"`
	DeltaStd  []float64 `json:"delta_std"`
}

// Validate reports an error when any field is non-finite, or a pitch or duration field is negative.
func (d *Descriptor) Validate() error {
	scalars := []struct {
		name        string
		value       float64
		nonNegative bool
	}{
		{"pitch_mean", d.PitchMean, true},
		{"pitch_std", d.PitchStd, true},
		{"pitch_range", d.PitchRange, true},
		{"energy_mean", d.EnergyMean, false},
		{"energy_std", d.EnergyStd, false},
		{"energy_max", d.EnergyMax, false},
		{"zero_crossing_rate", d.ZeroCrossingRate, false},
		{"spectral_centroid", d.SpectralCentroid, false},
		{"spectral_rolloff", d.SpectralRolloff, false},
		{"spectral_bandwidth", d.SpectralBandwidth, false},
		{"spectral_contrast", d.SpectralContrast, false},
		{"chroma", d.Chroma, false},
		{"tempo", d.Tempo, false},
		{"duration_seconds", d.DurationSeconds, true},
	}

	for _, scalar := range scalars {
		if !finite(scalar.value) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidDescriptor, scalar.name, scalar.value)
		}

		if scalar.nonNegative && scalar.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidDescriptor, scalar.name)
		}
	}

	vectors := map[string][]float64{
		"mfcc_mean":  d.Cepstral.MFCCMean,
		"mfcc_std":   d.Cepstral.MFCCStd,
		"delta_mean": d.Cepstral.DeltaMean,
		"delta_std":  d.Cepstral.DeltaStd,
	}

	for name, values := range vectors {
		for idx, value := range values {
			if !finite(value) {
				return fmt.Errorf("%w: %s[%d] is %v", ErrInvalidDescriptor, name, idx, value)
			}
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
