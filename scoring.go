package voxsense

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidModel is returned by Model.Validate.
var ErrInvalidModel = errors.New("invalid scoring model")

// Measure names the descriptor quantity a Dimension reads.
type Measure int

const (
	MeasureEnergy            Measure = iota // mean frame RMS, scaled by the language calibration
	MeasurePitch                            // mean pitch, shifted by the language calibration
	MeasurePitchRange                       // pitch range
	MeasureZeroCrossingRate                 // mean zero-crossing rate
	MeasureEnergyVariability                // frame RMS standard deviation
	MeasureSpectralCentroid                 // mean spectral centroid
	MeasureSpectralContrast                 // mean spectral contrast
	MeasureTempo                            // tempo
)

func (m Measure) String() string {
	switch m {
	case MeasureEnergy:
		return "energy"
	case MeasurePitch:
		return "pitch"
	case MeasurePitchRange:
		return "pitch-range"
	case MeasureZeroCrossingRate:
		return "zero-crossing-rate"
	case MeasureEnergyVariability:
		return "energy-variability"
	case MeasureSpectralCentroid:
		return "spectral-centroid"
	case MeasureSpectralContrast:
		return "spectral-contrast"
	case MeasureTempo:
		return "tempo"
	}

	return "unknown"
}

// value reads the measure from a descriptor, applying the calibration where it applies.
func (m Measure) value(desc *Descriptor, cal Calibration) float64 {
	switch m {
	case MeasureEnergy:
		return desc.EnergyMean * cal.EnergyScale
	case MeasurePitch:
		return max(0, desc.PitchMean-cal.PitchOffsetHz)
	case MeasurePitchRange:
		return desc.PitchRange
	case MeasureZeroCrossingRate:
		return desc.ZeroCrossingRate
	case MeasureEnergyVariability:
		return desc.EnergyStd
	case MeasureSpectralCentroid:
		return desc.SpectralCentroid
	case MeasureSpectralContrast:
		return desc.SpectralContrast
	case MeasureTempo:
		return desc.Tempo
	}

	return 0
}

// Weights maps labels to the score a band contributes. Missing labels contribute nothing.
type Weights map[Emotion]float64

// Band is a half-open or closed interval ending at Max.
// Bands of a Dimension are ascending and contiguous: a band starts where the previous one ends.
type Band struct {
	Max       float64 // upper bound, math.Inf(1) for the last band
	Inclusive bool    // value == Max belongs to this band
	Weights   Weights
}

func (b Band) contains(value float64) bool {
	if b.Inclusive {
		return value <= b.Max
	}

	return value < b.Max
}

// Dimension scores one measure through ordered bands.
type Dimension struct {
	Measure Measure
	Bands   []Band
}

// Match returns the index of the band holding value.
// Negative and NaN values fall into the first band, so there is always a match.
func (d Dimension) Match(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}

	for idx, band := range d.Bands {
		if band.contains(value) {
			return idx
		}
	}

	return len(d.Bands) - 1
}

// Model is a closed label set and the dimensions scoring it.
type Model struct {
	// Labels in priority order.
	Labels []Emotion
	// Default is the label returned when no dimension contributes anything.
	Default    Emotion
	Dimensions []Dimension
}

// Validate checks the structural rules the scorer relies on.
func (m *Model) Validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidModel)
	}

	known := make(map[Emotion]bool, len(m.Labels))
	for _, label := range m.Labels {
		if known[label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidModel, label)
		}

		known[label] = true
	}

	if !known[m.Default] {
		return fmt.Errorf("%w: default %q is not a label", ErrInvalidModel, m.Default)
	}

	for _, dim := range m.Dimensions {
		if len(dim.Bands) == 0 {
			return fmt.Errorf("%w: %s: no bands", ErrInvalidModel, dim.Measure)
		}

		for idx, band := range dim.Bands {
			if idx > 0 && band.Max <= dim.Bands[idx-1].Max {
				return fmt.Errorf("%w: %s: band %d is not above band %d", ErrInvalidModel, dim.Measure, idx, idx-1)
			}

			for label, weight := range band.Weights {
				if !known[label] {
					return fmt.Errorf("%w: %s: unknown label %q", ErrInvalidModel, dim.Measure, label)
				}

				if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
					return fmt.Errorf("%w: %s: weight %v for %q", ErrInvalidModel, dim.Measure, weight, label)
				}
			}
		}

		if last := dim.Bands[len(dim.Bands)-1]; !math.IsInf(last.Max, 1) {
			return fmt.Errorf("%w: %s: last band must be unbounded", ErrInvalidModel, dim.Measure)
		}
	}

	return nil
}

// DefaultModel returns the built-in four-label model.
func DefaultModel() *Model {
	inf := math.Inf(1)

	return &Model{
		Labels:  Emotions(),
		Default: EmotionCalm,
		Dimensions: []Dimension{
			{
				Measure: MeasureEnergy,
				Bands: []Band{
					{Max: 0.015, Weights: Weights{EmotionCalm: 0.40, EmotionFearful: 0.10}},
					{Max: 0.04, Weights: Weights{EmotionCalm: 0.25, EmotionStressed: 0.15}},
					{Max: 0.08, Weights: Weights{EmotionStressed: 0.30, EmotionAngry: 0.15}},
					{Max: 0.14, Weights: Weights{EmotionAngry: 0.35, EmotionStressed: 0.15}},
					{Max: inf, Weights: Weights{EmotionAngry: 0.45, EmotionStressed: 0.10}},
				},
			},
			{
				Measure: MeasurePitch,
				Bands: []Band{
					// Unvoiced.
					{Max: 0, Inclusive: true},
					{Max: 160, Weights: Weights{EmotionCalm: 0.30}},
					{Max: 240, Weights: Weights{EmotionCalm: 0.15, EmotionStressed: 0.10}},
					{Max: 330, Weights: Weights{EmotionStressed: 0.25, EmotionFearful: 0.10}},
					{Max: inf, Weights: Weights{EmotionFearful: 0.30, EmotionAngry: 0.10}},
				},
			},
			{
				Measure: MeasurePitchRange,
				Bands: []Band{
					{Max: 100, Inclusive: true, Weights: Weights{EmotionCalm: 0.10}},
					{Max: 200, Inclusive: true, Weights: Weights{EmotionStressed: 0.10}},
					{Max: inf, Weights: Weights{EmotionFearful: 0.15, EmotionStressed: 0.10}},
				},
			},
			{
				Measure: MeasureZeroCrossingRate,
				Bands: []Band{
					{Max: 0.035, Weights: Weights{EmotionCalm: 0.20}},
					{Max: 0.065, Weights: Weights{EmotionStressed: 0.12}},
					{Max: 0.10, Weights: Weights{EmotionAngry: 0.18, EmotionStressed: 0.08}},
					{Max: inf, Weights: Weights{EmotionAngry: 0.22}},
				},
			},
			{
				Measure: MeasureEnergyVariability,
				Bands: []Band{
					{Max: 0.02, Inclusive: true, Weights: Weights{EmotionCalm: 0.12}},
					{Max: 0.04, Inclusive: true, Weights: Weights{EmotionStressed: 0.06}},
					{Max: inf, Weights: Weights{EmotionStressed: 0.12, EmotionAngry: 0.08}},
				},
			},
			{
				Measure: MeasureSpectralCentroid,
				Bands: []Band{
					{Max: 1200, Weights: Weights{EmotionCalm: 0.15}},
					{Max: 2500, Weights: Weights{EmotionStressed: 0.08}},
					{Max: 4000, Weights: Weights{EmotionAngry: 0.12}},
					{Max: inf, Weights: Weights{EmotionAngry: 0.18, EmotionFearful: 0.08}},
				},
			},
			{
				Measure: MeasureSpectralContrast,
				Bands: []Band{
					{Max: 10, Weights: Weights{EmotionCalm: 0.08}},
					{Max: 30, Inclusive: true},
					{Max: inf, Weights: Weights{EmotionAngry: 0.10}},
				},
			},
			{
				Measure: MeasureTempo,
				Bands: []Band{
					{Max: 80, Weights: Weights{EmotionCalm: 0.10}},
					{Max: 140, Inclusive: true},
					{Max: inf, Weights: Weights{EmotionStressed: 0.10, EmotionAngry: 0.08}},
				},
			},
		},
	}
}
