package voxsense_test

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/farcloser/voxsense"
)

// calmDescriptor lands in the calmest band of every dimension of the built-in model.
func calmDescriptor() *voxsense.Descriptor {
	return &voxsense.Descriptor{
		PitchMean:        100,
		PitchRange:       50,
		EnergyMean:       0.01,
		EnergyStd:        0.01,
		ZeroCrossingRate: 0.02,
		SpectralCentroid: 1000,
		SpectralContrast: 5,
		Tempo:            60,
		DurationSeconds:  3,
	}
}

func sumProbabilities(result *voxsense.Result) float64 {
	var sum float64
	for _, p := range result.Probabilities {
		sum += p
	}

	return sum
}

func TestClassifyCalmClip(t *testing.T) {
	t.Parallel()

	result := voxsense.Classify(calmDescriptor(), "hindi")

	if result.Emotion != voxsense.EmotionCalm {
		t.Fatalf("expected Calm, got %s", result.Emotion)
	}

	if math.Abs(result.Scores[voxsense.EmotionCalm]-1.45) > 1e-9 {
		t.Errorf("Calm score = %v, want 1.45", result.Scores[voxsense.EmotionCalm])
	}

	if math.Abs(result.Scores[voxsense.EmotionFearful]-0.10) > 1e-9 {
		t.Errorf("Fearful score = %v, want 0.10", result.Scores[voxsense.EmotionFearful])
	}

	want := map[voxsense.Emotion]float64{
		voxsense.EmotionCalm:     0.935,
		voxsense.EmotionStressed: 0,
		voxsense.EmotionAngry:    0,
		voxsense.EmotionFearful:  0.065,
	}

	for label, p := range want {
		if result.Probabilities[label] != p {
			t.Errorf("P(%s) = %v, want %v", label, result.Probabilities[label], p)
		}
	}

	if result.Confidence() != 0.935 {
		t.Errorf("confidence = %v, want 0.935", result.Confidence())
	}

	if result.Degenerate {
		t.Error("calm clip flagged as degenerate")
	}

	if len(result.Evidence) != len(voxsense.DefaultModel().Dimensions) {
		t.Errorf("expected one evidence entry per dimension, got %d", len(result.Evidence))
	}

	ranked := result.Ranked()
	if ranked[0] != voxsense.EmotionCalm || ranked[1] != voxsense.EmotionFearful {
		t.Errorf("unexpected ranking %v", ranked)
	}

	// Zero probability labels keep priority order.
	if ranked[2] != voxsense.EmotionStressed || ranked[3] != voxsense.EmotionAngry {
		t.Errorf("unexpected tail ranking %v", ranked)
	}
}

func TestClassifyResultIsDistribution(t *testing.T) {
	t.Parallel()

	// One representative value per band of each dimension of the built-in model.
	energies := []float64{0.01, 0.02, 0.05, 0.1, 0.2}
	pitches := []float64{0, 100, 200, 300, 400}
	ranges := []float64{50, 150, 300}
	zcrs := []float64{0.02, 0.05, 0.08, 0.2}
	stds := []float64{0.01, 0.03, 0.05}
	centroids := []float64{1000, 2000, 3000, 5000}
	contrasts := []float64{5, 20, 40}
	tempos := []float64{60, 100, 160}

	labels := voxsense.Emotions()
	checked := 0

	for _, energy := range energies {
		for _, pitch := range pitches {
			for _, span := range ranges {
				for _, zcr := range zcrs {
					for _, std := range stds {
						for _, centroid := range centroids {
							for _, contrast := range contrasts {
								for _, tempo := range tempos {
									desc := &voxsense.Descriptor{
										PitchMean:        pitch,
										PitchRange:       span,
										EnergyMean:       energy,
										EnergyStd:        std,
										ZeroCrossingRate: zcr,
										SpectralCentroid: centroid,
										SpectralContrast: contrast,
										Tempo:            tempo,
									}

									result := voxsense.Classify(desc, "hindi")
									checked++

									if sum := sumProbabilities(result); math.Abs(sum-1) > 0.001+1e-9 {
										t.Fatalf("probabilities of %+v sum to %v", desc, sum)
									}

									for _, label := range labels {
										p := result.Probabilities[label]
										if p < 0 || p > 1 {
											t.Fatalf("P(%s) = %v out of range for %+v", label, p, desc)
										}

										if math.Abs(p*1000-math.Round(p*1000)) > 1e-6 {
											t.Fatalf("P(%s) = %v is not rounded to 3 decimals", label, p)
										}

										if p > result.Confidence() {
											t.Fatalf("%s beats predicted %s for %+v", label, result.Emotion, desc)
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}

	if checked != 32400 {
		t.Fatalf("checked %d combinations", checked)
	}
}

func TestClassifyEveryLanguage(t *testing.T) {
	t.Parallel()

	desc := &voxsense.Descriptor{
		PitchMean:        230,
		PitchRange:       180,
		EnergyMean:       0.05,
		EnergyStd:        0.03,
		ZeroCrossingRate: 0.07,
		SpectralCentroid: 2600,
		SpectralContrast: 22,
		Tempo:            125,
	}

	for _, cal := range voxsense.DefaultCalibrations().All() {
		result := voxsense.Classify(desc, cal.Key)

		if result.Language.Key != cal.Key {
			t.Errorf("%s resolved to %s", cal.Key, result.Language.Key)
		}

		if sum := sumProbabilities(result); math.Abs(sum-1) > 0.001+1e-9 {
			t.Errorf("%s: probabilities sum to %v", cal.Key, sum)
		}
	}
}

func TestClassifyEnergyRaisesAnger(t *testing.T) {
	t.Parallel()

	previous := -1.0

	for energy := 0.0; energy <= 0.3; energy += 0.005 {
		desc := calmDescriptor()
		desc.EnergyMean = energy

		result := voxsense.Classify(desc, "hindi")

		angry := result.Scores[voxsense.EmotionAngry]
		if angry < previous {
			t.Fatalf("Angry score fell from %v to %v at energy %v", previous, angry, energy)
		}

		previous = angry
	}

	if previous <= 0 {
		t.Fatal("loud clip carries no Angry score")
	}
}

func TestClassifyPitchOffsetShiftsInput(t *testing.T) {
	t.Parallel()

	table, err := voxsense.NewCalibrations("flat", []voxsense.Calibration{
		{Key: "flat", EnergyScale: 1},
		{Key: "shifted", PitchOffsetHz: 20, EnergyScale: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	classifier, err := voxsense.NewClassifier(nil, table)
	if err != nil {
		t.Fatal(err)
	}

	for _, pitch := range []float64{120, 170, 235, 310, 345, 500} {
		base := calmDescriptor()
		base.PitchMean = pitch

		raised := calmDescriptor()
		raised.PitchMean = pitch + 20

		flat := classifier.Classify(base, "flat")
		shifted := classifier.Classify(raised, "shifted")

		for _, label := range voxsense.Emotions() {
			if flat.Scores[label] != shifted.Scores[label] {
				t.Errorf("pitch %v: %s score %v != %v", pitch, label, flat.Scores[label], shifted.Scores[label])
			}
		}
	}
}

func TestClassifyPitchNeverNegative(t *testing.T) {
	t.Parallel()

	desc := calmDescriptor()
	desc.PitchMean = 10

	result := voxsense.Classify(desc, "bengali")

	for _, ev := range result.Evidence {
		if ev.Measure == voxsense.MeasurePitch {
			if ev.Value != 0 || ev.Band != 0 {
				t.Errorf("offset pitch = %v in band %d, want 0 in band 0", ev.Value, ev.Band)
			}

			return
		}
	}

	t.Fatal("no pitch evidence")
}

func TestClassifyEnergyScale(t *testing.T) {
	t.Parallel()

	desc := calmDescriptor()
	desc.EnergyMean = 0.036

	// 0.036 * 1.15 crosses into the 0.04 band.
	hindi := voxsense.Classify(desc, "hindi")
	punjabi := voxsense.Classify(desc, "punjabi")

	if hindi.Evidence[0].Band != 1 || punjabi.Evidence[0].Band != 2 {
		t.Errorf("energy bands: hindi %d, punjabi %d", hindi.Evidence[0].Band, punjabi.Evidence[0].Band)
	}
}

func TestClassifyUnknownLanguageUsesDefault(t *testing.T) {
	t.Parallel()

	for _, language := range []string{"klingon", "", "  "} {
		result := voxsense.Classify(calmDescriptor(), language)
		if result.Language.Key != voxsense.DefaultLanguage {
			t.Errorf("%q resolved to %s", language, result.Language.Key)
		}
	}
}

func TestClassifyTieGoesToPriority(t *testing.T) {
	t.Parallel()

	model := &voxsense.Model{
		Labels:  []voxsense.Emotion{voxsense.EmotionStressed, voxsense.EmotionCalm},
		Default: voxsense.EmotionCalm,
		Dimensions: []voxsense.Dimension{
			{
				Measure: voxsense.MeasureTempo,
				Bands: []voxsense.Band{
					{Max: math.Inf(1), Weights: voxsense.Weights{voxsense.EmotionCalm: 0.2, voxsense.EmotionStressed: 0.2}},
				},
			},
		},
	}

	classifier, err := voxsense.NewClassifier(model, nil)
	if err != nil {
		t.Fatal(err)
	}

	result := classifier.Classify(calmDescriptor(), "hindi")

	if result.Emotion != voxsense.EmotionStressed {
		t.Errorf("tie resolved to %s, want the first label", result.Emotion)
	}

	if result.Probabilities[voxsense.EmotionStressed] != 0.5 || result.Probabilities[voxsense.EmotionCalm] != 0.5 {
		t.Errorf("unexpected probabilities %v", result.Probabilities)
	}
}

func TestClassifyDegenerate(t *testing.T) {
	t.Parallel()

	model := &voxsense.Model{
		Labels:  []voxsense.Emotion{voxsense.EmotionCalm, voxsense.EmotionStressed, voxsense.EmotionAngry, voxsense.EmotionFearful},
		Default: voxsense.EmotionAngry,
		Dimensions: []voxsense.Dimension{
			{Measure: voxsense.MeasureTempo, Bands: []voxsense.Band{{Max: math.Inf(1)}}},
		},
	}

	classifier, err := voxsense.NewClassifier(model, nil)
	if err != nil {
		t.Fatal(err)
	}

	result := classifier.Classify(calmDescriptor(), "hindi")

	if !result.Degenerate {
		t.Fatal("expected a degenerate result")
	}

	if result.Emotion != voxsense.EmotionAngry {
		t.Errorf("degenerate result picked %s, want the model default", result.Emotion)
	}

	for label, p := range result.Probabilities {
		if p != 0.25 {
			t.Errorf("P(%s) = %v, want 0.25", label, p)
		}
	}
}

func TestClassifyDegenerateLabelCounts(t *testing.T) {
	t.Parallel()

	for _, count := range []int{1, 2, 3, 6, 7, 9, 12} {
		labels := make([]voxsense.Emotion, count)
		for i := range labels {
			labels[i] = voxsense.Emotion(fmt.Sprintf("label-%d", i))
		}

		model := &voxsense.Model{
			Labels:  labels,
			Default: labels[count-1],
			Dimensions: []voxsense.Dimension{
				{Measure: voxsense.MeasureEnergy, Bands: []voxsense.Band{{Max: math.Inf(1)}}},
			},
		}

		classifier, err := voxsense.NewClassifier(model, nil)
		if err != nil {
			t.Fatal(err)
		}

		result := classifier.Classify(calmDescriptor(), "hindi")

		if !result.Degenerate || result.Emotion != labels[count-1] {
			t.Errorf("%d labels: degenerate %v emotion %s", count, result.Degenerate, result.Emotion)
		}

		if sum := sumProbabilities(result); math.Abs(sum-1) > 0.001+1e-9 {
			t.Errorf("%d labels: probabilities sum to %v", count, sum)
		}

		for label, p := range result.Probabilities {
			if math.Abs(p-1/float64(count)) > 0.001 {
				t.Errorf("%d labels: P(%s) = %v", count, label, p)
			}
		}
	}
}

func TestClassifyReferenceExample(t *testing.T) {
	t.Parallel()

	desc := &voxsense.Descriptor{
		EnergyMean:       0.005,
		PitchMean:        100,
		PitchRange:       20,
		ZeroCrossingRate: 0.01,
		EnergyStd:        0.005,
		SpectralCentroid: 800,
		SpectralContrast: 5,
		Tempo:            60,
		DurationSeconds:  3,
	}

	result := voxsense.Classify(desc, voxsense.DefaultLanguage)

	if result.Emotion != voxsense.EmotionCalm {
		t.Fatalf("expected Calm, got %s", result.Emotion)
	}

	for _, label := range result.Labels[1:] {
		if result.Probabilities[label] >= result.Probabilities[voxsense.EmotionCalm] {
			t.Errorf("P(%s) = %v is not below P(Calm)", label, result.Probabilities[label])
		}
	}

	if result.Probabilities[voxsense.EmotionCalm] != 0.935 || result.Probabilities[voxsense.EmotionFearful] != 0.065 {
		t.Errorf("unexpected probabilities %v", result.Probabilities)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	t.Parallel()

	desc := calmDescriptor()
	desc.EnergyMean = 0.07
	desc.PitchMean = 280

	if first, second := voxsense.Classify(desc, "punjabi"), voxsense.Classify(desc, "punjabi"); !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ:\n%+v\n%+v", first, second)
	}

	classifier, err := voxsense.NewClassifier(voxsense.DefaultModel(), voxsense.DefaultCalibrations())
	if err != nil {
		t.Fatal(err)
	}

	first := classifier.Classify(desc, "bengali")
	second := classifier.Classify(desc, "bengali")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated classifier calls differ:\n%+v\n%+v", first, second)
	}

	if !reflect.DeepEqual(first, voxsense.Classify(desc, "bengali")) {
		t.Error("classifier with the built-in model and table differs from Classify")
	}
}

func TestNewClassifierRejectsInvalidModel(t *testing.T) {
	t.Parallel()

	models := map[string]*voxsense.Model{
		"no labels": {Default: voxsense.EmotionCalm},
		"default not a label": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm},
			Default: voxsense.EmotionAngry,
		},
		"duplicate label": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm, voxsense.EmotionCalm},
			Default: voxsense.EmotionCalm,
		},
		"bounded last band": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm},
			Default: voxsense.EmotionCalm,
			Dimensions: []voxsense.Dimension{
				{Measure: voxsense.MeasureTempo, Bands: []voxsense.Band{{Max: 100}}},
			},
		},
		"descending bands": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm},
			Default: voxsense.EmotionCalm,
			Dimensions: []voxsense.Dimension{
				{Measure: voxsense.MeasureTempo, Bands: []voxsense.Band{{Max: 100}, {Max: 50}, {Max: math.Inf(1)}}},
			},
		},
		"negative weight": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm},
			Default: voxsense.EmotionCalm,
			Dimensions: []voxsense.Dimension{
				{Measure: voxsense.MeasureTempo, Bands: []voxsense.Band{
					{Max: math.Inf(1), Weights: voxsense.Weights{voxsense.EmotionCalm: -1}},
				}},
			},
		},
		"unknown label weight": {
			Labels:  []voxsense.Emotion{voxsense.EmotionCalm},
			Default: voxsense.EmotionCalm,
			Dimensions: []voxsense.Dimension{
				{Measure: voxsense.MeasureTempo, Bands: []voxsense.Band{
					{Max: math.Inf(1), Weights: voxsense.Weights{voxsense.EmotionAngry: 1}},
				}},
			},
		},
	}

	for name, model := range models {
		if _, err := voxsense.NewClassifier(model, nil); !errors.Is(err, voxsense.ErrInvalidModel) {
			t.Errorf("%s: expected ErrInvalidModel, got %v", name, err)
		}
	}
}
