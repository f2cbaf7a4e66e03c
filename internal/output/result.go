// Package output provides shared result serialization for voxsense JSON output.
package output

import (
	"github.com/farcloser/voxsense"
)

// ResultToMap converts a classification into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *voxsense.Result) map[string]any {
	probabilities := make(map[string]any, len(result.Labels))
	scores := make(map[string]any, len(result.Labels))

	for _, label := range result.Labels {
		probabilities[label.String()] = result.Probabilities[label]
		scores[label.String()] = result.Scores[label]
	}

	ranked := make([]any, 0, len(result.Labels))
	for _, label := range result.Ranked() {
		ranked = append(ranked, label.String())
	}

	return map[string]any{
		"emotion":       result.Emotion.String(),
		"confidence":    result.Confidence(),
		"language":      result.Language.Key,
		"probabilities": probabilities,
		"scores":        scores,
		"ranked":        ranked,
		"degenerate":    result.Degenerate,
	}
}

// EvidenceToMap lists the band each dimension landed in and what it added.
func EvidenceToMap(result *voxsense.Result) []any {
	evidence := make([]any, 0, len(result.Evidence))

	for _, ev := range result.Evidence {
		weights := make(map[string]any, len(ev.Weights))
		for label, weight := range ev.Weights {
			weights[label.String()] = weight
		}

		evidence = append(evidence, map[string]any{
			"measure": ev.Measure.String(),
			"value":   ev.Value,
			"band":    ev.Band,
			"weights": weights,
		})
	}

	return evidence
}

// DescriptorToMap converts an audio descriptor into a map.
func DescriptorToMap(desc *voxsense.Descriptor) map[string]any {
	meta := map[string]any{
		"pitch_mean":         desc.PitchMean,
		"pitch_std":          desc.PitchStd,
		"pitch_range":        desc.PitchRange,
		"energy_mean":        desc.EnergyMean,
		"energy_std":         desc.EnergyStd,
		"energy_max":         desc.EnergyMax,
		"zero_crossing_rate": desc.ZeroCrossingRate,
		"spectral_centroid":  desc.SpectralCentroid,
		"spectral_rolloff":   desc.SpectralRolloff,
		"spectral_bandwidth": desc.SpectralBandwidth,
		"spectral_contrast":  desc.SpectralContrast,
		"chroma":             desc.Chroma,
		"tempo":              desc.Tempo,
		"duration_seconds":   desc.DurationSeconds,
		"cepstral": map[string]any{
			"mfcc_mean":  desc.Cepstral.MFCCMean,
			"mfcc_std":   desc.Cepstral.MFCCStd,
			"delta_mean": desc.Cepstral.DeltaMean,
			"delta_std":  desc.Cepstral.DeltaStd,
		},
	}

	if desc.Quality != nil {
		meta["quality"] = QualityToMap(desc.Quality)
	}

	return meta
}

// QualityToMap converts recording checks into a map.
func QualityToMap(q *voxsense.Quality) map[string]any {
	issues := make([]any, 0, len(q.Issues))
	for _, issue := range q.Issues {
		issues = append(issues, map[string]any{
			"check":    string(issue.Check),
			"severity": issue.Severity.String(),
			"summary":  issue.Summary,
		})
	}

	return map[string]any{
		"clipping_events":          q.ClippingEvents,
		"clipped_samples":          q.ClippedSamples,
		"dc_offset_db":             q.DCOffsetDb,
		"leading_silence_seconds":  q.LeadingSilence,
		"trailing_silence_seconds": q.TrailingSilence,
		"total_silence_seconds":    q.TotalSilence,
		"worst_severity":           q.Worst().String(),
		"issues":                   issues,
	}
}

// CalibrationToMap converts a language calibration into a map.
func CalibrationToMap(cal voxsense.Calibration) map[string]any {
	meta := map[string]any{
		"key":             cal.Key,
		"name":            cal.Name,
		"pitch_offset_hz": cal.PitchOffsetHz,
		"energy_scale":    cal.EnergyScale,
	}

	if cal.Note != "" {
		meta["note"] = cal.Note
	}

	return meta
}
