package voxsense

import (
	"fmt"
	"time"

	"github.com/farcloser/voxsense/internal/quality"
)

// Check names a recording check.
type Check string

const (
	CheckClipping       Check = "clipping"
	CheckDCOffset       Check = "dc-offset"
	CheckSilencePadding Check = "silence-padding"
)

// Severity indicates how bad a detected issue is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bands defines ascending severity thresholds: higher values are worse.
type Bands struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

// Match returns the severity for a value, and false when the value is under the Mild threshold.
func (b Bands) Match(value float64) (Severity, bool) {
	switch {
	case value >= b.Severe:
		return SeveritySevere, true
	case value >= b.Moderate:
		return SeverityModerate, true
	case value >= b.Mild:
		return SeverityMild, true
	}

	return SeverityNone, false
}

// Issue is a recording problem. Issues never change the classification, they qualify it.
type Issue struct {
	Check    Check    `json:"check"`
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
}

// QualityOptions sets the severity bands of the recording checks. Zero bands use the defaults.
type QualityOptions struct {
	Clipping       Bands // clipping events
	DCOffset       Bands // dBFS
	SilencePadding Bands // seconds of leading plus trailing silence
}

// DefaultQualityOptions returns bands suited to phone and laptop voice recordings.
func DefaultQualityOptions() QualityOptions {
	return QualityOptions{
		Clipping:       Bands{Mild: 1, Moderate: 10, Severe: 100},
		DCOffset:       Bands{Mild: -40, Moderate: -26, Severe: -13},
		SilencePadding: Bands{Mild: 2, Moderate: 4, Severe: 6},
	}
}

func (o *QualityOptions) applyDefaults() {
	defaults := DefaultQualityOptions()

	if o.Clipping == (Bands{}) {
		o.Clipping = defaults.Clipping
	}

	if o.DCOffset == (Bands{}) {
		o.DCOffset = defaults.DCOffset
	}

	if o.SilencePadding == (Bands{}) {
		o.SilencePadding = defaults.SilencePadding
	}
}

// Quality summarizes the recording checks of a clip. It is not an input of the scorer.
type Quality struct {
	ClippingEvents  int     `json:"clipping_events"`
	ClippedSamples  int     `json:"clipped_samples"`
	DCOffsetDb      float64 `json:"dc_offset_db"`
	LeadingSilence  float64 `json:"leading_silence_seconds"`
	TrailingSilence float64 `json:"trailing_silence_seconds"`
	TotalSilence    float64 `json:"total_silence_seconds"`
	Issues          []Issue `json:"issues,omitempty"`
}

// AssessQuality runs the recording checks on mono samples.
func AssessQuality(samples []float64, sampleRate int, opts QualityOptions) *Quality {
	opts.applyDefaults()

	clip := quality.Clipping(samples)
	offset := quality.DCOffset(samples)
	silence := quality.Silence(samples, sampleRate, quality.DefaultSilenceOptions())

	result := &Quality{
		ClippingEvents:  int(clip.Events),         //nolint:gosec // bounded by the clip length
		ClippedSamples:  int(clip.ClippedSamples), //nolint:gosec // bounded by the clip length
		DCOffsetDb:      offset.OffsetDb,
		LeadingSilence:  silence.LeadingSec,
		TrailingSilence: silence.TrailingSec,
		TotalSilence:    silence.TotalSilence,
	}

	if severity, ok := opts.Clipping.Match(float64(clip.Events)); ok {
		result.Issues = append(result.Issues, Issue{
			Check:    CheckClipping,
			Severity: severity,
			Summary: fmt.Sprintf("%d clipping events (%d samples, longest %d)",
				clip.Events, clip.ClippedSamples, clip.LongestRun),
		})
	}

	if severity, ok := opts.DCOffset.Match(offset.OffsetDb); ok {
		result.Issues = append(result.Issues, Issue{
			Check:    CheckDCOffset,
			Severity: severity,
			Summary:  fmt.Sprintf("DC offset at %.1f dBFS", offset.OffsetDb),
		})
	}

	// A clip that is silent throughout counts its silence once.
	padding := min(silence.LeadingSec+silence.TrailingSec, silence.TotalSilence)
	if severity, ok := opts.SilencePadding.Match(padding); ok {
		result.Issues = append(result.Issues, Issue{
			Check:    CheckSilencePadding,
			Severity: severity,
			Summary: fmt.Sprintf("%s of leading and %s of trailing silence",
				seconds(silence.LeadingSec), seconds(silence.TrailingSec)),
		})
	}

	return result
}

// Worst returns the highest severity among issues.
func (q *Quality) Worst() Severity {
	worst := SeverityNone
	for _, issue := range q.Issues {
		worst = max(worst, issue.Severity)
	}

	return worst
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(10 * time.Millisecond)
}
