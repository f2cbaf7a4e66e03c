package quality

import (
	"math"
	"time"

	"github.com/farcloser/voxsense/internal/types"
)

type SilenceOptions struct {
	ThresholdDb float64       // below this = silence (default -60)
	MinDuration time.Duration // minimum silence to report (default 300ms)
	Window      time.Duration // RMS window size (default 50ms)
}

func DefaultSilenceOptions() SilenceOptions {
	return SilenceOptions{
		ThresholdDb: -60.0,
		MinDuration: 300 * time.Millisecond,
		Window:      50 * time.Millisecond,
	}
}

// Silence finds stretches of windowed RMS under the threshold.
func Silence(samples []float64, sampleRate int, opts SilenceOptions) *types.SilenceResult {
	defaults := DefaultSilenceOptions()

	if opts.ThresholdDb == 0 {
		opts.ThresholdDb = defaults.ThresholdDb
	}

	if opts.MinDuration <= 0 {
		opts.MinDuration = defaults.MinDuration
	}

	if opts.Window <= 0 {
		opts.Window = defaults.Window
	}

	rate := float64(sampleRate)
	windowSamples := max(int(opts.Window.Seconds()*rate), 1)
	minSilence := int(opts.MinDuration.Seconds() * rate)
	threshold := math.Pow(10, opts.ThresholdDb/20)

	var (
		segments     []types.SilenceSegment
		inSilence    bool
		silenceStart int
		silenceSumSq float64
	)

	closeSegment := func(end int) {
		inSilence = false

		length := end - silenceStart
		if length < minSilence || length == 0 {
			return
		}

		segments = append(segments, types.SilenceSegment{
			StartSec:    float64(silenceStart) / rate,
			EndSec:      float64(end) / rate,
			DurationSec: float64(length) / rate,
			RmsDb:       toDb(math.Sqrt(silenceSumSq / float64(length))),
		})
	}

	for start := 0; start < len(samples); start += windowSamples {
		window := samples[start:min(start+windowSamples, len(samples))]

		var sumSq float64
		for _, sample := range window {
			sumSq += sample * sample
		}

		silent := math.Sqrt(sumSq/float64(len(window))) < threshold

		switch {
		case silent && !inSilence:
			inSilence = true
			silenceStart = start
			silenceSumSq = sumSq
		case silent && inSilence:
			silenceSumSq += sumSq
		case !silent && inSilence:
			closeSegment(start)
		default:
		}
	}

	if inSilence {
		closeSegment(len(samples))
	}

	result := &types.SilenceResult{
		Segments:      segments,
		TotalDuration: float64(len(samples)) / rate,
	}

	for _, seg := range segments {
		result.TotalSilence += seg.DurationSec
	}

	if len(segments) > 0 {
		if segments[0].StartSec == 0 {
			result.LeadingSec = segments[0].DurationSec
		}

		if last := segments[len(segments)-1]; last.EndSec == result.TotalDuration {
			result.TrailingSec = last.DurationSec
		}
	}

	return result
}
