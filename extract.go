package voxsense

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/voxsense/internal/feature/cepstral"
	"github.com/farcloser/voxsense/internal/feature/energy"
	"github.com/farcloser/voxsense/internal/feature/pitch"
	"github.com/farcloser/voxsense/internal/feature/spectral"
	"github.com/farcloser/voxsense/internal/feature/stft"
	"github.com/farcloser/voxsense/internal/feature/tempo"
	"github.com/farcloser/voxsense/internal/integration/ffmpeg"
	"github.com/farcloser/voxsense/internal/pcm"
	"github.com/farcloser/voxsense/internal/types"
)

var (
	// ErrTooShort is returned when the decoded clip is shorter than Options.MinDuration.
	ErrTooShort = errors.New("audio too short, please speak longer")
	// ErrDecode is returned when the audio bytes cannot be decoded.
	ErrDecode = errors.New("could not process audio")
)

// DecodeSpec tells a Decoder what shape of signal to produce.
type DecodeSpec struct {
	SampleRate  int
	MaxDuration time.Duration
}

// Decoder turns container bytes into mono float samples in [-1, 1] at spec.SampleRate.
type Decoder interface {
	Decode(ctx context.Context, audio []byte, spec DecodeSpec) ([]float64, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, audio []byte, spec DecodeSpec) ([]float64, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, audio []byte, spec DecodeSpec) ([]float64, error) {
	return f(ctx, audio, spec)
}

// FFmpegDecoder decodes any container ffmpeg understands (WAV, MP3, OGG, FLAC...).
type FFmpegDecoder struct{}

// Decode pipes audio through ffmpeg.
func (FFmpegDecoder) Decode(ctx context.Context, audio []byte, spec DecodeSpec) ([]float64, error) {
	var out bytes.Buffer

	err := ffmpeg.Decode(ctx, bytes.NewReader(audio), &out, &ffmpeg.DecodeSpec{
		SampleRate:  spec.SampleRate,
		MaxDuration: spec.MaxDuration,
	})
	if err != nil {
		return nil, err
	}

	return pcm.Float64LE(out.Bytes()), nil
}

// RawDecoder decodes headerless interleaved little-endian PCM of the given format, without ffmpeg.
func RawDecoder(format types.PCMFormat) Decoder {
	return DecoderFunc(func(_ context.Context, audio []byte, spec DecodeSpec) ([]float64, error) {
		samples, err := pcm.Mono(bytes.NewReader(audio), format)
		if err != nil {
			return nil, err
		}

		samples = pcm.Resample(samples, format.SampleRate, spec.SampleRate)

		return truncate(samples, spec.SampleRate, spec.MaxDuration), nil
	})
}

// Options configures feature extraction. Zero fields use the defaults.
type Options struct {
	SampleRate  int           // default: 22050
	MaxDuration time.Duration // default: 10s, longer input is truncated
	MinDuration time.Duration // default: 500ms, shorter input fails with ErrTooShort

	FrameLength int // default: 2048
	HopLength   int // default: 512
	MelBands    int // default: 128
	MFCCCount   int // default: 40

	PitchMinHz     float64 // default: 150
	PitchMaxHz     float64 // default: 4000
	PitchThreshold float64 // default: 0.1, relative to the frame maximum

	Quality QualityOptions

	Decoder Decoder // default: FFmpegDecoder
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	return Options{
		SampleRate:     22050,
		MaxDuration:    10 * time.Second,
		MinDuration:    500 * time.Millisecond,
		FrameLength:    2048,
		HopLength:      512,
		MelBands:       128,
		MFCCCount:      40,
		PitchMinHz:     150,
		PitchMaxHz:     4000,
		PitchThreshold: 0.1,
		Quality:        DefaultQualityOptions(),
		Decoder:        FFmpegDecoder{},
	}
}

func (o *Options) applyDefaults() {
	defaults := DefaultOptions()

	if o.SampleRate <= 0 {
		o.SampleRate = defaults.SampleRate
	}

	if o.MaxDuration <= 0 {
		o.MaxDuration = defaults.MaxDuration
	}

	if o.MinDuration <= 0 {
		o.MinDuration = defaults.MinDuration
	}

	if o.FrameLength <= 0 {
		o.FrameLength = defaults.FrameLength
	}

	if o.HopLength <= 0 {
		o.HopLength = defaults.HopLength
	}

	if o.MelBands <= 0 {
		o.MelBands = defaults.MelBands
	}

	if o.MFCCCount <= 0 {
		o.MFCCCount = defaults.MFCCCount
	}

	o.MFCCCount = min(o.MFCCCount, o.MelBands)

	if o.PitchMinHz <= 0 {
		o.PitchMinHz = defaults.PitchMinHz
	}

	if o.PitchMaxHz <= 0 {
		o.PitchMaxHz = defaults.PitchMaxHz
	}

	if o.PitchThreshold <= 0 {
		o.PitchThreshold = defaults.PitchThreshold
	}

	if o.Decoder == nil {
		o.Decoder = defaults.Decoder
	}
}

// Extract decodes audio and computes its descriptor.
// Failures wrap ErrDecode or ErrTooShort. A descriptor is only returned when fully populated.
func Extract(ctx context.Context, audio []byte, opts Options) (*Descriptor, error) {
	opts.applyDefaults()

	slog.Debug("voxsense.Extract", "bytes", len(audio), "stage", "decode")

	samples, err := opts.Decoder.Decode(ctx, audio, DecodeSpec{
		SampleRate:  opts.SampleRate,
		MaxDuration: opts.MaxDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return ExtractSamples(samples, opts)
}

// ExtractSamples computes the descriptor of mono samples already at opts.SampleRate.
func ExtractSamples(samples []float64, opts Options) (*Descriptor, error) {
	opts.applyDefaults()

	for idx, sample := range samples {
		if !finite(sample) {
			return nil, fmt.Errorf("%w: sample %d is %v", ErrDecode, idx, sample)
		}
	}

	samples = truncate(samples, opts.SampleRate, opts.MaxDuration)

	minSamples := int(math.Ceil(opts.MinDuration.Seconds() * float64(opts.SampleRate)))
	if len(samples) < minSamples {
		got := time.Duration(float64(len(samples)) / float64(opts.SampleRate) * float64(time.Second))

		return nil, fmt.Errorf("%w: got %s, need at least %s", ErrTooShort, got.Truncate(time.Millisecond), opts.MinDuration)
	}

	slog.Debug("voxsense.ExtractSamples", "samples", len(samples), "sample rate", opts.SampleRate, "stage", "start")

	spec := stft.Analyze(samples, opts.SampleRate, opts.FrameLength, opts.HopLength)

	rms := energy.RMS(spec.Frames)
	zcr := energy.ZeroCrossingRate(spec.Frames, opts.SampleRate)
	centroids := spectral.Centroid(spec.Magnitude, opts.SampleRate)

	desc := &Descriptor{
		EnergyMean:        stat.Mean(rms, nil),
		EnergyStd:         stat.PopStdDev(rms, nil),
		EnergyMax:         floats.Max(rms),
		ZeroCrossingRate:  stat.Mean(zcr, nil),
		SpectralCentroid:  stat.Mean(centroids, nil),
		SpectralBandwidth: stat.Mean(spectral.Bandwidth(spec.Magnitude, opts.SampleRate, centroids), nil),
		SpectralRolloff:   stat.Mean(spectral.Rolloff(spec.Magnitude, opts.SampleRate, spectral.DefaultRolloff), nil),
		SpectralContrast:  stat.Mean(spectral.Contrast(spec.Magnitude, spec.Freqs, spectral.DefaultContrast()), nil),
		Chroma:            spectral.ChromaMean(spec.Magnitude, spec.Freqs),
		DurationSeconds:   float64(len(samples)) / float64(opts.SampleRate),
		Quality:           AssessQuality(samples, opts.SampleRate, opts.Quality),
	}

	voiced := pitch.Track(spec.Magnitude, spec.Freqs, pitch.Options{
		MinHz:     opts.PitchMinHz,
		MaxHz:     opts.PitchMaxHz,
		Threshold: opts.PitchThreshold,
	})
	desc.PitchMean, desc.PitchStd, desc.PitchRange = pitch.Summarize(voiced)

	frameRate := float64(opts.SampleRate) / float64(opts.HopLength)
	desc.Tempo = tempo.Estimate(tempo.Onset(rms), frameRate, tempo.DefaultOptions())

	filters := cepstral.MelFilterBank(opts.SampleRate, opts.FrameLength, opts.MelBands)
	mfcc := cepstral.MFCC(spec.Magnitude, filters, opts.MFCCCount)
	delta := cepstral.Delta(mfcc, cepstral.DeltaWidth)

	desc.Cepstral.MFCCMean, desc.Cepstral.MFCCStd = cepstral.ColumnStats(mfcc)
	desc.Cepstral.DeltaMean, desc.Cepstral.DeltaStd = cepstral.ColumnStats(delta)

	if err := desc.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("voxsense.ExtractSamples",
		"frames", len(spec.Frames),
		"voiced bins", len(voiced),
		"pitch", desc.PitchMean,
		"energy", desc.EnergyMean,
		"tempo", desc.Tempo,
		"stage", "done",
	)

	return desc, nil
}

func truncate(samples []float64, sampleRate int, maxDuration time.Duration) []float64 {
	limit := int(maxDuration.Seconds() * float64(sampleRate))
	if limit > 0 && len(samples) > limit {
		return samples[:limit]
	}

	return samples
}
