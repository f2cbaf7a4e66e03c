package voxsense_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/farcloser/voxsense"
	"github.com/farcloser/voxsense/internal/types"
)

func sine(freq, amplitude float64, sampleRate, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	return out
}

func pcm16(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(math.Round(sample*32767)))) //nolint:gosec // test signal is in [-1, 1]
	}

	return out
}

func TestExtractSamplesTooShort(t *testing.T) {
	t.Parallel()

	opts := voxsense.DefaultOptions()

	// 500ms at 22050 Hz is 11025 samples.
	_, err := voxsense.ExtractSamples(make([]float64, 11024), opts)
	if !errors.Is(err, voxsense.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}

	if !strings.Contains(err.Error(), "need at least 500ms") || strings.Contains(err.Error(), "second") {
		t.Errorf("message does not state the threshold: %v", err)
	}

	desc, err := voxsense.ExtractSamples(make([]float64, 11025), opts)
	if err != nil {
		t.Fatalf("minimum length clip failed: %v", err)
	}

	if desc.DurationSeconds != 0.5 {
		t.Errorf("duration = %v", desc.DurationSeconds)
	}

	if _, err := voxsense.ExtractSamples(nil, opts); !errors.Is(err, voxsense.ErrTooShort) {
		t.Fatalf("empty clip: expected ErrTooShort, got %v", err)
	}
}

func TestExtractSamplesSilence(t *testing.T) {
	t.Parallel()

	desc, err := voxsense.ExtractSamples(make([]float64, 22050), voxsense.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if desc.PitchMean != 0 || desc.PitchRange != 0 || desc.Tempo != 0 {
		t.Errorf("silence has pitch %v range %v tempo %v", desc.PitchMean, desc.PitchRange, desc.Tempo)
	}

	if desc.EnergyMean != 0 || desc.ZeroCrossingRate != 0 {
		t.Errorf("silence has energy %v zcr %v", desc.EnergyMean, desc.ZeroCrossingRate)
	}

	if desc.SpectralContrast != 0 || desc.SpectralCentroid != 0 {
		t.Errorf("silence has contrast %v centroid %v", desc.SpectralContrast, desc.SpectralCentroid)
	}

	if len(desc.Cepstral.MFCCMean) != 40 || len(desc.Cepstral.DeltaStd) != 40 {
		t.Errorf("expected 40 cepstral coefficients, got %d", len(desc.Cepstral.MFCCMean))
	}

	if err := desc.Validate(); err != nil {
		t.Error(err)
	}

	if result := voxsense.Classify(desc, "hindi"); result.Emotion != voxsense.EmotionCalm {
		t.Errorf("silence classified as %s", result.Emotion)
	}
}

func TestExtractSamplesTone(t *testing.T) {
	t.Parallel()

	desc, err := voxsense.ExtractSamples(sine(440, 0.5, 22050, 22050), voxsense.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if desc.PitchMean < 380 || desc.PitchMean > 500 {
		t.Errorf("pitch of a 440 Hz tone = %v", desc.PitchMean)
	}

	if desc.EnergyMean < 0.25 || desc.EnergyMean > 0.36 {
		t.Errorf("energy of a 0.5 amplitude tone = %v", desc.EnergyMean)
	}

	if desc.SpectralCentroid < 300 || desc.SpectralCentroid > 1500 {
		t.Errorf("centroid of a 440 Hz tone = %v", desc.SpectralCentroid)
	}

	if desc.DurationSeconds != 1 {
		t.Errorf("duration = %v", desc.DurationSeconds)
	}
}

func TestExtractSamplesTruncates(t *testing.T) {
	t.Parallel()

	opts := voxsense.DefaultOptions()
	opts.MaxDuration = 2 * time.Second

	desc, err := voxsense.ExtractSamples(sine(220, 0.3, 22050, 3*22050), opts)
	if err != nil {
		t.Fatal(err)
	}

	if desc.DurationSeconds != 2 {
		t.Errorf("duration = %v, want 2", desc.DurationSeconds)
	}
}

func TestExtractSamplesRejectsNonFinite(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 22050)
	samples[100] = math.NaN()

	if _, err := voxsense.ExtractSamples(samples, voxsense.DefaultOptions()); !errors.Is(err, voxsense.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestExtractSamplesCapsCoefficients(t *testing.T) {
	t.Parallel()

	opts := voxsense.DefaultOptions()
	opts.MelBands = 20

	desc, err := voxsense.ExtractSamples(sine(300, 0.2, 22050, 22050), opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(desc.Cepstral.MFCCMean) != 20 {
		t.Errorf("expected 20 coefficients, got %d", len(desc.Cepstral.MFCCMean))
	}
}

func TestExtractDecodeFailure(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken container")

	opts := voxsense.DefaultOptions()
	opts.Decoder = voxsense.DecoderFunc(func(context.Context, []byte, voxsense.DecodeSpec) ([]float64, error) {
		return nil, errBroken
	})

	_, err := voxsense.Extract(context.Background(), []byte("not audio"), opts)
	if !errors.Is(err, voxsense.ErrDecode) || !errors.Is(err, errBroken) {
		t.Fatalf("expected ErrDecode wrapping the decoder error, got %v", err)
	}
}

func TestExtractPassesDecodeSpec(t *testing.T) {
	t.Parallel()

	var seen voxsense.DecodeSpec

	opts := voxsense.Options{
		SampleRate:  16000,
		MaxDuration: 3 * time.Second,
		Decoder: voxsense.DecoderFunc(func(_ context.Context, _ []byte, spec voxsense.DecodeSpec) ([]float64, error) {
			seen = spec

			return make([]float64, spec.SampleRate), nil
		}),
	}

	desc, err := voxsense.Extract(context.Background(), nil, opts)
	if err != nil {
		t.Fatal(err)
	}

	if seen.SampleRate != 16000 || seen.MaxDuration != 3*time.Second {
		t.Errorf("decoder got %+v", seen)
	}

	if desc.DurationSeconds != 1 {
		t.Errorf("duration = %v", desc.DurationSeconds)
	}
}

func TestExtractRawPCM(t *testing.T) {
	t.Parallel()

	audio := pcm16(sine(440, 0.5, 44100, 44100))

	opts := voxsense.DefaultOptions()
	opts.Decoder = voxsense.RawDecoder(types.PCMFormat{SampleRate: 44100, BitDepth: types.Depth16, Channels: 1})

	desc, err := voxsense.Extract(context.Background(), audio, opts)
	if err != nil {
		t.Fatal(err)
	}

	if desc.DurationSeconds != 1 {
		t.Errorf("resampled duration = %v", desc.DurationSeconds)
	}

	if desc.PitchMean < 380 || desc.PitchMean > 500 {
		t.Errorf("pitch = %v", desc.PitchMean)
	}
}

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()

	valid := calmDescriptor()
	if err := valid.Validate(); err != nil {
		t.Fatal(err)
	}

	nan := calmDescriptor()
	nan.SpectralCentroid = math.NaN()

	negative := calmDescriptor()
	negative.PitchMean = -1

	inf := calmDescriptor()
	inf.Cepstral.MFCCMean = []float64{1, math.Inf(1)}

	for name, desc := range map[string]*voxsense.Descriptor{"nan": nan, "negative pitch": negative, "inf mfcc": inf} {
		if err := desc.Validate(); !errors.Is(err, voxsense.ErrInvalidDescriptor) {
			t.Errorf("%s: expected ErrInvalidDescriptor, got %v", name, err)
		}
	}
}
