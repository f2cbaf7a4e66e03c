package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes headerless interleaved little-endian signed PCM.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// BytesPerFrame is the size of one sample across all channels.
func (f PCMFormat) BytesPerFrame() int {
	return int(f.BitDepth/8) * int(f.Channels) //nolint:gosec // bit depth and channel count are small constants
}

// ClippingDetection counts runs of two or more consecutive full scale samples.
type ClippingDetection struct {
	Samples        uint64
	ClippedSamples uint64
	Events         uint64
	LongestRun     uint64
}

type DCOffsetResult struct {
	Offset   float64 // mean sample value
	OffsetDb float64 // absolute offset in dBFS, -120 for none
}

type SilenceSegment struct {
	StartSec    float64
	EndSec      float64
	DurationSec float64
	RmsDb       float64
}

type SilenceResult struct {
	Segments      []SilenceSegment
	TotalSilence  float64 // seconds
	LeadingSec    float64
	TrailingSec   float64
	TotalDuration float64
}
