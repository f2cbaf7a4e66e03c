// Package pcm converts raw sample bytes into normalized mono float signals.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/voxsense/internal/types"
)

// Normalization divisors for signed PCM.
const (
	MaxValue16 = 32768.0      // 2^15
	MaxValue24 = 8388608.0    // 2^23
	MaxValue32 = 2147483648.0 // 2^31
)

// ErrUnsupportedFormat is returned for bit depths other than 16, 24 and 32, or a zero channel count.
var ErrUnsupportedFormat = errors.New("unsupported PCM format")

// Mono reads interleaved PCM and averages the channels of each frame. Trailing partial frames are dropped.
func Mono(reader io.Reader, format types.PCMFormat) ([]float64, error) {
	if format.Channels == 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, format.Channels, format.SampleRate)
	}

	var maxVal float64

	switch format.BitDepth {
	case types.Depth16:
		maxVal = MaxValue16
	case types.Depth24:
		maxVal = MaxValue24
	case types.Depth32:
		maxVal = MaxValue32
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, format.BitDepth)
	}

	bytesPerSample := int(format.BitDepth / 8) //nolint:gosec // bit depth is a small constant
	numChannels := int(format.Channels)        //nolint:gosec // channel count is small
	frameSize := format.BytesPerFrame()

	buf := make([]byte, frameSize*4096)
	pending := 0

	var (
		out []float64
		sum float64
	)

	for {
		n, err := reader.Read(buf[pending:])
		n += pending

		completeFrames := (n / frameSize) * frameSize
		data := buf[:completeFrames]

		for i := 0; i < len(data); i += bytesPerSample {
			var sample float64

			switch format.BitDepth {
			case types.Depth16:
				sample = float64(int16(binary.LittleEndian.Uint16(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
			case types.Depth24:
				raw := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
				if raw&0x800000 != 0 {
					raw |= ^0xFFFFFF
				}

				sample = float64(raw) / maxVal
			case types.Depth32:
				sample = float64(int32(binary.LittleEndian.Uint32(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
			default:
			}

			sum += sample

			if (i/bytesPerSample)%numChannels == numChannels-1 {
				out = append(out, sum/float64(numChannels))
				sum = 0
			}
		}

		// Keep a partial frame for the next read.
		pending = copy(buf, buf[completeFrames:n])

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return out, nil
}

// Float64LE decodes little-endian IEEE 754 doubles, as produced by ffmpeg's f64le format.
func Float64LE(data []byte) []float64 {
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}

	return out
}

// Resample converts samples from one rate to another by linear interpolation.
// The output holds floor(len * to / from) samples.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}

	length := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]float64, length)
	step := float64(from) / float64(to)

	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		frac := pos - float64(idx)

		if idx+1 < len(samples) {
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		} else {
			out[i] = samples[len(samples)-1]
		}
	}

	return out
}
