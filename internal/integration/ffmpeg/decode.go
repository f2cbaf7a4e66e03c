package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/voxsense/internal/integration/binary"
)

// Decode converts an audio container read from input into mono float64 little-endian PCM on output,
// resampled to spec.SampleRate and cut at spec.MaxDuration.
func Decode(ctx context.Context, input io.Reader, output io.Writer, spec *DecodeSpec) error {
	slog.Debug("ffmpeg.Decode", "sample rate", spec.SampleRate, "stage", "start")

	ffmpegPath, found := binary.Available(name)
	if !found {
		return fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-i", "-",
		"-map", "0:a:" + strconv.Itoa(spec.StreamIndex),
		"-ac", "1",
		"-ar", strconv.Itoa(spec.SampleRate),
	}

	if spec.MaxDuration > 0 {
		args = append(args, "-t", strconv.FormatFloat(spec.MaxDuration.Seconds(), 'f', -1, 64))
	}

	args = append(args,
		"-f", format,
		"-acodec", codec,
		"-v", "error",
		"-",
	)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	cmd.Stdout = output
	cmd.Stdin = input

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Decode", "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Decode", "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, bytes.TrimSpace(stderr.Bytes()), err)
	}

	return nil
}
