//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense"
	"github.com/farcloser/voxsense/internal/integration/ffprobe"
	"github.com/farcloser/voxsense/internal/output"
)

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify the emotional tone of a recorded voice clip (wav, mp3, ogg, flac...)",
		ArgsUsage: "<file | ->",
		Flags:     classifyFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			return runClassify(ctx, cmd, cmd.Args().First(), voxsense.FFmpegDecoder{})
		},
	}
}

// runClassify is the shared pipeline of classify and analyze.
func runClassify(ctx context.Context, cmd *cli.Command, source string, decoder voxsense.Decoder) error {
	classifier, err := newClassifier(cmd)
	if err != nil {
		return err
	}

	audio, err := readInput(source)
	if err != nil {
		return err
	}

	opts := extractOptions(cmd)
	opts.Decoder = decoder

	desc, err := voxsense.Extract(ctx, audio, opts)
	if err != nil {
		return err
	}

	result := classifier.Classify(desc, cmd.String("language"))

	if path := cmd.String("history"); path != "" {
		if err := appendHistory(path, source, result); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
	}

	report := &classification{
		source: source,
		result: result,
		desc:   desc,
	}

	if cmd.Bool("debug") {
		report.probe = probeSource(ctx, source, decoder)
	}

	return outputClassification(report, cmd.String("format"), cmd.Bool("explain"), cmd.Bool("debug"))
}

// probeSource returns ffprobe metadata for container files, nil otherwise.
func probeSource(ctx context.Context, source string, decoder voxsense.Decoder) map[string]any {
	if source == "-" {
		return nil
	}

	if _, ok := decoder.(voxsense.FFmpegDecoder); !ok {
		return nil
	}

	probe, err := ffprobe.Probe(ctx, source)
	if err != nil {
		slog.Debug("classify.probeSource", "file path", source, "error", err)

		return map[string]any{"error": err.Error()}
	}

	meta := map[string]any{
		"format":   probe.Format.FormatName,
		"duration": probe.DurationSeconds(),
	}

	if stream, err := probe.Audio(); err == nil {
		meta["codec"] = stream.CodecName
		meta["sample_rate"] = stream.SampleRate
		meta["channels"] = stream.Channels
		meta["bit_rate"] = stream.BitRate
	}

	return meta
}

type classification struct {
	source string
	result *voxsense.Result
	desc   *voxsense.Descriptor
	probe  map[string]any
}

func (c *classification) debugMeta() map[string]any {
	meta := output.ResultToMap(c.result)
	meta["descriptor"] = output.DescriptorToMap(c.desc)

	if c.probe != nil {
		meta["probe"] = c.probe
	}

	return meta
}
