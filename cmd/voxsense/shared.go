//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")

func calibrationFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "calibration",
		Usage:   "YAML file adding or overriding language calibrations",
		Sources: cli.EnvVars("VOXSENSE_CALIBRATION"),
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
		Sources: cli.EnvVars("VOXSENSE_FORMAT"),
	}
}

func extractionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "max-duration",
			Usage: "Only analyze the beginning of the clip",
			Value: 10 * time.Second,
		},
		&cli.IntFlag{
			Name:  "target-rate",
			Usage: "Sample rate the clip is resampled to before analysis",
			Value: 22050,
		},
	}
}

func classifyFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "Spoken language or dialect (see the languages command); unknown values use the default",
			Value:   voxsense.DefaultLanguage,
			Sources: cli.EnvVars("VOXSENSE_LANGUAGE"),
		},
		calibrationFlag(),
		formatFlag(),
		&cli.BoolFlag{
			Name:    "explain",
			Aliases: []string{"E"},
			Usage:   "Show what every acoustic dimension contributed",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"D"},
			Usage:   "Include raw scores and the audio descriptor in output, and log pipeline stages",
			Action: func(_ context.Context, _ *cli.Command, debug bool) error {
				if debug {
					slog.SetLogLoggerLevel(slog.LevelDebug)
				}

				return nil
			},
		},
		&cli.StringFlag{
			Name:    "history",
			Usage:   "Append the result to this JSONL history file",
			Sources: cli.EnvVars("VOXSENSE_HISTORY"),
		},
	}, extractionFlags()...)
}

func extractOptions(cmd *cli.Command) voxsense.Options {
	opts := voxsense.DefaultOptions()
	opts.MaxDuration = cmd.Duration("max-duration")
	opts.SampleRate = cmd.Int("target-rate")

	return opts
}

// loadCalibrations returns the built-in table, overlaid with --calibration when set.
func loadCalibrations(cmd *cli.Command) (*voxsense.Calibrations, error) {
	path := cmd.String("calibration")
	if path == "" {
		return voxsense.DefaultCalibrations(), nil
	}

	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified calibration files
	if err != nil {
		return nil, fmt.Errorf("opening calibration file: %w", err)
	}
	defer file.Close()

	return voxsense.LoadCalibrations(file, nil)
}

func newClassifier(cmd *cli.Command) (*voxsense.Classifier, error) {
	table, err := loadCalibrations(cmd)
	if err != nil {
		return nil, err
	}

	return voxsense.NewClassifier(voxsense.DefaultModel(), table)
}

// readInput reads a whole file, or stdin for "-".
func readInput(source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(source) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	return data, nil
}
