//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/farcloser/voxsense"
	"github.com/farcloser/voxsense/internal/integration/ffprobe"
	"github.com/farcloser/voxsense/internal/output"
)

const outputFile = "voxsense-report.jsonl"

var (
	errNoFolder     = errors.New("expected at least one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no .wav, .mp3, .ogg, .flac or .m4a files found")
)

//nolint:gochecknoglobals // configuration data, effectively const
var audioExtensions = []string{".wav", ".mp3", ".ogg", ".flac", ".m4a"}

type reportConfig struct {
	redact           bool
	languageOverride string
	workers          int
	output           string
	classifier       *voxsense.Classifier
	options          voxsense.Options
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Classify every voice clip under one or more folders and write a voxsense JSONL report",
		ArgsUsage: "<folder> [folder...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Override the language for all files (default: detect from a folder named after a language)",
				Sources: cli.EnvVars("VOXSENSE_LANGUAGE"),
			},
			&cli.StringFlag{
				Name:    "calibration",
				Usage:   "YAML file adding or overriding language calibrations",
				Sources: cli.EnvVars("VOXSENSE_CALIBRATION"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file",
				Value:   outputFile,
			},
			&cli.DurationFlag{
				Name:  "max-duration",
				Usage: "Only analyze the beginning of each clip",
				Value: 10 * time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return errNoFolder
			}

			table := voxsense.DefaultCalibrations()

			if path := cmd.String("calibration"); path != "" {
				file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified calibration files
				if err != nil {
					return fmt.Errorf("opening calibration file: %w", err)
				}

				table, err = voxsense.LoadCalibrations(file, nil)
				file.Close()

				if err != nil {
					return err
				}
			}

			classifier, err := voxsense.NewClassifier(voxsense.DefaultModel(), table)
			if err != nil {
				return err
			}

			opts := voxsense.DefaultOptions()
			opts.MaxDuration = cmd.Duration("max-duration")

			return runReport(ctx, cmd.Args().Slice(), &reportConfig{
				redact:           cmd.Bool("redact-path"),
				languageOverride: cmd.String("language"),
				workers:          max(cmd.Int("workers"), 1),
				output:           cmd.String("output"),
				classifier:       classifier,
				options:          opts,
			})
		},
	}
}

func runReport(ctx context.Context, folders []string, cfg *reportConfig) error {
	// Collect audio files.
	var (
		files   []string
		scanErr error
	)

	for _, folder := range folders {
		found, err := collectAudioFiles(folder)
		scanErr = multierr.Append(scanErr, err)
		files = append(files, found...)
	}

	if scanErr != nil {
		return fmt.Errorf("scanning folders: %w", scanErr)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folders, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to classify (%d workers)\n", len(files), cfg.workers)

	// Process files concurrently.
	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	sem := make(chan struct{}, cfg.workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = processFile(ctx, filePath, cfg)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
		}(idx, filePath)
	}

	waitGroup.Wait()

	failed, totals, err := writeReport(cfg.output, files, results, cfg.redact)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	// Compress.
	if err := compressFile(cfg.output); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %dm %ds (%d failed)\n", len(files), minutes, seconds, failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", cfg.output, cfg.output)

	// Timing breakdown.
	classified := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  ffprobe:     %s (cumulative)\n", totals.probe.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  ffmpeg:      %s (cumulative)\n", totals.decode.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  features:    %s (cumulative)\n", totals.extract.Truncate(time.Millisecond))

	if classified > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s (probe: %s, decode: %s, features: %s)\n",
			(totals.probe+totals.decode+totals.extract)/time.Duration(classified),
			totals.probe/time.Duration(classified),
			totals.decode/time.Duration(classified),
			totals.extract/time.Duration(classified),
		)
	}

	// Print digest summary.
	fmt.Fprintln(os.Stderr)

	return runDigest(cfg.output, "")
}

type timingTotals struct {
	probe, decode, extract time.Duration
}

// writeReport writes results in file order.
func writeReport(path string, files []string, results []Record, redact bool) (failed int, totals timingTotals, err error) {
	out, err := os.Create(path) //nolint:gosec // user-chosen report path
	if err != nil {
		return 0, totals, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	enc := json.NewEncoder(out)

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totals.probe += millisToDuration(record.Timing.ProbeMs)
			totals.decode += millisToDuration(record.Timing.DecodeMs)
			totals.extract += millisToDuration(record.Timing.ExtractMs)
		}

		if redact {
			record.File = ""
			record.Probe = redactProbe(record.Probe)
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)
		}
	}

	return failed, totals, nil
}

func processFile(ctx context.Context, filePath string, cfg *reportConfig) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	language := detectLanguage(filePath, cfg.languageOverride, cfg.classifier.Calibrations())
	record := Record{File: filePath, Language: language, Timing: timing}

	fail := func(kind string, err error) Record {
		record.Kind = kind
		record.Error = err.Error()
		timing.TotalMs = durationMs(time.Since(fileStart))

		return record
	}

	// Probe.
	probeStart := time.Now()

	probeResult, err := ffprobe.Probe(ctx, filePath)

	timing.ProbeMs = durationMs(time.Since(probeStart))

	if err != nil {
		return fail(kindProbe, fmt.Errorf("probe failed: %w", err))
	}

	if _, err := probeResult.Audio(); err != nil {
		return fail(kindProbe, err)
	}

	// Serialize probe data.
	if probeJSON, err := json.Marshal(probeResult); err == nil {
		record.Probe = probeJSON
	} else {
		record.ProbeError = "probe serialization failed"
	}

	audio, err := os.ReadFile(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return fail(kindRead, fmt.Errorf("open failed: %w", err))
	}

	// Decode.
	decodeStart := time.Now()

	samples, err := voxsense.FFmpegDecoder{}.Decode(ctx, audio, voxsense.DecodeSpec{
		SampleRate:  cfg.options.SampleRate,
		MaxDuration: cfg.options.MaxDuration,
	})

	timing.DecodeMs = durationMs(time.Since(decodeStart))

	if err != nil {
		return fail(kindDecode, fmt.Errorf("%w: %w", voxsense.ErrDecode, err))
	}

	// Features.
	extractStart := time.Now()

	desc, err := voxsense.ExtractSamples(samples, cfg.options)

	timing.ExtractMs = durationMs(time.Since(extractStart))

	if err != nil {
		kind := kindExtract
		if errors.Is(err, voxsense.ErrTooShort) {
			kind = kindTooShort
		}

		return fail(kind, err)
	}

	// Classify.
	classifyStart := time.Now()

	result := cfg.classifier.Classify(desc, language)

	timing.ClassifyMs = durationMs(time.Since(classifyStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	record.Language = result.Language.Key
	record.Classification = output.ResultToMap(result)
	record.Classification["evidence"] = output.EvidenceToMap(result)
	record.Descriptor = output.DescriptorToMap(desc)

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// detectLanguage picks the override, else the innermost folder of filePath named after a known language.
func detectLanguage(filePath, override string, table *voxsense.Calibrations) string {
	if override != "" {
		return override
	}

	dir := filepath.Dir(filePath)
	parts := strings.Split(filepath.ToSlash(dir), "/")

	for i := len(parts) - 1; i >= 0; i-- {
		if cal, ok := table.Lookup(parts[i]); ok {
			return cal.Key
		}
	}

	return table.Default().Key
}

func collectAudioFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, errNotDirectory)
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) (err error) {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(gzFile))

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}

func redactProbe(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}

	// Strip format.filename.
	if format, ok := probe["format"].(map[string]any); ok {
		delete(format, "filename")
	}

	redacted, err := json.Marshal(probe)
	if err != nil {
		return raw
	}

	return redacted
}
