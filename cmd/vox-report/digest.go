package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a voxsense JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "emotion",
				Usage: "List the files classified as this emotion (e.g., calm, angry)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("emotion"))
		},
	}
}

func runDigest(reportPath, emotionFilter string) error {
	var filter voxsense.Emotion

	if emotionFilter != "" {
		emotion, err := voxsense.ParseEmotion(emotionFilter)
		if err != nil {
			return err
		}

		filter = emotion
	}

	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if filter != "" {
		printEmotionDetail(records, filter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error", Kind: "parse"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failures := map[string]int{}
	emotionDist := map[string]int{}
	languages := map[string]*languageBreakdown{}
	degenerate := 0
	recording := map[string]int{}

	var confidenceSum float64

	for _, rec := range records {
		if rec.Error != "" || rec.Classification == nil {
			kind := rec.Kind
			if kind == "" {
				kind = "unknown"
			}

			failures[kind]++

			continue
		}

		emotion := rec.Classification.Emotion
		emotionDist[emotion]++
		confidenceSum += rec.Classification.Confidence

		if rec.Classification.Degenerate {
			degenerate++
		}

		if rec.Descriptor != nil && rec.Descriptor.Quality != nil {
			if worst := rec.Descriptor.Quality.WorstSeverity; worst != "" && worst != voxsense.SeverityNone.String() {
				recording[worst]++
			}
		}

		breakdown, ok := languages[rec.Language]
		if !ok {
			breakdown = &languageBreakdown{Language: rec.Language, Emotions: map[string]int{}}
			languages[rec.Language] = breakdown
		}

		breakdown.Total++
		breakdown.Emotions[emotion]++
	}

	failed := 0
	for _, count := range failures {
		failed += count
	}

	classified := total - failed

	fmt.Println("=== Voxsense Report Digest ===")
	fmt.Println()
	fmt.Printf("Total clips:   %d\n", total)
	fmt.Printf("Failed:        %d\n", failed)
	fmt.Printf("Classified:    %d\n", classified)

	if classified > 0 {
		fmt.Printf("Mean confidence: %.1f%%\n", confidenceSum/float64(classified)*100)
	}

	if degenerate > 0 {
		fmt.Printf("Uniform (no dimension matched): %d\n", degenerate)
	}

	fmt.Println()

	fmt.Println("--- Emotions ---")

	for _, emotion := range voxsense.Emotions() {
		info := emotion.Info()
		fmt.Printf("  %s %-9s %d\n", info.Emoji, emotion, emotionDist[emotion.String()])
	}

	fmt.Println()

	if len(recording) > 0 {
		fmt.Println("--- Recording Issues ---")

		for _, severity := range []voxsense.Severity{voxsense.SeveritySevere, voxsense.SeverityModerate, voxsense.SeverityMild} {
			if count := recording[severity.String()]; count > 0 {
				fmt.Printf("  %-10s %d\n", severity, count)
			}
		}

		fmt.Println()
	}

	if len(failures) > 0 {
		fmt.Println("--- Failures ---")

		kinds := make([]string, 0, len(failures))
		for kind := range failures {
			kinds = append(kinds, kind)
		}

		slices.Sort(kinds)

		for _, kind := range kinds {
			fmt.Printf("  %-10s %d\n", kind, failures[kind])
		}

		fmt.Println()
	}

	fmt.Println("--- By Language ---")

	breakdowns := make([]*languageBreakdown, 0, len(languages))
	for _, bd := range languages {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *languageBreakdown) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}

		return strings.Compare(a.Language, b.Language)
	})

	for _, bd := range breakdowns {
		parts := make([]string, 0, len(bd.Emotions))

		for _, emotion := range voxsense.Emotions() {
			if count := bd.Emotions[emotion.String()]; count > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", strings.ToLower(emotion.String()), count))
			}
		}

		fmt.Printf("  %s\n", bd.Language)
		fmt.Printf("    total: %d  %s\n", bd.Total, strings.Join(parts, "  "))
	}
}

func printEmotionDetail(records []digestRecord, emotion voxsense.Emotion) {
	fmt.Println()

	var matched []digestRecord

	for _, rec := range records {
		if rec.Classification != nil && rec.Classification.Emotion == emotion.String() {
			matched = append(matched, rec)
		}
	}

	if len(matched) == 0 {
		fmt.Printf("No clips classified as %s\n", emotion)

		return
	}

	slices.SortFunc(matched, func(a, b digestRecord) int {
		switch {
		case a.Classification.Confidence > b.Classification.Confidence:
			return -1
		case a.Classification.Confidence < b.Classification.Confidence:
			return 1
		default:
			return 0
		}
	})

	fmt.Printf("=== %s: %d clips ===\n\n", emotion, len(matched))

	for _, rec := range matched {
		file := rec.File
		if file == "" {
			file = "(redacted)"
		}

		fmt.Printf("  %s\n", file)
		fmt.Printf("    confidence: %.0f%%  language: %s\n", rec.Classification.Confidence*100, rec.Language)
	}
}
