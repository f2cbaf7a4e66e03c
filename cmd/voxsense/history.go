//nolint:wrapcheck
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/farcloser/voxsense"
)

var errHistoryArgs = errors.New("expected exactly one argument: path to a history file")

// historyEntry is one line of the JSONL history log.
type historyEntry struct {
	Time       time.Time `json:"time"`
	Source     string    `json:"source"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language"`
}

// appendHistory adds one entry to the log. Entries are never rewritten.
func appendHistory(path, source string, result *voxsense.Result) (err error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // user-specified log
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(file))

	return json.NewEncoder(file).Encode(historyEntry{
		Time:       time.Now().UTC(),
		Source:     source,
		Emotion:    result.Emotion.String(),
		Confidence: result.Confidence(),
		Language:   result.Language.Key,
	})
}

func readHistory(path string) ([]historyEntry, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified history files
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer file.Close()

	var entries []historyEntry

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry historyEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recent classifications from a history file",
		ArgsUsage: "<history.jsonl>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "last",
				Aliases: []string{"n"},
				Usage:   "Number of entries to show, newest first",
				Value:   5,
			},
			formatFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errHistoryArgs, cmd.NArg())
			}

			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			entries, err := readHistory(cmd.Args().First())
			if err != nil {
				return err
			}

			distribution := map[string]any{}
			counts := map[string]int{}

			for _, entry := range entries {
				counts[entry.Emotion]++
				distribution[entry.Emotion] = counts[entry.Emotion]
			}

			recent := slices.Clone(entries[max(0, len(entries)-max(cmd.Int("last"), 0)):])
			slices.Reverse(recent)

			lines := make([]any, 0, len(recent))
			for _, entry := range recent {
				lines = append(lines, fmt.Sprintf("%s  %s (%.0f%%)  %s  %s",
					entry.Time.Local().Format(time.TimeOnly), entry.Emotion, entry.Confidence*100, entry.Language, entry.Source))
			}

			data := &format.Data{
				Object: cmd.Args().First(),
				Meta: map[string]any{
					"analyses":        len(entries),
					"unique_emotions": len(counts),
					"distribution":    distribution,
					"recent":          lines,
				},
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout)
		},
	}
}
