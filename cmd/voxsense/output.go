//nolint:wrapcheck
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/voxsense"
	"github.com/farcloser/voxsense/internal/output"
)

func outputClassification(report *classification, formatName string, explain, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = report.debugMeta()
	} else {
		meta = buildFriendlyOutput(report.result, report.desc.Quality)
	}

	if explain {
		if debug {
			meta["evidence"] = output.EvidenceToMap(report.result)
		} else {
			meta["evidence"] = explainLines(report.result)
		}
	}

	data := &format.Data{
		Object: report.source,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the classification.
func buildFriendlyOutput(result *voxsense.Result, quality *voxsense.Quality) map[string]any {
	info := result.Emotion.Info()

	meta := map[string]any{
		"summary":  fmt.Sprintf("%s %s (%.1f%% confidence)", info.Emoji, result.Emotion, result.Confidence()*100),
		"emotion":  result.Emotion.String(),
		"language": result.Language.Name,
	}

	if info.Scripts != "" {
		meta["scripts"] = info.Scripts
	}

	if result.Language.Note != "" {
		meta["calibration"] = result.Language.Note
	}

	probabilities := make(map[string]any, len(result.Labels))
	for _, label := range result.Ranked() {
		probabilities[label.String()] = fmt.Sprintf("%.1f%%", result.Probabilities[label]*100)
	}

	meta["probabilities"] = probabilities

	if result.Degenerate {
		meta["warning"] = "no acoustic dimension matched, probabilities are uniform"
	}

	if quality != nil && len(quality.Issues) > 0 {
		issues := make([]any, 0, len(quality.Issues))
		for _, issue := range quality.Issues {
			issues = append(issues, fmt.Sprintf("[%s] %s", issue.Severity, issue.Summary))
		}

		meta["recording"] = issues
	}

	return meta
}

// explainLines renders evidence as "measure = value: Label +weight, ...".
func explainLines(result *voxsense.Result) []any {
	lines := make([]any, 0, len(result.Evidence))

	for _, ev := range result.Evidence {
		var parts []string

		for _, label := range result.Labels {
			if weight, ok := ev.Weights[label]; ok && weight > 0 {
				parts = append(parts, fmt.Sprintf("%s +%.2f", label, weight))
			}
		}

		contribution := "nothing"
		if len(parts) > 0 {
			contribution = strings.Join(parts, ", ")
		}

		lines = append(lines, fmt.Sprintf("%s = %.4g: %s", ev.Measure, ev.Value, contribution))
	}

	return lines
}
