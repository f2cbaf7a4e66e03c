//nolint:tagliatelle
package main

import "encoding/json"

// Failure kinds recorded in Record.Kind.
const (
	kindProbe    = "probe"
	kindRead     = "read"
	kindDecode   = "decode"
	kindTooShort = "too-short"
	kindExtract  = "extract"
)

// Record is a single line in the JSONL report file.
type Record struct {
	File           string          `json:"file,omitempty"`
	Language       string          `json:"language,omitempty"`
	Classification map[string]any  `json:"classification,omitempty"`
	Descriptor     map[string]any  `json:"descriptor,omitempty"`
	Probe          json.RawMessage `json:"probe,omitempty"`
	ProbeError     string          `json:"probe_error,omitempty"`
	Error          string          `json:"error,omitempty"`
	Kind           string          `json:"kind,omitempty"`
	Timing         *RecordTiming   `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ProbeMs    float64 `json:"probe_ms"`
	DecodeMs   float64 `json:"decode_ms"`
	ExtractMs  float64 `json:"extract_ms"`
	ClassifyMs float64 `json:"classify_ms"`
	TotalMs    float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File           string                `json:"file,omitempty"`
	Language       string                `json:"language,omitempty"`
	Classification *digestClassification `json:"classification,omitempty"`
	Descriptor     *digestDescriptor     `json:"descriptor,omitempty"`
	Error          string                `json:"error,omitempty"`
	Kind           string                `json:"kind,omitempty"`
}

type digestDescriptor struct {
	Quality *struct {
		WorstSeverity string `json:"worst_severity"`
	} `json:"quality,omitempty"`
}

type digestClassification struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Degenerate bool    `json:"degenerate"`
}

// languageBreakdown tracks per-language emotion counts for the digest.
type languageBreakdown struct {
	Language string
	Total    int
	Emotions map[string]int
}
