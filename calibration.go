package voxsense

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCalibration is returned when a calibration table or entry is malformed.
var ErrInvalidCalibration = errors.New("invalid calibration")

// DefaultLanguage is the key used when a requested language is unknown.
const DefaultLanguage = "hindi"

// Calibration adjusts the scorer inputs for a spoken language or dialect.
type Calibration struct {
	Key           string  `json:"key"             yaml:"key"`
	Name          string  `json:"name"            yaml:"name"`
	PitchOffsetHz float64 `json:"pitch_offset_hz" yaml:"pitch_offset_hz"` // subtracted from mean pitch
	EnergyScale   float64 `json:"energy_scale"    yaml:"energy_scale"`    // multiplies mean energy
	Note          string  `json:"note,omitempty"  yaml:"note,omitempty"`
}

func (c Calibration) validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidCalibration)
	}

	if math.IsNaN(c.PitchOffsetHz) || math.IsInf(c.PitchOffsetHz, 0) {
		return fmt.Errorf("%w: %s: pitch offset must be finite", ErrInvalidCalibration, c.Key)
	}

	if !(c.EnergyScale > 0) || math.IsInf(c.EnergyScale, 0) {
		return fmt.Errorf("%w: %s: energy scale must be positive and finite", ErrInvalidCalibration, c.Key)
	}

	return nil
}

// Calibrations is an ordered, read-only table of language calibrations with a default entry.
type Calibrations struct {
	entries  map[string]Calibration
	order    []string
	fallback string
}

// DefaultCalibrations returns the built-in table.
func DefaultCalibrations() *Calibrations {
	table, err := NewCalibrations(DefaultLanguage, []Calibration{
		{
			Key:           "bengali",
			Name:          "Bengali (বাংলা)",
			PitchOffsetHz: 15,
			EnergyScale:   0.9,
			Note:          "Bengali acoustic patterns: tonal, vowel-rich, Eastern India",
		},
		{
			Key:         "hindi",
			Name:        "Hindi (हिंदी)",
			EnergyScale: 1,
			Note:        "Hindi patterns: neutral stress, retroflex consonants",
		},
		{
			Key:           "punjabi",
			Name:          "Punjabi (ਪੰਜਾਬੀ)",
			PitchOffsetHz: 10,
			EnergyScale:   1.15,
			Note:          "Punjabi patterns: tonal language, high-energy prosody",
		},
		{
			Key:           "hinglish",
			Name:          "Hinglish",
			PitchOffsetHz: 5,
			EnergyScale:   1.05,
			Note:          "Code-switching: Hindi and English mixed speech",
		},
		{
			Key:         "english-in",
			Name:        "English (Indian)",
			EnergyScale: 1,
			Note:        "Indian English: distinct rhythm from British and American",
		},
		{
			Key:           "tamil",
			Name:          "Tamil (தமிழ்)",
			PitchOffsetHz: 5,
			EnergyScale:   1,
			Note:          "Tamil: Dravidian prosody, distinct from Indo-Aryan",
		},
		{
			Key:           "telugu",
			Name:          "Telugu (తెలుగు)",
			PitchOffsetHz: 5,
			EnergyScale:   1,
			Note:          "Telugu: syllable-timed rhythm",
		},
		{
			Key:         "marathi",
			Name:        "Marathi (मराठी)",
			EnergyScale: 1,
			Note:        "Marathi: close to Hindi with its own prosody",
		},
	})
	if err != nil {
		// The built-in table is static.
		panic(err)
	}

	return table
}

// NewCalibrations builds a table from entries. Later entries with the same key replace earlier ones in place.
func NewCalibrations(fallback string, entries []Calibration) (*Calibrations, error) {
	table := &Calibrations{
		entries: make(map[string]Calibration, len(entries)),
	}

	for _, entry := range entries {
		if err := entry.validate(); err != nil {
			return nil, err
		}

		table.put(entry)
	}

	key := normalizeLanguage(fallback)
	if _, ok := table.entries[key]; !ok {
		return nil, fmt.Errorf("%w: default language %q is not in the table", ErrInvalidCalibration, fallback)
	}

	table.fallback = key

	return table, nil
}

func (c *Calibrations) put(entry Calibration) {
	entry.Key = normalizeLanguage(entry.Key)
	if entry.Name == "" {
		entry.Name = entry.Key
	}

	if _, exists := c.entries[entry.Key]; !exists {
		c.order = append(c.order, entry.Key)
	}

	c.entries[entry.Key] = entry
}

// Lookup finds a calibration by key or display name, case-insensitively.
// A display name matches either in full ("Bengali (বাংলা)") or by its leading word ("bengali").
func (c *Calibrations) Lookup(language string) (Calibration, bool) {
	key := normalizeLanguage(language)
	if key == "" {
		return Calibration{}, false
	}

	if entry, ok := c.entries[key]; ok {
		return entry, true
	}

	for _, k := range c.order {
		entry := c.entries[k]
		name := normalizeLanguage(entry.Name)

		if name == key {
			return entry, true
		}

		if short, _, found := strings.Cut(name, " ("); found && short == key {
			return entry, true
		}
	}

	return Calibration{}, false
}

// Resolve returns the calibration for language, or the default entry when the language is unknown.
func (c *Calibrations) Resolve(language string) Calibration {
	if entry, ok := c.Lookup(language); ok {
		return entry
	}

	slog.Debug("voxsense.Calibrations.Resolve", "language", language, "fallback", c.fallback)

	return c.entries[c.fallback]
}

// Default returns the default entry.
func (c *Calibrations) Default() Calibration {
	return c.entries[c.fallback]
}

// All returns every entry in table order.
func (c *Calibrations) All() []Calibration {
	all := make([]Calibration, 0, len(c.order))
	for _, key := range c.order {
		all = append(all, c.entries[key])
	}

	return all
}

type calibrationFile struct {
	Default   string        `yaml:"default"`
	Languages []Calibration `yaml:"languages"`
}

// LoadCalibrations overlays a YAML document on base and returns the merged table. base is not modified.
// A nil base starts from DefaultCalibrations.
//
//	default: bengali
//	languages:
//	  - key: odia
//	    name: Odia (ଓଡ଼ିଆ)
//	    pitch_offset_hz: 8
//	    energy_scale: 1.0
func LoadCalibrations(reader io.Reader, base *Calibrations) (*Calibrations, error) {
	if base == nil {
		base = DefaultCalibrations()
	}

	var doc calibrationFile

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCalibration, err)
	}

	fallback := base.fallback
	if doc.Default != "" {
		fallback = doc.Default
	}

	entries := append(base.All(), doc.Languages...)

	table, err := NewCalibrations(fallback, entries)
	if err != nil {
		return nil, err
	}

	slog.Debug("voxsense.LoadCalibrations", "languages", len(doc.Languages), "default", table.fallback)

	return table, nil
}

func normalizeLanguage(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
