package voxsense

import (
	"log/slog"
	"math"
	"slices"
)

/*
Usage:

desc, err := voxsense.Extract(ctx, audio, voxsense.DefaultOptions())
if errors.Is(err, voxsense.ErrTooShort) {
    fmt.Println("Please speak for at least half a second.")
}

result := voxsense.Classify(desc, "bengali")
fmt.Printf("%s (%.1f%%)\n", result.Emotion, result.Confidence()*100)

// Custom calibration table
table, err := voxsense.LoadCalibrations(file, nil)
classifier, err := voxsense.NewClassifier(voxsense.DefaultModel(), table)
result := classifier.Classify(desc, "odia")

// Explain the decision
for _, ev := range result.Evidence {
    fmt.Printf("%s = %.3f -> band %d %v\n", ev.Measure, ev.Value, ev.Band, ev.Weights)
}

*/

// Evidence records what one dimension contributed to a decision.
type Evidence struct {
	Measure Measure
	Value   float64 // calibrated value that was matched
	Band    int
	Weights Weights
}

// Result is the outcome of one classification. It is never mutated after Classify returns.
type Result struct {
	Emotion       Emotion
	Probabilities map[Emotion]float64 // rounded to 3 decimals
	Scores        map[Emotion]float64 // raw accumulated weights
	Labels        []Emotion           // priority order of the model that produced the result
	Language      Calibration
	Evidence      []Evidence
	// Degenerate is set when no dimension contributed, and probabilities are uniform to the thousandth.
	Degenerate bool
}

// Confidence returns the probability of the predicted label.
func (r *Result) Confidence() float64 {
	return r.Probabilities[r.Emotion]
}

// Ranked returns the labels ordered by descending probability, ties in priority order.
func (r *Result) Ranked() []Emotion {
	ranked := slices.Clone(r.Labels)

	slices.SortStableFunc(ranked, func(a, b Emotion) int {
		switch pa, pb := r.Probabilities[a], r.Probabilities[b]; {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		default:
			return 0
		}
	})

	return ranked
}

// Classifier scores descriptors with a model and a calibration table. It is safe for concurrent use.
type Classifier struct {
	model *Model
	table *Calibrations
}

// NewClassifier validates model and binds it to table. Nil arguments select the built-in model and table.
func NewClassifier(model *Model, table *Calibrations) (*Classifier, error) {
	if model == nil {
		model = DefaultModel()
	}

	if table == nil {
		table = DefaultCalibrations()
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{model: model, table: table}, nil
}

// Classify uses the built-in model and calibration table.
func Classify(desc *Descriptor, language string) *Result {
	classifier := &Classifier{model: DefaultModel(), table: DefaultCalibrations()}

	return classifier.Classify(desc, language)
}

// Calibrations returns the table the classifier resolves languages against.
func (c *Classifier) Calibrations() *Calibrations {
	return c.table
}

// Classify maps a descriptor to a label distribution. Unknown languages use the default calibration.
func (c *Classifier) Classify(desc *Descriptor, language string) *Result {
	cal := c.table.Resolve(language)
	labels := c.model.Labels

	scores := make(map[Emotion]float64, len(labels))
	for _, label := range labels {
		scores[label] = 0
	}

	evidence := make([]Evidence, 0, len(c.model.Dimensions))

	for _, dim := range c.model.Dimensions {
		value := dim.Measure.value(desc, cal)
		idx := dim.Match(value)
		band := dim.Bands[idx]

		// Fixed label order keeps the floating-point sums reproducible.
		for _, label := range labels {
			scores[label] += band.Weights[label]
		}

		evidence = append(evidence, Evidence{Measure: dim.Measure, Value: value, Band: idx, Weights: band.Weights})
	}

	result := &Result{
		Scores:        scores,
		Labels:        slices.Clone(labels),
		Language:      cal,
		Evidence:      evidence,
	}

	var total float64
	for _, label := range labels {
		total += scores[label]
	}

	if total == 0 {
		equal := make(map[Emotion]float64, len(labels))
		for _, label := range labels {
			equal[label] = 1
		}

		result.Probabilities = normalize(labels, equal, float64(len(labels)))

		result.Emotion = c.model.Default
		result.Degenerate = true

		slog.Warn("voxsense.Classify", "stage", "degenerate", "language", cal.Key)

		return result
	}

	result.Probabilities = normalize(labels, scores, total)

	result.Emotion = labels[0]
	for _, label := range labels[1:] {
		if result.Probabilities[label] > result.Probabilities[result.Emotion] {
			result.Emotion = label
		}
	}

	slog.Debug("voxsense.Classify",
		"language", cal.Key,
		"emotion", result.Emotion,
		"confidence", result.Probabilities[result.Emotion],
		"total", total,
	)

	return result
}

// thousandths rounds v*1000 half to even, after removing binary noise so that decimal halves stay halves.
func thousandths(v float64) int {
	return int(math.RoundToEven(math.Round(v*1e9) / 1e6))
}

// normalize divides scores by total and rounds each share to three decimals.
// When the rounded shares miss 1 by more than 0.001, single thousandths move to the shares
// with the largest rounding residue until they don't, ties going to label priority.
func normalize(labels []Emotion, scores map[Emotion]float64, total float64) map[Emotion]float64 {
	exact := make([]float64, len(labels))
	units := make([]int, len(labels))
	sum := 0

	for idx, label := range labels {
		exact[idx] = scores[label] / total * 1000
		units[idx] = thousandths(scores[label] / total)
		sum += units[idx]
	}

	for diff := 1000 - sum; diff > 1 || diff < -1; {
		step := 1
		if diff < 0 {
			step = -1
		}

		best := 0
		for idx := range labels {
			if float64(step)*(exact[idx]-float64(units[idx])) > float64(step)*(exact[best]-float64(units[best])) {
				best = idx
			}
		}

		units[best] += step
		diff -= step
	}

	probabilities := make(map[Emotion]float64, len(labels))
	for idx, label := range labels {
		probabilities[label] = float64(units[idx]) / 1000
	}

	return probabilities
}
