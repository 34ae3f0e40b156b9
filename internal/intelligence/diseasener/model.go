// Package diseasener extracts disease entities from clinical report text
// with a token-classification model served externally. The text is windowed
// with a stride so reports longer than the model's sequence limit are still
// fully covered; overlapping window predictions are reconciled by the span
// merger.
package diseasener

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// BIO labels emitted by the disease model.
const (
	LabelOutside = "O"
	LabelBegin   = "B-Disease"
	LabelInside  = "I-Disease"
)

// maxAdjacencyGap is the largest character gap between two predictions that
// still counts as adjacent for merging.
const maxAdjacencyGap = 3

// Config holds the recognizer tunables.
type Config struct {
	ModelName     string
	MaxWindowSize int // token window length, capped at 512
	Stride        int
	ProbThreshold float64
	LabelSet      []string
	Timeout       time.Duration
}

// DefaultConfig mirrors the served model's training configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelName:     "disease-ner",
		MaxWindowSize: 512,
		Stride:        128,
		ProbThreshold: 0,
		LabelSet:      []string{LabelOutside, LabelBegin, LabelInside},
		Timeout:       30 * time.Second,
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return errors.New(errors.CodeInvalidParam, "diseasener: model name is required")
	}
	if c.MaxWindowSize < 1 || c.MaxWindowSize > 512 {
		return errors.Newf(errors.CodeInvalidParam, "diseasener: max window size %d out of range [1, 512]", c.MaxWindowSize)
	}
	if c.Stride < 1 || c.Stride >= c.MaxWindowSize {
		return errors.Newf(errors.CodeInvalidParam, "diseasener: stride %d must be in [1, %d)", c.Stride, c.MaxWindowSize)
	}
	if c.ProbThreshold < 0 || c.ProbThreshold > 1 {
		return errors.Newf(errors.CodeInvalidParam, "diseasener: prob threshold %g out of range [0, 1]", c.ProbThreshold)
	}
	if len(c.LabelSet) < 2 {
		return errors.New(errors.CodeInvalidParam, "diseasener: label set must contain at least O and one entity label")
	}
	return nil
}

// Recognizer runs the sliding-window NER pipeline.
type Recognizer struct {
	backend common.ModelBackend
	cfg     *Config
	logger  logging.Logger
	metrics common.IntelligenceMetrics
}

// NewRecognizer wires a Recognizer. backend is required; nil logger and
// metrics fall back to no-ops.
func NewRecognizer(backend common.ModelBackend, cfg *Config, logger logging.Logger, metrics common.IntelligenceMetrics) (*Recognizer, error) {
	if backend == nil {
		return nil, errors.New(errors.CodeInvalidParam, "diseasener: backend is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopMetrics()
	}
	return &Recognizer{
		backend: backend,
		cfg:     cfg,
		logger:  logger.Named("diseasener"),
		metrics: metrics,
	}, nil
}

// Extract returns the merged disease entities for text, sorted by position.
// An empty or whitespace-only text yields an empty slice. Model failures are
// returned as errors; callers that must not fail the overall pipeline treat
// them as an empty result.
func (r *Recognizer) Extract(ctx context.Context, text string) ([]record.Entity, error) {
	start := time.Now()

	spans := tokenize(text)
	if len(spans) == 0 {
		return []record.Entity{}, nil
	}
	tokens := make([]string, len(spans))
	for i, s := range spans {
		tokens[i] = s.Text
	}

	var preds []spanPrediction
	for _, w := range buildWindows(len(tokens), r.cfg.MaxWindowSize, r.cfg.Stride) {
		probs, err := r.invokeBackend(ctx, tokens[w.start:w.end])
		if err != nil {
			r.metrics.RecordInference(ctx, r.cfg.ModelName, float64(time.Since(start).Milliseconds()), false)
			return nil, errors.Wrap(err, errors.ErrCodeNERInferenceFailed, "diseasener: window inference failed")
		}
		preds = append(preds, r.collectWindow(probs, spans[w.start:w.end])...)
	}

	sort.Slice(preds, func(i, j int) bool {
		if preds[i].start != preds[j].start {
			return preds[i].start < preds[j].start
		}
		return preds[i].end < preds[j].end
	})

	merged := mergeSpans(preds)
	entities := r.finalize(text, merged)

	elapsed := float64(time.Since(start).Milliseconds())
	r.metrics.RecordInference(ctx, r.cfg.ModelName, elapsed, true)
	r.metrics.RecordExtraction(ctx, "ner", len(entities), elapsed)
	r.logger.Debug("disease extraction finished",
		logging.Int("tokens", len(tokens)),
		logging.Int("entities", len(entities)))
	return entities, nil
}

// collectWindow converts one window's probability matrix into absolute span
// predictions, dropping outside labels and empty offsets.
func (r *Recognizer) collectWindow(probs [][]float64, spans []tokenSpan) []spanPrediction {
	var out []spanPrediction
	for i, row := range probs {
		if i >= len(spans) {
			break
		}
		label, score := argmax(row, r.cfg.LabelSet)
		if label == LabelOutside {
			continue
		}
		sp := spans[i]
		if sp.Start >= sp.End {
			continue
		}
		out = append(out, spanPrediction{
			start: sp.Start,
			end:   sp.End,
			label: label,
			score: score,
		})
	}
	return out
}

// finalize applies the probability threshold, extracts and trims the surface
// text, and rounds confidences to 4 decimals.
func (r *Recognizer) finalize(text string, preds []spanPrediction) []record.Entity {
	entities := make([]record.Entity, 0, len(preds))
	for _, p := range preds {
		if p.score < r.cfg.ProbThreshold {
			continue
		}
		if p.start < 0 || p.end > len(text) || p.start >= p.end {
			continue
		}
		surface := strings.TrimSpace(text[p.start:p.end])
		if surface == "" {
			continue
		}
		entities = append(entities, record.Entity{
			Text:       surface,
			Start:      p.start,
			End:        p.end,
			Type:       record.EntityTypeDisease,
			Confidence: math.Round(p.score*10000) / 10000,
		})
	}
	return entities
}

// invokeBackend requests logits for one token window and returns the softmax
// probability matrix, one row per token.
func (r *Recognizer) invokeBackend(ctx context.Context, tokens []string) ([][]float64, error) {
	input, err := common.EncodeJSON(map[string]any{"tokens": tokens})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	resp, err := r.backend.Predict(ctx, &common.PredictRequest{
		ModelName: r.cfg.ModelName,
		InputData: input,
		Metadata:  map[string]string{"task": "token_classification"},
	})
	if err != nil {
		return nil, err
	}

	raw, err := resp.Output("logits")
	if err != nil {
		return nil, err
	}
	logits, err := common.DecodeFloat64Matrix(raw)
	if err != nil {
		return nil, err
	}
	if len(logits) != len(tokens) {
		return nil, fmt.Errorf("logit rows %d != tokens %d", len(logits), len(tokens))
	}
	numLabels := len(r.cfg.LabelSet)
	probs := make([][]float64, len(logits))
	for i, row := range logits {
		if len(row) != numLabels {
			return nil, fmt.Errorf("logit row %d has %d cols, want %d", i, len(row), numLabels)
		}
		probs[i] = softmax(row)
	}
	return probs, nil
}

// softmax converts one logit row into probabilities, shifting by the max for
// numerical stability.
func softmax(row []float64) []float64 {
	maxV := row[0]
	for _, v := range row[1:] {
		if v > maxV {
			maxV = v
		}
	}
	sum := 0.0
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(row []float64, labels []string) (string, float64) {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	if best >= len(labels) {
		return LabelOutside, 0
	}
	return labels[best], row[best]
}
