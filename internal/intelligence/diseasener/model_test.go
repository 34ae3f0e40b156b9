package diseasener

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// scriptedBackend labels tokens by lookup and returns confident logits for
// the chosen label, so softmax yields ~0.9999.
type scriptedBackend struct {
	labels   map[string]string
	labelSet []string
	err      error
	calls    int
}

func (b *scriptedBackend) Predict(_ context.Context, req *common.PredictRequest) (*common.PredictResponse, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	var in struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.Unmarshal(req.InputData, &in); err != nil {
		return nil, err
	}
	logits := make([][]float64, len(in.Tokens))
	for i, tok := range in.Tokens {
		row := make([]float64, len(b.labelSet))
		want := b.labels[tok]
		if want == "" {
			want = LabelOutside
		}
		for j, l := range b.labelSet {
			if l == want {
				row[j] = 10
			}
		}
		logits[i] = row
	}
	raw, err := json.Marshal(logits)
	if err != nil {
		return nil, err
	}
	return &common.PredictResponse{
		ModelName: req.ModelName,
		Outputs:   map[string][]byte{"logits": raw},
	}, nil
}

func (b *scriptedBackend) Healthy(context.Context) error { return nil }
func (b *scriptedBackend) Close() error                  { return nil }

func newTestRecognizer(t *testing.T, backend common.ModelBackend, cfg *Config) *Recognizer {
	t.Helper()
	r, err := NewRecognizer(backend, cfg, nil, nil)
	require.NoError(t, err)
	return r
}

func TestExtractMergesMultiTokenEntity(t *testing.T) {
	backend := &scriptedBackend{
		labelSet: DefaultConfig().LabelSet,
		labels: map[string]string{
			"type":     LabelBegin,
			"2":        LabelInside,
			"diabetes": LabelInside,
			"mellitus": LabelInside,
		},
	}
	r := newTestRecognizer(t, backend, nil)

	text := "Patient has type 2 diabetes mellitus."
	entities, err := r.Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "type 2 diabetes mellitus", entities[0].Text)
	assert.Equal(t, 12, entities[0].Start)
	assert.Equal(t, 36, entities[0].End)
	assert.Equal(t, "Disease", entities[0].Type)
	assert.InDelta(t, 0.9999, entities[0].Confidence, 1e-9)
}

func TestExtractSeparatesDistantEntities(t *testing.T) {
	backend := &scriptedBackend{
		labelSet: DefaultConfig().LabelSet,
		labels: map[string]string{
			"diabetes":     LabelBegin,
			"hypertension": LabelBegin,
		},
	}
	r := newTestRecognizer(t, backend, nil)

	entities, err := r.Extract(context.Background(), "diabetes noted. Later hypertension found.")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "diabetes", entities[0].Text)
	assert.Equal(t, "hypertension", entities[1].Text)
	assert.Less(t, entities[0].Start, entities[1].Start)
}

func TestExtractSlidingWindowsAgree(t *testing.T) {
	backend := &scriptedBackend{
		labelSet: DefaultConfig().LabelSet,
		labels: map[string]string{
			"pneumonia": LabelBegin,
		},
	}
	cfg := DefaultConfig()
	cfg.MaxWindowSize = 4
	cfg.Stride = 2
	r := newTestRecognizer(t, backend, cfg)

	// 9 tokens force several overlapping windows; the entity sits in the
	// overlap and must not be duplicated.
	entities, err := r.Extract(context.Background(), "chest film shows left lower lobe pneumonia with effusion")
	require.NoError(t, err)
	assert.Greater(t, backend.calls, 1)
	require.Len(t, entities, 1)
	assert.Equal(t, "pneumonia", entities[0].Text)
}

func TestExtractEmptyText(t *testing.T) {
	backend := &scriptedBackend{labelSet: DefaultConfig().LabelSet}
	r := newTestRecognizer(t, backend, nil)

	entities, err := r.Extract(context.Background(), "   \n ")
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.Zero(t, backend.calls, "no inference for blank text")
}

func TestExtractBackendFailure(t *testing.T) {
	backend := &scriptedBackend{
		labelSet: DefaultConfig().LabelSet,
		err:      common.ErrServingUnavailable,
	}
	r := newTestRecognizer(t, backend, nil)

	_, err := r.Extract(context.Background(), "patient has sepsis")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNERInferenceFailed))
}

func TestFinalizeThresholdAndTrim(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbThreshold = 0.5
	r := newTestRecognizer(t, &scriptedBackend{labelSet: cfg.LabelSet}, cfg)

	text := "asthma    attack"
	preds := []spanPrediction{
		{start: 0, end: 6, label: LabelBegin, score: 0.423456},   // below threshold
		{start: 6, end: 10, label: LabelBegin, score: 0.9},       // whitespace surface
		{start: 0, end: 100, label: LabelBegin, score: 0.9},      // out of bounds
		{start: 10, end: 16, label: LabelInside, score: 0.654321},
	}

	entities := r.finalize(text, preds)
	require.Len(t, entities, 1)
	assert.Equal(t, "attack", entities[0].Text)
	assert.Equal(t, 10, entities[0].Start)
	assert.Equal(t, 16, entities[0].End)
	assert.InDelta(t, 0.6543, entities[0].Confidence, 1e-9)
}

func TestNewRecognizerValidation(t *testing.T) {
	_, err := NewRecognizer(nil, nil, nil, nil)
	assert.Error(t, err)

	bad := DefaultConfig()
	bad.Stride = bad.MaxWindowSize
	_, err = NewRecognizer(&scriptedBackend{labelSet: bad.LabelSet}, bad, nil, nil)
	assert.Error(t, err)

	bad = DefaultConfig()
	bad.ProbThreshold = 1.5
	_, err = NewRecognizer(&scriptedBackend{labelSet: bad.LabelSet}, bad, nil, nil)
	assert.Error(t, err)
}

func TestConfigTimeoutDefault(t *testing.T) {
	assert.Equal(t, 30*time.Second, DefaultConfig().Timeout)
}
