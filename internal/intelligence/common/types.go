// Package common carries the shared plumbing of the intelligence layer: the
// model-serving backend abstraction, payload codecs, batch processing, and
// metrics. Every model-facing package (diseasener, labextract, summarizer)
// talks to external model infrastructure exclusively through these types.
package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrServingUnavailable = errors.New("serving unavailable")
	ErrModelNotDeployed   = errors.New("model not deployed")
	ErrInferenceTimeout   = errors.New("inference timeout")
	ErrClientClosed       = errors.New("client closed")
)

// ModelBackend defines the interface for invoking externally served models
// (the NER token classifier and the sentence embedder). Implementations must
// be safe for concurrent use.
type ModelBackend interface {
	Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error)
	Healthy(ctx context.Context) error
	Close() error
}

// PredictRequest carries the input payload for model inference. InputData is
// an opaque JSON document whose shape is agreed between the caller and the
// served model.
type PredictRequest struct {
	ModelName    string            `json:"model_name"`
	ModelVersion string            `json:"model_version,omitempty"`
	InputData    []byte            `json:"input_data"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the request is well formed.
func (r *PredictRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidInput)
	}
	if r.ModelName == "" {
		return fmt.Errorf("%w: model_name is required", ErrInvalidInput)
	}
	if len(r.InputData) == 0 {
		return fmt.Errorf("%w: input_data is required", ErrInvalidInput)
	}
	return nil
}

// PredictResponse carries the raw named outputs from model inference.
type PredictResponse struct {
	ModelName       string            `json:"model_name"`
	ModelVersion    string            `json:"model_version,omitempty"`
	Outputs         map[string][]byte `json:"outputs"`
	InferenceTimeMs int64             `json:"inference_time_ms"`
}

// Output returns the named output or ErrInvalidInput when absent.
func (r *PredictResponse) Output(name string) ([]byte, error) {
	out, ok := r.Outputs[name]
	if !ok {
		return nil, fmt.Errorf("%w: output %q missing from response", ErrInvalidInput, name)
	}
	return out, nil
}

// EncodeJSON marshals v for use as PredictRequest.InputData.
func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeFloat32Vector decodes a JSON array of numbers into a []float32.
func DecodeFloat32Vector(data []byte) ([]float32, error) {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

// DecodeFloat64Matrix decodes a JSON 2-D array of numbers.
func DecodeFloat64Matrix(data []byte) ([][]float64, error) {
	var mat [][]float64
	if err := json.Unmarshal(data, &mat); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return mat, nil
}
