package common

import (
	"context"
	"fmt"
)

// ModelEmbedder turns text into a dense vector by calling an externally
// served sentence-embedding model. It satisfies the Embedder interfaces the
// extraction packages declare.
type ModelEmbedder struct {
	backend   ModelBackend
	modelName string
	dim       int
}

// NewModelEmbedder wires an embedder against backend. dim is the expected
// vector dimension; responses of any other length are rejected.
func NewModelEmbedder(backend ModelBackend, modelName string, dim int) (*ModelEmbedder, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrInvalidInput)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: model name is required", ErrInvalidInput)
	}
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidInput, dim)
	}
	return &ModelEmbedder{backend: backend, modelName: modelName, dim: dim}, nil
}

// Dim returns the embedding dimension.
func (e *ModelEmbedder) Dim() int { return e.dim }

// Embed returns the embedding vector for text.
func (e *ModelEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	input, err := EncodeJSON(map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	resp, err := e.backend.Predict(ctx, &PredictRequest{
		ModelName: e.modelName,
		InputData: input,
		Metadata:  map[string]string{"task": "embedding"},
	})
	if err != nil {
		return nil, err
	}
	raw, err := resp.Output("embedding")
	if err != nil {
		return nil, err
	}
	vec, err := DecodeFloat32Vector(raw)
	if err != nil {
		return nil, err
	}
	if len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension %d, want %d", len(vec), e.dim)
	}
	return vec, nil
}
