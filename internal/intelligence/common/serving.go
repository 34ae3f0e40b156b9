package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
)

// httpBackend implements ModelBackend over the HTTP serving protocol:
//
//	POST {base}/v1/models/{model}:predict
//	request body:  {"inputs": <InputData>}
//	response body: {"outputs": {"name": <json>, ...}}
//
// The same endpoint shape serves both the token classifier and the sentence
// embedder; only the model name and payload schema differ.
type httpBackend struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
	closed  atomic.Bool
}

// NewHTTPBackend constructs a ModelBackend over HTTP. timeout bounds each
// inference call in addition to any context deadline.
func NewHTTPBackend(baseURL string, timeout time.Duration, logger logging.Logger) (ModelBackend, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("serving"),
	}, nil
}

type servingRequest struct {
	Inputs json.RawMessage `json:"inputs"`
}

type servingResponse struct {
	Outputs map[string]json.RawMessage `json:"outputs"`
	Error   string                     `json:"error,omitempty"`
}

func (b *httpBackend) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if b.closed.Load() {
		return nil, ErrClientClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(servingRequest{Inputs: req.InputData})
	if err != nil {
		return nil, fmt.Errorf("marshal serving request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", b.baseURL, req.ModelName)
	if req.ModelVersion != "" {
		url = fmt.Sprintf("%s/v1/models/%s/versions/%s:predict", b.baseURL, req.ModelName, req.ModelVersion)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build serving request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrServingUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read serving response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: model %q", ErrModelNotDeployed, req.ModelName)
	default:
		b.logger.Warn("serving returned non-200",
			logging.String("model", req.ModelName),
			logging.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrServingUnavailable, resp.StatusCode)
	}

	var sr servingResponse
	if err := json.Unmarshal(payload, &sr); err != nil {
		return nil, fmt.Errorf("decode serving response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrServingUnavailable, sr.Error)
	}

	outputs := make(map[string][]byte, len(sr.Outputs))
	for name, raw := range sr.Outputs {
		outputs[name] = []byte(raw)
	}
	return &PredictResponse{
		ModelName:       req.ModelName,
		Outputs:         outputs,
		InferenceTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (b *httpBackend) Healthy(ctx context.Context) error {
	if b.closed.Load() {
		return ErrClientClosed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServingUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrServingUnavailable, resp.StatusCode)
	}
	return nil
}

func (b *httpBackend) Close() error {
	b.closed.Store(true)
	b.client.CloseIdleConnections()
	return nil
}
