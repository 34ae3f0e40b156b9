package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) ModelBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b, err := NewHTTPBackend(srv.URL, 5*time.Second, logging.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHTTPBackendPredict(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models/disease-ner:predict" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req servingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"outputs": map[string]any{"predictions": []int{1, 2, 3}},
		})
	})

	resp, err := b.Predict(context.Background(), &PredictRequest{
		ModelName: "disease-ner",
		InputData: []byte(`{"text":"hello"}`),
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	out, err := resp.Output("predictions")
	if err != nil {
		t.Fatal(err)
	}
	var preds []int
	if err := json.Unmarshal(out, &preds); err != nil || len(preds) != 3 {
		t.Fatalf("predictions = %s, err = %v", out, err)
	}
}

func TestHTTPBackendValidatesRequest(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := b.Predict(context.Background(), &PredictRequest{ModelName: ""}); err == nil {
		t.Fatal("empty model name must fail validation")
	}
	if _, err := b.Predict(context.Background(), &PredictRequest{ModelName: "m"}); err == nil {
		t.Fatal("empty input data must fail validation")
	}
}

func TestHTTPBackendModelNotDeployed(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := b.Predict(context.Background(), &PredictRequest{
		ModelName: "ghost", InputData: []byte(`{}`),
	})
	if err == nil || !contains(err.Error(), "model not deployed") {
		t.Fatalf("expected ErrModelNotDeployed, got %v", err)
	}
}

func TestHTTPBackendServerError(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := b.Predict(context.Background(), &PredictRequest{
		ModelName: "m", InputData: []byte(`{}`),
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestHTTPBackendErrorField(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "OOM"})
	})
	_, err := b.Predict(context.Background(), &PredictRequest{
		ModelName: "m", InputData: []byte(`{}`),
	})
	if err == nil || !contains(err.Error(), "OOM") {
		t.Fatalf("expected serving error surfaced, got %v", err)
	}
}

func TestHTTPBackendClosed(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Predict(context.Background(), &PredictRequest{
		ModelName: "m", InputData: []byte(`{}`),
	}); err != ErrClientClosed {
		t.Fatalf("expected ErrClientClosed, got %v", err)
	}
	if err := b.Healthy(context.Background()); err != ErrClientClosed {
		t.Fatalf("expected ErrClientClosed, got %v", err)
	}
}

func TestHTTPBackendHealthy(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	if err := b.Healthy(context.Background()); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
}

func TestNewHTTPBackendRequiresURL(t *testing.T) {
	if _, err := NewHTTPBackend("", time.Second, nil); err == nil {
		t.Fatal("empty base URL must be rejected")
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
