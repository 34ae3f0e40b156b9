// Package genai wraps the Gemini API behind the Generator interfaces the
// intelligence packages declare.
package genai

import (
	"context"
	"strings"

	gen "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Client drives one Gemini generative model.
type Client struct {
	client *gen.Client
	model  string
	logger logging.Logger
}

// NewClient connects to the Gemini API. apiKey and model are required.
func NewClient(ctx context.Context, apiKey, model string, logger logging.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New(errors.CodeInvalidParam, "genai: api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New(errors.CodeInvalidParam, "genai: model name is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c, err := gen.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "genai: connecting to gemini")
	}
	return &Client{client: c, model: model, logger: logger.Named("genai")}, nil
}

// Generate returns the model's completion for prompt. Candidates without a
// text part count as a bad response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, gen.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeModelInference, "genai: generate content")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New(errors.ErrCodeModelBadResponse, "genai: empty response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(gen.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errors.New(errors.ErrCodeModelBadResponse, "genai: candidate carries no text part")
	}
	return b.String(), nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
