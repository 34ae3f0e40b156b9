package labextract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Generator produces a completion for a prompt. The Gemini client in the
// infrastructure layer implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ragConfidence is assigned to every LLM-extracted result. The model gives
// no usable per-item score, so a single calibrated value stands in.
const ragConfidence = 0.9

// jsonArrayPattern pulls the first JSON array of objects out of a completion
// that may carry prose around it.
var jsonArrayPattern = regexp.MustCompile(`(?s)(\[\s*\{.*\}\s*\])`)

// RAGExtractor grounds an LLM on retrieved knowledge-base passages and asks
// it for the lab results in a report.
type RAGExtractor struct {
	embedder  Embedder
	index     VectorIndex
	generator Generator
	topK      int
	logger    logging.Logger
}

// NewRAGExtractor wires the retrieval-augmented strategy. All three
// collaborators are required; topK below 1 falls back to 10.
func NewRAGExtractor(embedder Embedder, index VectorIndex, generator Generator, topK int, logger logging.Logger) (*RAGExtractor, error) {
	if embedder == nil || index == nil || generator == nil {
		return nil, errors.New(errors.CodeInvalidParam, "labextract: embedder, index, and generator are required")
	}
	if topK < 1 {
		topK = 10
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RAGExtractor{
		embedder:  embedder,
		index:     index,
		generator: generator,
		topK:      topK,
		logger:    logger.Named("labextract.rag"),
	}, nil
}

// Extract retrieves the relevant test descriptions, prompts the model, and
// parses its JSON answer. Retrieval and generation failures are returned as
// errors; a malformed completion degrades to an empty result.
func (e *RAGExtractor) Extract(ctx context.Context, text string) ([]record.LabResult, error) {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLabEmbeddingFailed, "labextract: embedding report")
	}
	hits, err := e.index.Search(ctx, vec, e.topK)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLabRetrievalFailed, "labextract: retrieving context")
	}

	completion, err := e.generator.Generate(ctx, buildPrompt(text, hits))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLabGenerationFailed, "labextract: generating extraction")
	}

	items := parseCompletion(completion)
	if items == nil {
		e.logger.Warn("unparseable extraction completion", logging.Int("chars", len(completion)))
		return []record.LabResult{}, nil
	}

	results := make([]record.LabResult, 0, len(items))
	seen := make(map[string]struct{})
	for _, it := range items {
		name := strings.TrimSpace(it.Test)
		value := strings.TrimSpace(it.value())
		if name == "" || value == "" {
			continue
		}
		r := record.LabResult{
			Name:        name,
			Value:       value,
			Unit:        it.Unit,
			NormalRange: it.NormalRange,
			Confidence:  ragConfidence,
			Source:      record.SourceRAG,
		}
		if !ValidateCandidate(r.Name, r.Value) {
			continue
		}
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		results = append(results, r)
	}
	return results, nil
}

func buildPrompt(text string, hits []SearchHit) string {
	var b strings.Builder
	b.WriteString("You are a clinical laboratory data extraction system.\n\n")
	b.WriteString("Known laboratory tests:\n")
	for _, h := range hits {
		b.WriteString("- ")
		b.WriteString(h.Doc.Text)
		b.WriteByte('\n')
	}
	b.WriteString("\nMedical report:\n")
	b.WriteString(text)
	b.WriteString("\n\nExtract every laboratory test result stated in the report.\n")
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("1. Extract only results explicitly present in the report text.\n")
	b.WriteString("2. Never invent values or infer results from diagnoses.\n")
	b.WriteString("3. Respond with a JSON array only, no prose and no markdown.\n")
	b.WriteString("4. Each element must be an object with keys \"test\", \"value\", \"unit\", \"normal_range\".\n")
	b.WriteString("5. Use an empty string for unknown unit or normal_range.\n")
	return b.String()
}

type ragItem struct {
	Test        string          `json:"test"`
	Value       json.RawMessage `json:"value"`
	Unit        string          `json:"unit"`
	NormalRange string          `json:"normal_range"`
}

// value renders the item value as a plain string whether the model sent a
// JSON string or a bare number.
func (it ragItem) value() string {
	var s string
	if err := json.Unmarshal(it.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(it.Value))
}

// parseCompletion strips markdown fences, locates the first JSON array of
// objects, and decodes it. Any failure yields nil.
func parseCompletion(completion string) []ragItem {
	cleaned := strings.TrimSpace(completion)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	m := jsonArrayPattern.FindString(cleaned)
	if m == "" || !strings.HasPrefix(m, "[") {
		return nil
	}
	var items []ragItem
	if err := json.Unmarshal([]byte(m), &items); err != nil {
		return nil
	}
	return items
}
