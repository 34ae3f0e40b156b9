// Package summarizer produces a short clinical summary of a report from its
// text and the entities the extraction passes found. The heavy lifting is an
// LLM completion; this package owns the prompt, the response parsing, and
// the plain-text fallback when the model ignores the JSON instruction.
package summarizer

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultMaxChars caps the report text placed in the prompt.
const DefaultMaxChars = 4000

const maxSummarySentences = 4

// summaryPattern pulls the expected JSON object out of a completion that may
// carry prose or markdown around it.
var summaryPattern = regexp.MustCompile(`(?s)(\{\s*"clinical_summary"\s*:\s*".*?"\s*\})`)

// sentenceSplit breaks prose into sentences for the fallback path.
var sentenceSplit = regexp.MustCompile(`[.?!]+\s+`)

// Summarizer turns a processed report into a few sentences of summary.
type Summarizer struct {
	generator Generator
	maxChars  int
	logger    logging.Logger
}

// New wires a Summarizer. maxChars below 1 falls back to DefaultMaxChars.
func New(generator Generator, maxChars int, logger logging.Logger) (*Summarizer, error) {
	if generator == nil {
		return nil, errors.New(errors.CodeInvalidParam, "summarizer: generator is required")
	}
	if maxChars < 1 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Summarizer{generator: generator, maxChars: maxChars, logger: logger.Named("summarizer")}, nil
}

// Summarize asks the model for a summary of the report. Generation failures
// return an error; an off-format completion degrades to its leading
// sentences, and an unusable one to the empty string.
func (s *Summarizer) Summarize(ctx context.Context, text string, diseases []record.Entity, labs []record.LabResult) (string, error) {
	completion, err := s.generator.Generate(ctx, s.buildPrompt(text, diseases, labs))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSummaryGenerationFailed, "summarizer: generation failed")
	}

	if summary, ok := parseSummary(completion); ok {
		return summary, nil
	}
	s.logger.Warn("summary completion off format, using sentence fallback",
		logging.Int("chars", len(completion)))
	return fallbackSummary(completion), nil
}

func (s *Summarizer) buildPrompt(text string, diseases []record.Entity, labs []record.LabResult) string {
	if len(text) > s.maxChars {
		text = text[:s.maxChars]
	}

	var b strings.Builder
	b.WriteString("You are a clinical documentation assistant. Summarize the medical report below.\n\n")

	b.WriteString("Identified conditions:\n")
	if len(diseases) == 0 {
		b.WriteString("- none\n")
	}
	for _, d := range diseases {
		b.WriteString("- ")
		b.WriteString(d.Text)
		b.WriteString(" (")
		b.WriteString(d.Type)
		b.WriteString(")\n")
	}

	b.WriteString("\nLaboratory results:\n")
	if len(labs) == 0 {
		b.WriteString("- none\n")
	}
	for _, l := range labs {
		value := l.Value
		if value == "" {
			value = "-"
		}
		b.WriteString("- ")
		b.WriteString(l.Name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString("\nReport text:\n")
	b.WriteString(text)
	b.WriteString("\n\nWrite a clinical summary of at most 4 sentences covering the key findings.\n")
	b.WriteString("Respond with JSON only, exactly: {\"clinical_summary\": \"...\"}\n")
	return b.String()
}

// parseSummary extracts the clinical_summary field from the completion.
func parseSummary(completion string) (string, bool) {
	cleaned := strings.TrimSpace(completion)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	m := summaryPattern.FindString(cleaned)
	if m == "" {
		return "", false
	}
	var payload struct {
		ClinicalSummary string `json:"clinical_summary"`
	}
	if err := json.Unmarshal([]byte(m), &payload); err != nil {
		return "", false
	}
	return strings.TrimSpace(payload.ClinicalSummary), true
}

// fallbackSummary keeps the first sentences of a prose completion.
func fallbackSummary(completion string) string {
	text := strings.TrimSpace(completion)
	if text == "" {
		return ""
	}
	locs := sentenceSplit.FindAllStringIndex(text, -1)
	if len(locs) < maxSummarySentences {
		return text
	}
	return strings.TrimSpace(text[:locs[maxSummarySentences-1][1]])
}
