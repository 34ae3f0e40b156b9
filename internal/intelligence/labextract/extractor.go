package labextract

import (
	"context"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
)

// Extractor runs the regex strategy and, when configured, the RAG strategy,
// then reconciles their results. Regex results take precedence: they carry
// real offsets, and a deterministic match outranks a generated one for the
// same (name, value). A RAG failure degrades to regex-only output and never
// fails the extraction.
type Extractor struct {
	regex   *RegexExtractor
	rag     *RAGExtractor
	logger  logging.Logger
	metrics common.IntelligenceMetrics
}

// NewExtractor wires the combined extractor. rag may be nil to run
// regex-only.
func NewExtractor(regex *RegexExtractor, rag *RAGExtractor, logger logging.Logger, metrics common.IntelligenceMetrics) *Extractor {
	if regex == nil {
		regex = NewRegexExtractor()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopMetrics()
	}
	return &Extractor{
		regex:   regex,
		rag:     rag,
		logger:  logger.Named("labextract"),
		metrics: metrics,
	}
}

// Extract returns the reconciled lab results for text.
func (e *Extractor) Extract(ctx context.Context, text string) []record.LabResult {
	start := time.Now()
	fromRegex := e.regex.Extract(text)
	e.metrics.RecordExtraction(ctx, "regex", len(fromRegex), float64(time.Since(start).Milliseconds()))

	var fromRAG []record.LabResult
	if e.rag != nil {
		ragStart := time.Now()
		results, err := e.rag.Extract(ctx, text)
		if err != nil {
			e.logger.Warn("rag extraction failed, keeping regex results", logging.Err(err))
		} else {
			fromRAG = results
		}
		e.metrics.RecordExtraction(ctx, "rag", len(fromRAG), float64(time.Since(ragStart).Milliseconds()))
	}

	return reconcile(fromRegex, fromRAG)
}

// reconcile keeps all regex results in match order and appends the RAG
// results that name a (test, value) pair the regex pass missed.
func reconcile(fromRegex, fromRAG []record.LabResult) []record.LabResult {
	out := make([]record.LabResult, 0, len(fromRegex)+len(fromRAG))
	seen := make(map[string]struct{}, len(fromRegex))
	for _, r := range fromRegex {
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	for _, r := range fromRAG {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}
