// Package report orchestrates the processing pipeline: raw report text goes
// through disease recognition, lab extraction, summarization, and risk
// screening, and the resulting record is persisted, indexed, archived, and
// announced on the message bus. Every collaborator past input validation is
// best effort; a model or infrastructure failure degrades the record rather
// than failing the request.
package report

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	intel "github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// DiseaseExtractor is the NER pass.
type DiseaseExtractor interface {
	Extract(ctx context.Context, text string) ([]record.Entity, error)
}

// LabExtractor is the lab extraction pass. It degrades internally and never
// fails.
type LabExtractor interface {
	Extract(ctx context.Context, text string) []record.LabResult
}

// Summarizer produces the clinical summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string, diseases []record.Entity, labs []record.LabResult) (string, error)
}

// Screener evaluates a processed record.
type Screener interface {
	Screen(ctx context.Context, rec *record.MedicalRecord) record.ScreeningResult
}

// Invalidator drops cached screening verdicts when a record changes.
type Invalidator interface {
	Invalidate(ctx context.Context, recordID common.ID)
}

// Indexer mirrors records into the search cluster.
type Indexer interface {
	Index(ctx context.Context, rec *record.MedicalRecord) error
	Remove(ctx context.Context, id common.ID) error
	Search(ctx context.Context, query string, page common.Pagination) ([]common.ID, int64, error)
}

// ObjectStore archives the raw report text.
type ObjectStore interface {
	PutReport(ctx context.Context, id common.ID, filename string, text []byte) error
	RemoveReport(ctx context.Context, id common.ID) error
}

// Publisher emits domain events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event common.DomainEvent) error
}

// ProcessResult bundles the record with its screening verdict.
type ProcessResult struct {
	Record    *record.MedicalRecord   `json:"record"`
	Screening *record.ScreeningResult `json:"screening,omitempty"`
}

// Deps carries the service collaborators. Records, Diseases, and Labs are
// required; the rest may be nil and their step is skipped.
type Deps struct {
	Records     record.Repository
	Diseases    DiseaseExtractor
	Labs        LabExtractor
	Summarizer  Summarizer
	Screener    Screener
	Invalidator Invalidator
	Indexer     Indexer
	Store       ObjectStore
	Publisher   Publisher
	Logger      logging.Logger
	Metrics     intel.IntelligenceMetrics

	BatchConcurrency int
}

// Service is the report application service.
type Service struct {
	deps  Deps
	batch *intel.BatchProcessor[BatchInput, *ProcessResult]
}

// NewService validates the dependency set and builds the service.
func NewService(deps Deps) (*Service, error) {
	if deps.Records == nil {
		return nil, errors.New(errors.CodeInvalidParam, "report: record repository is required")
	}
	if deps.Diseases == nil {
		return nil, errors.New(errors.CodeInvalidParam, "report: disease extractor is required")
	}
	if deps.Labs == nil {
		return nil, errors.New(errors.CodeInvalidParam, "report: lab extractor is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	deps.Logger = deps.Logger.Named("report")
	if deps.Metrics == nil {
		deps.Metrics = intel.NewNoopMetrics()
	}
	if deps.BatchConcurrency < 1 {
		deps.BatchConcurrency = 4
	}
	return &Service{
		deps:  deps,
		batch: intel.NewBatchProcessor[BatchInput, *ProcessResult](intel.WithMaxConcurrency(deps.BatchConcurrency)),
	}, nil
}

// Process runs the full pipeline on one report. Only empty text is an
// error; every downstream failure degrades and is logged.
func (s *Service) Process(ctx context.Context, text, filename string) (*ProcessResult, error) {
	rec, err := record.NewMedicalRecord(text, filename)
	if err != nil {
		return nil, err
	}
	result := s.process(ctx, rec)
	return result, nil
}

// Reprocess re-runs the pipeline over a stored record's text, keeping its
// identity and upload time.
func (s *Service) Reprocess(ctx context.Context, id common.ID) (*ProcessResult, error) {
	rec, err := s.deps.Records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.Text) == "" {
		return nil, errors.New(errors.ErrCodeRecordReprocess, "report: stored record has no text")
	}
	rec.Diseases = []record.Entity{}
	rec.Labs = []record.LabResult{}
	rec.Summary = ""
	rec.RiskLevel = common.RiskLow
	if s.deps.Invalidator != nil {
		s.deps.Invalidator.Invalidate(ctx, rec.ID)
	}
	return s.process(ctx, rec), nil
}

// process runs extraction, summary, screening, and the persistence fan-out.
func (s *Service) process(ctx context.Context, rec *record.MedicalRecord) *ProcessResult {
	start := time.Now()

	var (
		diseases []record.Entity
		labs     []record.LabResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.deps.Diseases.Extract(gctx, rec.Text)
		if err != nil {
			s.deps.Logger.Warn("disease extraction degraded to empty", logging.Err(err))
			found = []record.Entity{}
		}
		diseases = found
		return nil
	})
	g.Go(func() error {
		labs = s.deps.Labs.Extract(gctx, rec.Text)
		return nil
	})
	_ = g.Wait()

	rec.Diseases = diseases
	rec.Labs = labs

	if s.deps.Summarizer != nil {
		summary, err := s.deps.Summarizer.Summarize(ctx, rec.Text, diseases, labs)
		if err != nil {
			s.deps.Logger.Warn("summary degraded to empty", logging.Err(err))
		}
		rec.Summary = summary
	}

	result := &ProcessResult{Record: rec}
	if s.deps.Screener != nil {
		verdict := s.deps.Screener.Screen(ctx, rec)
		rec.RiskLevel = verdict.RiskLevel
		result.Screening = &verdict
	}

	if err := s.deps.Records.Save(ctx, rec); err != nil {
		s.deps.Logger.Error("record persist failed",
			logging.String("record_id", string(rec.ID)),
			logging.Err(err))
	}
	s.fanOut(ctx, rec)

	s.deps.Logger.Info("report processed",
		logging.String("record_id", string(rec.ID)),
		logging.Int("diseases", len(rec.Diseases)),
		logging.Int("labs", len(rec.Labs)),
		logging.String("risk_level", string(rec.RiskLevel)),
		logging.Duration("elapsed", time.Since(start)))
	return result
}

// fanOut mirrors the record into the search cluster and object store and
// announces completion. All best effort.
func (s *Service) fanOut(ctx context.Context, rec *record.MedicalRecord) {
	if s.deps.Store != nil {
		if err := s.deps.Store.PutReport(ctx, rec.ID, rec.Filename, []byte(rec.Text)); err != nil {
			s.deps.Logger.Warn("report archive failed", logging.Err(err))
		}
	}
	if s.deps.Indexer != nil {
		if err := s.deps.Indexer.Index(ctx, rec); err != nil {
			s.deps.Logger.Warn("record index failed", logging.Err(err))
		}
	}
	if s.deps.Publisher != nil {
		event := record.NewReportProcessedEvent(rec)
		if err := s.deps.Publisher.Publish(ctx, record.EventReportProcessed, event); err != nil {
			s.deps.Logger.Warn("processed event publish failed", logging.Err(err))
		}
	}
}

// Submit queues a report for asynchronous processing by the worker.
func (s *Service) Submit(ctx context.Context, text, filename string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.ErrCodeRecordEmptyText, "report text must not be empty")
	}
	if s.deps.Publisher == nil {
		return "", errors.New(errors.ErrCodeExternalService, "report: async submission requires a message bus")
	}
	event := record.NewReportSubmittedEvent(text, filename)
	if err := s.deps.Publisher.Publish(ctx, record.EventReportSubmitted, event); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "report: publishing submission")
	}
	return event.EventID(), nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id common.ID) (*record.MedicalRecord, error) {
	return s.deps.Records.GetByID(ctx, id)
}

// List returns records newest first.
func (s *Service) List(ctx context.Context, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	return s.deps.Records.List(ctx, page)
}

// Search queries the search cluster, falling back to the database when the
// cluster is unavailable.
func (s *Service) Search(ctx context.Context, query string, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, errors.New(errors.CodeInvalidParam, "report: search query must not be empty")
	}
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	if s.deps.Indexer != nil {
		ids, total, err := s.deps.Indexer.Search(ctx, query, page)
		if err == nil {
			out := make([]*record.MedicalRecord, 0, len(ids))
			for _, id := range ids {
				rec, err := s.deps.Records.GetByID(ctx, id)
				if err != nil {
					if errors.IsNotFound(err) {
						continue
					}
					return nil, 0, err
				}
				out = append(out, rec)
			}
			return out, total, nil
		}
		s.deps.Logger.Warn("search cluster unavailable, falling back to database", logging.Err(err))
	}
	return s.deps.Records.SearchByText(ctx, query, page)
}

// Delete removes a record everywhere it was mirrored.
func (s *Service) Delete(ctx context.Context, id common.ID) error {
	if err := s.deps.Records.Delete(ctx, id); err != nil {
		return err
	}
	if s.deps.Indexer != nil {
		if err := s.deps.Indexer.Remove(ctx, id); err != nil {
			s.deps.Logger.Warn("index remove failed", logging.Err(err))
		}
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.RemoveReport(ctx, id); err != nil {
			s.deps.Logger.Warn("archive remove failed", logging.Err(err))
		}
	}
	if s.deps.Invalidator != nil {
		s.deps.Invalidator.Invalidate(ctx, id)
	}
	return nil
}

// Stats returns aggregate totals over the record store.
func (s *Service) Stats(ctx context.Context) (*record.Stats, error) {
	return s.deps.Records.Stats(ctx)
}
