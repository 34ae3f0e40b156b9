package screening

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	types "github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Cache is the slice of the redis cache this service needs. A miss is
// (nil, false, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DefaultCacheTTL bounds how long a cached screening verdict is served
// before re-evaluation.
const DefaultCacheTTL = 15 * time.Minute

const cacheKeyPrefix = "screening:"

// Service wraps the rule engine with persistence and caching.
type Service struct {
	engine     *Engine
	records    record.Repository
	screenings record.ScreeningRepository
	cache      Cache
	cacheTTL   time.Duration
	logger     logging.Logger
	metrics    common.IntelligenceMetrics

	// group collapses concurrent verdict lookups for the same record so a
	// cache miss triggers one evaluation, not one per caller.
	group singleflight.Group
}

// NewService wires the screening service. engine and records are required;
// screenings and cache may be nil, disabling persistence and caching.
func NewService(engine *Engine, records record.Repository, screenings record.ScreeningRepository, cache Cache, cacheTTL time.Duration, logger logging.Logger, metrics common.IntelligenceMetrics) (*Service, error) {
	if engine == nil {
		return nil, errors.New(errors.CodeInvalidParam, "screening: engine is required")
	}
	if records == nil {
		return nil, errors.New(errors.CodeInvalidParam, "screening: record repository is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopMetrics()
	}
	return &Service{
		engine:     engine,
		records:    records,
		screenings: screenings,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("screening"),
		metrics:    metrics,
	}, nil
}

// Rules returns the active rule set.
func (s *Service) Rules() []Rule {
	return s.engine.Rules()
}

// Screen evaluates a record in memory, persists the verdict best effort, and
// returns it. The report pipeline calls this for every processed record.
func (s *Service) Screen(ctx context.Context, rec *record.MedicalRecord) record.ScreeningResult {
	start := time.Now()
	result := s.engine.Evaluate(rec)
	s.metrics.RecordRiskAssessment(ctx, string(result.RiskLevel), float64(time.Since(start).Milliseconds()))

	s.persist(ctx, &result)
	s.cacheResult(ctx, &result)
	return result
}

// Analyze loads the record and evaluates it, serving a cached verdict when
// one is fresh.
func (s *Service) Analyze(ctx context.Context, recordID types.ID) (*record.ScreeningResult, error) {
	if cached, ok := s.cachedResult(ctx, recordID); ok {
		return cached, nil
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	result := s.Screen(ctx, rec)
	return &result, nil
}

// Result returns the stored verdict for a record, falling back to a fresh
// evaluation when none was persisted.
func (s *Service) Result(ctx context.Context, recordID types.ID) (*record.ScreeningResult, error) {
	if cached, ok := s.cachedResult(ctx, recordID); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(string(recordID), func() (interface{}, error) {
		if cached, ok := s.cachedResult(ctx, recordID); ok {
			return cached, nil
		}
		if s.screenings != nil {
			result, err := s.screenings.GetResult(ctx, recordID)
			if err == nil {
				s.cacheResult(ctx, result)
				return result, nil
			}
			if !errors.IsNotFound(err) {
				return nil, err
			}
		}
		return s.Analyze(ctx, recordID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*record.ScreeningResult), nil
}

// HighRisk lists records carrying a HIGH risk level, newest first.
func (s *Service) HighRisk(ctx context.Context, page types.Pagination) ([]*record.MedicalRecord, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	return s.records.ListByRiskLevel(ctx, types.RiskHigh, page)
}

// Invalidate drops the cached and stored verdict for a record. Called when
// the record itself is deleted or reprocessed.
func (s *Service) Invalidate(ctx context.Context, recordID types.ID) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKeyPrefix+string(recordID)); err != nil {
			s.logger.Warn("screening cache delete failed", logging.Err(err))
		}
	}
	if s.screenings != nil {
		if err := s.screenings.DeleteResult(ctx, recordID); err != nil {
			s.logger.Warn("screening result delete failed", logging.Err(err))
		}
	}
}

func (s *Service) persist(ctx context.Context, result *record.ScreeningResult) {
	if s.screenings == nil {
		return
	}
	if err := s.screenings.SaveResult(ctx, result); err != nil {
		s.logger.Warn("screening result persist failed",
			logging.String("record_id", string(result.RecordID)),
			logging.Err(err))
	}
}

func (s *Service) cacheResult(ctx context.Context, result *record.ScreeningResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+string(result.RecordID), raw, s.cacheTTL); err != nil {
		s.logger.Warn("screening cache set failed", logging.Err(err))
	}
}

func (s *Service) cachedResult(ctx context.Context, recordID types.ID) (*record.ScreeningResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, cacheKeyPrefix+string(recordID))
	if err != nil {
		s.logger.Warn("screening cache get failed", logging.Err(err))
		s.metrics.RecordCacheAccess(ctx, "screening", false)
		return nil, false
	}
	s.metrics.RecordCacheAccess(ctx, "screening", ok)
	if !ok {
		return nil, false
	}
	var result record.ScreeningResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false
	}
	return &result, true
}
