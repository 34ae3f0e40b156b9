package analytics

import (
	"context"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Query bounds.
const (
	defaultTopN      = 10
	maxTopN          = 100
	defaultTrendDays = 30
	maxTrendDays     = 90
)

// Summary combines store totals with the risk-level distribution.
type Summary struct {
	Stats            record.Stats               `json:"stats"`
	RiskDistribution map[common.RiskLevel]int64 `json:"risk_distribution"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// Service answers analytics queries from the record repository.
type Service struct {
	repo      record.Repository
	threshold float64
	window    int
	logger    logging.Logger
}

// NewService wires the analytics service. threshold and window tune outbreak
// detection; non-positive values take the defaults.
func NewService(repo record.Repository, threshold float64, window int, logger logging.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInvalidParam, "analytics: record repository is required")
	}
	if threshold <= 0 {
		threshold = DefaultOutbreakThreshold
	}
	if window < 1 {
		window = DefaultOutbreakWindow
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{repo: repo, threshold: threshold, window: window, logger: logger.Named("analytics")}, nil
}

// Summary returns store totals and the risk distribution.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	dist, err := s.repo.RiskDistribution(ctx)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		dist = map[common.RiskLevel]int64{}
	}
	return &Summary{
		Stats:            *stats,
		RiskDistribution: dist,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// TopDiseases returns the most frequent disease mentions. limit outside
// [1, 100] falls back to 10.
func (s *Service) TopDiseases(ctx context.Context, limit int) ([]record.FrequencyCount, error) {
	return s.repo.TopDiseases(ctx, clampTopN(limit))
}

// TopLabs returns the most frequent lab test names.
func (s *Service) TopLabs(ctx context.Context, limit int) ([]record.FrequencyCount, error) {
	return s.repo.TopLabs(ctx, clampTopN(limit))
}

// UploadTrend returns per-day record counts for the trailing days. days
// outside [1, 90] falls back to 30.
func (s *Service) UploadTrend(ctx context.Context, days int) ([]record.TrendPoint, error) {
	if days < 1 || days > maxTrendDays {
		days = defaultTrendDays
	}
	return s.repo.UploadTrend(ctx, days)
}

// Outbreaks runs detection over the configured trailing window.
func (s *Service) Outbreaks(ctx context.Context) (*OutbreakReport, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -s.window)
	counts, err := s.repo.DailyDiseaseCounts(ctx, from, now)
	if err != nil {
		return nil, err
	}
	report := DetectOutbreaks(counts, s.threshold, s.window)
	if len(report.Alerts) > 0 {
		s.logger.Info("outbreak alerts raised",
			logging.Int("alerts", len(report.Alerts)),
			logging.String("top_disease", report.Alerts[0].Disease))
	}
	return &report, nil
}

func clampTopN(limit int) int {
	if limit < 1 || limit > maxTopN {
		return defaultTopN
	}
	return limit
}
