package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// statsRepo stubs the slice of record.Repository analytics touches.
type statsRepo struct {
	record.Repository

	stats      *record.Stats
	dist       map[common.RiskLevel]int64
	top        []record.FrequencyCount
	trend      []record.TrendPoint
	daily      []record.DailyCount
	topLimit   int
	trendDays  int
	dailyFrom  time.Time
	dailyTo    time.Time
	statsErr   error
	dailyErr   error
}

func (r *statsRepo) Stats(context.Context) (*record.Stats, error) {
	if r.statsErr != nil {
		return nil, r.statsErr
	}
	return r.stats, nil
}

func (r *statsRepo) RiskDistribution(context.Context) (map[common.RiskLevel]int64, error) {
	return r.dist, nil
}

func (r *statsRepo) TopDiseases(_ context.Context, limit int) ([]record.FrequencyCount, error) {
	r.topLimit = limit
	return r.top, nil
}

func (r *statsRepo) TopLabs(_ context.Context, limit int) ([]record.FrequencyCount, error) {
	r.topLimit = limit
	return r.top, nil
}

func (r *statsRepo) UploadTrend(_ context.Context, days int) ([]record.TrendPoint, error) {
	r.trendDays = days
	return r.trend, nil
}

func (r *statsRepo) DailyDiseaseCounts(_ context.Context, from, to time.Time) ([]record.DailyCount, error) {
	r.dailyFrom, r.dailyTo = from, to
	if r.dailyErr != nil {
		return nil, r.dailyErr
	}
	return r.daily, nil
}

func newAnalytics(t *testing.T, repo *statsRepo) *Service {
	t.Helper()
	svc, err := NewService(repo, 2.0, 14, nil)
	require.NoError(t, err)
	return svc
}

func TestSummaryCombinesStatsAndDistribution(t *testing.T) {
	repo := &statsRepo{
		stats: &record.Stats{TotalRecords: 42, TotalDiseases: 120},
		dist:  map[common.RiskLevel]int64{common.RiskHigh: 5, common.RiskLow: 37},
	}
	svc := newAnalytics(t, repo)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), sum.Stats.TotalRecords)
	assert.Equal(t, int64(5), sum.RiskDistribution[common.RiskHigh])
	assert.False(t, sum.GeneratedAt.IsZero())
}

func TestSummaryPropagatesRepoError(t *testing.T) {
	repo := &statsRepo{statsErr: errors.New(errors.CodeDatabaseError, "db down")}
	svc := newAnalytics(t, repo)

	_, err := svc.Summary(context.Background())
	assert.Error(t, err)
}

func TestTopNClamping(t *testing.T) {
	repo := &statsRepo{top: []record.FrequencyCount{{Name: "influenza", Count: 9}}}
	svc := newAnalytics(t, repo)

	_, err := svc.TopDiseases(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTopN, repo.topLimit)

	_, err = svc.TopDiseases(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, defaultTopN, repo.topLimit)

	_, err = svc.TopLabs(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, 25, repo.topLimit)
}

func TestUploadTrendClamping(t *testing.T) {
	repo := &statsRepo{}
	svc := newAnalytics(t, repo)

	_, err := svc.UploadTrend(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTrendDays, repo.trendDays)

	_, err = svc.UploadTrend(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, repo.trendDays)
}

func TestOutbreaksQueriesTrailingWindow(t *testing.T) {
	repo := &statsRepo{daily: series("influenza", 2, 3, 9)}
	svc := newAnalytics(t, repo)

	report, err := svc.Outbreaks(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, "influenza", report.Alerts[0].Disease)

	window := repo.dailyTo.Sub(repo.dailyFrom)
	assert.InDelta(t, float64(14*24*time.Hour), float64(window), float64(time.Minute))
}

func TestOutbreaksPropagatesRepoError(t *testing.T) {
	repo := &statsRepo{dailyErr: errors.New(errors.CodeDatabaseError, "db down")}
	svc := newAnalytics(t, repo)

	_, err := svc.Outbreaks(context.Background())
	assert.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil, 2.0, 14, nil)
	assert.Error(t, err)

	svc, err := NewService(&statsRepo{}, 0, 0, nil)
	require.NoError(t, err)
	assert.InDelta(t, DefaultOutbreakThreshold, svc.threshold, 1e-9)
	assert.Equal(t, DefaultOutbreakWindow, svc.window)
}
