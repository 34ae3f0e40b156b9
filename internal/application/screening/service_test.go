package screening

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[common.ID]*record.MedicalRecord
	getErr  error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[common.ID]*record.MedicalRecord)}
}

func (f *fakeRecordRepo) Save(_ context.Context, rec *record.MedicalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id common.ID) (*record.MedicalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRecordNotFound, "record not found")
	}
	return rec, nil
}

func (f *fakeRecordRepo) List(context.Context, common.Pagination) ([]*record.MedicalRecord, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) SearchByText(context.Context, string, common.Pagination) ([]*record.MedicalRecord, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id common.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeRecordRepo) Stats(context.Context) (*record.Stats, error) { return &record.Stats{}, nil }

func (f *fakeRecordRepo) TopDiseases(context.Context, int) ([]record.FrequencyCount, error) {
	return nil, nil
}

func (f *fakeRecordRepo) TopLabs(context.Context, int) ([]record.FrequencyCount, error) {
	return nil, nil
}

func (f *fakeRecordRepo) UploadTrend(context.Context, int) ([]record.TrendPoint, error) {
	return nil, nil
}

func (f *fakeRecordRepo) DailyDiseaseCounts(context.Context, time.Time, time.Time) ([]record.DailyCount, error) {
	return nil, nil
}

func (f *fakeRecordRepo) ListByRiskLevel(_ context.Context, level common.RiskLevel, _ common.Pagination) ([]*record.MedicalRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*record.MedicalRecord
	for _, rec := range f.records {
		if rec.RiskLevel == level {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRecordRepo) RiskDistribution(context.Context) (map[common.RiskLevel]int64, error) {
	return nil, nil
}

type fakeScreeningRepo struct {
	mu      sync.Mutex
	results map[common.ID]*record.ScreeningResult
	saveErr error
}

func newFakeScreeningRepo() *fakeScreeningRepo {
	return &fakeScreeningRepo{results: make(map[common.ID]*record.ScreeningResult)}
}

func (f *fakeScreeningRepo) SaveResult(_ context.Context, result *record.ScreeningResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results[result.RecordID] = result
	return nil
}

func (f *fakeScreeningRepo) GetResult(_ context.Context, recordID common.ID) (*record.ScreeningResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[recordID]
	if !ok {
		return nil, errors.New(errors.ErrCodeScreeningNotFound, "no verdict for record")
	}
	return result, nil
}

func (f *fakeScreeningRepo) DeleteResult(_ context.Context, recordID common.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.results, recordID)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func newServiceUnderTest(t *testing.T) (*Service, *fakeRecordRepo, *fakeScreeningRepo, *fakeCache) {
	t.Helper()
	engine, err := NewEngine(nil)
	require.NoError(t, err)
	records := newFakeRecordRepo()
	screenings := newFakeScreeningRepo()
	cache := newFakeCache()
	svc, err := NewService(engine, records, screenings, cache, time.Minute, nil, nil)
	require.NoError(t, err)
	return svc, records, screenings, cache
}

func highRiskRecord(t *testing.T) *record.MedicalRecord {
	rec := newRecord(t, []string{"diabetes mellitus"}, []record.LabResult{
		{Name: "Glucose", Value: "300"},
	})
	return rec
}

func TestScreenPersistsAndCaches(t *testing.T) {
	svc, _, screenings, cache := newServiceUnderTest(t)
	rec := highRiskRecord(t)

	result := svc.Screen(context.Background(), rec)

	assert.Equal(t, common.RiskHigh, result.RiskLevel)
	stored, err := screenings.GetResult(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, common.RiskHigh, stored.RiskLevel)
	assert.Len(t, cache.entries, 1)
}

func TestScreenSurvivesPersistFailure(t *testing.T) {
	svc, _, screenings, _ := newServiceUnderTest(t)
	screenings.saveErr = errors.New(errors.CodeDatabaseError, "db down")

	result := svc.Screen(context.Background(), highRiskRecord(t))

	assert.Equal(t, common.RiskHigh, result.RiskLevel)
}

func TestAnalyzeLoadsAndEvaluates(t *testing.T) {
	svc, records, _, _ := newServiceUnderTest(t)
	rec := highRiskRecord(t)
	require.NoError(t, records.Save(context.Background(), rec))

	result, err := svc.Analyze(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, common.RiskHigh, result.RiskLevel)
	assert.Equal(t, rec.ID, result.RecordID)
}

func TestAnalyzeUnknownRecord(t *testing.T) {
	svc, _, _, _ := newServiceUnderTest(t)

	_, err := svc.Analyze(context.Background(), common.NewID())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAnalyzeServesCachedVerdict(t *testing.T) {
	svc, records, _, cache := newServiceUnderTest(t)
	rec := highRiskRecord(t)
	require.NoError(t, records.Save(context.Background(), rec))

	first, err := svc.Analyze(context.Background(), rec.ID)
	require.NoError(t, err)

	// Second call must come from cache, not a re-evaluation.
	second, err := svc.Analyze(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.GreaterOrEqual(t, cache.hits, 1)
}

func TestResultFallsBackToStoredThenFresh(t *testing.T) {
	svc, records, screenings, cache := newServiceUnderTest(t)
	rec := highRiskRecord(t)
	require.NoError(t, records.Save(context.Background(), rec))

	// Nothing stored yet: Result computes a fresh verdict.
	result, err := svc.Result(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, common.RiskHigh, result.RiskLevel)

	// Drop the cache; the stored verdict serves the next call.
	for k := range cache.entries {
		require.NoError(t, cache.Delete(context.Background(), k))
	}
	stored, err := svc.Result(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, common.RiskHigh, stored.RiskLevel)
	assert.NotNil(t, screenings.results[rec.ID])
}

func TestInvalidateDropsCacheAndStore(t *testing.T) {
	svc, _, screenings, cache := newServiceUnderTest(t)
	rec := highRiskRecord(t)
	svc.Screen(context.Background(), rec)

	svc.Invalidate(context.Background(), rec.ID)

	assert.Empty(t, cache.entries)
	_, err := screenings.GetResult(context.Background(), rec.ID)
	assert.Error(t, err)
}

func TestHighRiskListsOnlyHigh(t *testing.T) {
	svc, records, _, _ := newServiceUnderTest(t)

	high := highRiskRecord(t)
	high.RiskLevel = common.RiskHigh
	low := newRecord(t, []string{"allergies"}, nil)
	require.NoError(t, records.Save(context.Background(), high))
	require.NoError(t, records.Save(context.Background(), low))

	out, total, err := svc.HighRisk(context.Background(), common.Pagination{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, high.ID, out[0].ID)
}

func TestHighRiskValidatesPagination(t *testing.T) {
	svc, _, _, _ := newServiceUnderTest(t)

	_, _, err := svc.HighRisk(context.Background(), common.Pagination{Page: 0, PageSize: 20})
	assert.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	engine, err := NewEngine(nil)
	require.NoError(t, err)

	_, err = NewService(nil, newFakeRecordRepo(), nil, nil, 0, nil, nil)
	assert.Error(t, err)
	_, err = NewService(engine, nil, nil, nil, 0, nil, nil)
	assert.Error(t, err)

	svc, err := NewService(engine, newFakeRecordRepo(), nil, nil, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheTTL, svc.cacheTTL)
}
