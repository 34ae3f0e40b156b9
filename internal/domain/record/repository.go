package record

import (
	"context"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Repository is the persistence contract for medical records. The postgres
// implementation lives in internal/infrastructure/database/postgres.
type Repository interface {
	// Save inserts or fully replaces a record and its extracted entities.
	Save(ctx context.Context, rec *MedicalRecord) error

	// GetByID returns the record or an AppError with ErrCodeRecordNotFound.
	GetByID(ctx context.Context, id common.ID) (*MedicalRecord, error)

	// List returns records newest first.
	List(ctx context.Context, page common.Pagination) ([]*MedicalRecord, int64, error)

	// SearchByText is the fallback full-text search used when the OpenSearch
	// cluster is unavailable. It matches against report text and summary.
	SearchByText(ctx context.Context, query string, page common.Pagination) ([]*MedicalRecord, int64, error)

	// Delete removes a record; deleting an absent record is not an error.
	Delete(ctx context.Context, id common.ID) error

	// Stats returns aggregate totals over the whole store.
	Stats(ctx context.Context) (*Stats, error)

	// TopDiseases returns the most frequent disease names.
	TopDiseases(ctx context.Context, limit int) ([]FrequencyCount, error)

	// TopLabs returns the most frequent lab test names.
	TopLabs(ctx context.Context, limit int) ([]FrequencyCount, error)

	// UploadTrend returns per-day record counts for the trailing window.
	UploadTrend(ctx context.Context, days int) ([]TrendPoint, error)

	// DailyDiseaseCounts returns per-disease per-day mention counts between
	// from (inclusive) and to (exclusive), feeding outbreak detection.
	DailyDiseaseCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error)

	// ListByRiskLevel returns records carrying the given risk level,
	// newest first.
	ListByRiskLevel(ctx context.Context, level common.RiskLevel, page common.Pagination) ([]*MedicalRecord, int64, error)

	// RiskDistribution returns record counts keyed by risk level.
	RiskDistribution(ctx context.Context) (map[common.RiskLevel]int64, error)
}

// ScreeningRepository persists rule-engine verdicts per record.
type ScreeningRepository interface {
	SaveResult(ctx context.Context, result *ScreeningResult) error
	GetResult(ctx context.Context, recordID common.ID) (*ScreeningResult, error)
	DeleteResult(ctx context.Context, recordID common.ID) error
}
