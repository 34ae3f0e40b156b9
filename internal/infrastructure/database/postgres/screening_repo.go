package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// ScreeningRepository persists screening verdicts. The full result is stored
// as JSONB next to the indexed risk level so verdicts survive rule changes.
type ScreeningRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewScreeningRepository wires the repository.
func NewScreeningRepository(pool *pgxpool.Pool, logger logging.Logger) *ScreeningRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ScreeningRepository{pool: pool, logger: logger.Named("screening_repo")}
}

// SaveResult upserts the verdict for a record.
func (r *ScreeningRepository) SaveResult(ctx context.Context, result *record.ScreeningResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: encoding screening result")
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO screening_results (record_id, risk_level, payload, evaluated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_id) DO UPDATE SET
			risk_level = EXCLUDED.risk_level,
			payload = EXCLUDED.payload,
			evaluated_at = EXCLUDED.evaluated_at`,
		string(result.RecordID), string(result.RiskLevel), payload, result.EvaluatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: upserting screening result")
	}
	return nil
}

// GetResult loads the persisted verdict for a record.
func (r *ScreeningRepository) GetResult(ctx context.Context, recordID common.ID) (*record.ScreeningResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM screening_results WHERE record_id = $1`, string(recordID)).
		Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeScreeningNotFound, "no screening result for record %s", recordID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: loading screening result")
	}

	result := &record.ScreeningResult{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: decoding screening result")
	}
	return result, nil
}

// DeleteResult drops the verdict for a record. Absent rows are not an error.
func (r *ScreeningRepository) DeleteResult(ctx context.Context, recordID common.ID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM screening_results WHERE record_id = $1`, string(recordID))
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "postgres: deleting screening result")
	}
	return nil
}
