package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// RecordRepository is the pgx implementation of record.Repository.
type RecordRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRecordRepository wires the repository.
func NewRecordRepository(pool *pgxpool.Pool, logger logging.Logger) *RecordRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RecordRepository{pool: pool, logger: logger.Named("record_repo")}
}

// Save inserts or fully replaces a record and its extracted entities in one
// transaction.
func (r *RecordRepository) Save(ctx context.Context, rec *record.MedicalRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: beginning save")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO medical_records (id, filename, report_text, summary, risk_level, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			report_text = EXCLUDED.report_text,
			summary = EXCLUDED.summary,
			risk_level = EXCLUDED.risk_level`,
		string(rec.ID), rec.Filename, rec.Text, rec.Summary, string(rec.RiskLevel), rec.UploadedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: upserting record")
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM disease_entities WHERE record_id = $1`, string(rec.ID))
	batch.Queue(`DELETE FROM lab_results WHERE record_id = $1`, string(rec.ID))
	for _, d := range rec.Diseases {
		batch.Queue(`
			INSERT INTO disease_entities (record_id, entity_text, start_offset, end_offset, entity_type, confidence)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			string(rec.ID), d.Text, d.Start, d.End, d.Type, d.Confidence)
	}
	for _, l := range rec.Labs {
		batch.Queue(`
			INSERT INTO lab_results (record_id, name, value, unit, normal_range, start_offset, end_offset, confidence, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(rec.ID), l.Name, l.Value, l.Unit, l.NormalRange, l.Start, l.End, l.Confidence, l.Source)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: writing entities")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeRecordPersistError, "postgres: committing save")
	}
	return nil
}

// GetByID loads one record with its entities.
func (r *RecordRepository) GetByID(ctx context.Context, id common.ID) (*record.MedicalRecord, error) {
	rec := &record.MedicalRecord{}
	var recID, risk string
	err := r.pool.QueryRow(ctx, `
		SELECT id, filename, report_text, summary, risk_level, uploaded_at
		FROM medical_records WHERE id = $1`, string(id)).
		Scan(&recID, &rec.Filename, &rec.Text, &rec.Summary, &risk, &rec.UploadedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeRecordNotFound, "record %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: loading record")
	}
	rec.ID = common.ID(recID)
	rec.RiskLevel = common.RiskLevel(risk)

	if rec.Diseases, err = r.loadDiseases(ctx, id); err != nil {
		return nil, err
	}
	if rec.Labs, err = r.loadLabs(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) loadDiseases(ctx context.Context, id common.ID) ([]record.Entity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT entity_text, start_offset, end_offset, entity_type, confidence
		FROM disease_entities WHERE record_id = $1 ORDER BY start_offset`, string(id))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: loading diseases")
	}
	defer rows.Close()

	out := []record.Entity{}
	for rows.Next() {
		var e record.Entity
		if err := rows.Scan(&e.Text, &e.Start, &e.End, &e.Type, &e.Confidence); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning disease")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *RecordRepository) loadLabs(ctx context.Context, id common.ID) ([]record.LabResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, value, unit, normal_range, start_offset, end_offset, confidence, source
		FROM lab_results WHERE record_id = $1 ORDER BY id`, string(id))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: loading labs")
	}
	defer rows.Close()

	out := []record.LabResult{}
	for rows.Next() {
		var l record.LabResult
		if err := rows.Scan(&l.Name, &l.Value, &l.Unit, &l.NormalRange, &l.Start, &l.End, &l.Confidence, &l.Source); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning lab")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// List returns records newest first.
func (r *RecordRepository) List(ctx context.Context, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	return r.listWhere(ctx, ``, nil, page)
}

// ListByRiskLevel returns records carrying one risk level, newest first.
func (r *RecordRepository) ListByRiskLevel(ctx context.Context, level common.RiskLevel, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	return r.listWhere(ctx, `WHERE risk_level = $1`, []any{string(level)}, page)
}

// SearchByText is the ILIKE fallback used when OpenSearch is unavailable.
func (r *RecordRepository) SearchByText(ctx context.Context, query string, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	pattern := "%" + query + "%"
	return r.listWhere(ctx, `WHERE report_text ILIKE $1 OR summary ILIKE $1`, []any{pattern}, page)
}

func (r *RecordRepository) listWhere(ctx context.Context, where string, args []any, page common.Pagination) ([]*record.MedicalRecord, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM medical_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "postgres: counting records")
	}

	args = append(args, page.PageSize, page.Offset())
	n := len(args)
	rows, err := r.pool.Query(ctx, `
		SELECT id, filename, report_text, summary, risk_level, uploaded_at
		FROM medical_records `+where+`
		ORDER BY uploaded_at DESC
		LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "postgres: listing records")
	}
	defer rows.Close()

	out := []*record.MedicalRecord{}
	for rows.Next() {
		rec := &record.MedicalRecord{Diseases: []record.Entity{}, Labs: []record.LabResult{}}
		var recID, risk string
		if err := rows.Scan(&recID, &rec.Filename, &rec.Text, &rec.Summary, &risk, &rec.UploadedAt); err != nil {
			return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning record")
		}
		rec.ID = common.ID(recID)
		rec.RiskLevel = common.RiskLevel(risk)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeDatabaseError, "postgres: iterating records")
	}

	for _, rec := range out {
		if rec.Diseases, err = r.loadDiseases(ctx, rec.ID); err != nil {
			return nil, 0, err
		}
		if rec.Labs, err = r.loadLabs(ctx, rec.ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// Delete removes a record; child rows cascade. Deleting an absent record is
// not an error.
func (r *RecordRepository) Delete(ctx context.Context, id common.ID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, string(id))
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "postgres: deleting record")
	}
	return nil
}

// Stats returns aggregate totals over the whole store.
func (r *RecordRepository) Stats(ctx context.Context) (*record.Stats, error) {
	stats := &record.Stats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM medical_records),
			(SELECT count(*) FROM disease_entities),
			(SELECT count(*) FROM lab_results),
			(SELECT count(DISTINCT lower(entity_text)) FROM disease_entities)`).
		Scan(&stats.TotalRecords, &stats.TotalDiseases, &stats.TotalLabs, &stats.DistinctDiseases)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: reading stats")
	}
	return stats, nil
}

// TopDiseases returns the most frequent disease names, case folded.
func (r *RecordRepository) TopDiseases(ctx context.Context, limit int) ([]record.FrequencyCount, error) {
	return r.frequencies(ctx, `
		SELECT lower(entity_text), count(*)
		FROM disease_entities
		GROUP BY 1 ORDER BY 2 DESC, 1 LIMIT $1`, limit)
}

// TopLabs returns the most frequent lab test names, case folded.
func (r *RecordRepository) TopLabs(ctx context.Context, limit int) ([]record.FrequencyCount, error) {
	return r.frequencies(ctx, `
		SELECT lower(name), count(*)
		FROM lab_results
		GROUP BY 1 ORDER BY 2 DESC, 1 LIMIT $1`, limit)
}

func (r *RecordRepository) frequencies(ctx context.Context, sql string, limit int) ([]record.FrequencyCount, error) {
	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: frequency query")
	}
	defer rows.Close()

	out := []record.FrequencyCount{}
	for rows.Next() {
		var fc record.FrequencyCount
		if err := rows.Scan(&fc.Name, &fc.Count); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning frequency")
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// UploadTrend returns per-day record counts for the trailing days.
func (r *RecordRepository) UploadTrend(ctx context.Context, days int) ([]record.TrendPoint, error) {
	from := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', uploaded_at), count(*)
		FROM medical_records
		WHERE uploaded_at >= $1
		GROUP BY 1 ORDER BY 1`, from)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: trend query")
	}
	defer rows.Close()

	out := []record.TrendPoint{}
	for rows.Next() {
		var tp record.TrendPoint
		if err := rows.Scan(&tp.Day, &tp.Count); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning trend point")
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

// DailyDiseaseCounts returns per-disease per-day mention counts in
// [from, to), feeding outbreak detection.
func (r *RecordRepository) DailyDiseaseCounts(ctx context.Context, from, to time.Time) ([]record.DailyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lower(d.entity_text), date_trunc('day', m.uploaded_at), count(*)
		FROM disease_entities d
		JOIN medical_records m ON m.id = d.record_id
		WHERE m.uploaded_at >= $1 AND m.uploaded_at < $2
		GROUP BY 1, 2 ORDER BY 1, 2`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: daily counts query")
	}
	defer rows.Close()

	out := []record.DailyCount{}
	for rows.Next() {
		var dc record.DailyCount
		if err := rows.Scan(&dc.Disease, &dc.Day, &dc.Count); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning daily count")
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// RiskDistribution returns record counts keyed by risk level.
func (r *RecordRepository) RiskDistribution(ctx context.Context) (map[common.RiskLevel]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT risk_level, count(*) FROM medical_records GROUP BY 1`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: risk distribution query")
	}
	defer rows.Close()

	out := map[common.RiskLevel]int64{}
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: scanning distribution")
		}
		out[common.RiskLevel(level)] = count
	}
	return out, rows.Err()
}
