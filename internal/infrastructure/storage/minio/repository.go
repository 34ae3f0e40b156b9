package minio

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

const defaultPresignExpiry = 15 * time.Minute

// ReportStore archives raw report text, one object per record.
type ReportStore struct {
	api           API
	bucket        string
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewReportStore wires the store. A zero presignExpiry falls back to 15
// minutes.
func NewReportStore(api API, bucket string, presignExpiry time.Duration, logger logging.Logger) *ReportStore {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if presignExpiry <= 0 {
		presignExpiry = defaultPresignExpiry
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportStore{
		api:           api,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		logger:        logger.Named("report_store"),
	}
}

func objectName(id common.ID) string {
	return "reports/" + string(id) + ".txt"
}

// PutReport stores the raw report text under the record ID. The original
// filename travels as object metadata.
func (s *ReportStore) PutReport(ctx context.Context, id common.ID, filename string, text []byte) error {
	opts := minio.PutObjectOptions{
		ContentType:  "text/plain; charset=utf-8",
		UserMetadata: map[string]string{"filename": filename},
	}
	_, err := s.api.PutObject(ctx, s.bucket, objectName(id), bytes.NewReader(text), int64(len(text)), opts)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "minio: storing report")
	}
	s.logger.Debug("report archived",
		logging.String("record_id", string(id)),
		logging.Int("bytes", len(text)))
	return nil
}

// RemoveReport deletes the archived text. Removing an absent object is not
// an error.
func (s *ReportStore) RemoveReport(ctx context.Context, id common.ID) error {
	if err := s.api.RemoveObject(ctx, s.bucket, objectName(id), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "minio: removing report")
	}
	return nil
}

// PresignReport returns a time-limited download URL for the archived text.
func (s *ReportStore) PresignReport(ctx context.Context, id common.ID) (string, error) {
	u, err := s.api.PresignedGetObject(ctx, s.bucket, objectName(id), s.presignExpiry, url.Values{})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "minio: presigning report")
	}
	return u.String(), nil
}
