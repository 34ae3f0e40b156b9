// Package milvus is the optional vector-store backend for the lab knowledge
// index. The in-memory flat index stays the default; Milvus takes over when
// retrieval.backend selects it.
package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// DefaultCollection is used when the configuration leaves it empty.
const DefaultCollection = "lab_knowledge"

// API is the subset of the milvus client the knowledge index needs.
type API interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	Insert(ctx context.Context, collName, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// NewClient connects to Milvus from configuration.
func NewClient(ctx context.Context, cfg config.MilvusConfig, logger logging.Logger) (client.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.CodeInvalidParam, "milvus: address is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	c, err := client.NewClient(ctx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "milvus: connecting")
	}

	logger.Info("connected to milvus", logging.String("addr", cfg.Addr))
	return c, nil
}
