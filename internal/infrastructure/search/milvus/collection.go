package milvus

import (
	"context"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
)

func knowledgeSchema(collection string, dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: collection,
		Description:    "lab test knowledge base",
		Fields: []*entity.Field{
			{
				Name:       fieldID,
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
			},
			{
				Name:       fieldEmbedding,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{entity.TypeParamDim: strconv.Itoa(dim)},
			},
		},
	}
}

// Bootstrap creates the knowledge collection when absent, embeds and inserts
// the knowledge-base documents, and loads the collection for search. It is
// idempotent: an existing collection is only loaded.
func Bootstrap(ctx context.Context, api API, collection string, embedder labextract.Embedder, docs []labextract.Document, logger logging.Logger) error {
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	exists, err := api.HasCollection(ctx, collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: checking collection")
	}
	if exists {
		if err := api.LoadCollection(ctx, collection, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: loading collection")
		}
		return nil
	}

	if len(docs) == 0 {
		return errors.New(errors.ErrCodeLabIndexEmpty, "milvus: no knowledge documents to index")
	}

	ids := make([]int64, 0, len(docs))
	vectors := make([][]float32, 0, len(docs))
	dim := 0
	for i, doc := range docs {
		vec, err := embedder.Embed(ctx, doc.Text)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeLabEmbeddingFailed, "milvus: embedding knowledge document")
		}
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			return errors.Newf(errors.ErrCodeLabIndexDimMismatch,
				"milvus: document %q embedding has dim %d, want %d", doc.ID, len(vec), dim)
		}
		ids = append(ids, int64(i))
		vectors = append(vectors, vec)
	}

	if err := api.CreateCollection(ctx, knowledgeSchema(collection, dim), 1); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: creating collection")
	}

	_, err = api.Insert(ctx, collection, "",
		entity.NewColumnInt64(fieldID, ids),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: inserting documents")
	}
	if err := api.Flush(ctx, collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: flushing collection")
	}

	idx, err := entity.NewIndexFlat(entity.L2)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: building index spec")
	}
	if err := api.CreateIndex(ctx, collection, fieldEmbedding, idx, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: creating index")
	}
	if err := api.LoadCollection(ctx, collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "milvus: loading collection")
	}

	logger.Info("knowledge collection ready",
		logging.String("collection", collection),
		logging.Int("documents", len(docs)),
		logging.Int("dim", dim))
	return nil
}
