package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// KnowledgeIndex adapts a Milvus collection to the lab retrieval interface.
// The documents themselves stay in memory; Milvus only answers which row IDs
// are nearest.
type KnowledgeIndex struct {
	api        API
	collection string
	docs       []labextract.Document
	logger     logging.Logger
}

// NewKnowledgeIndex wires the index. docs must be the same slice, in the
// same order, that Bootstrap inserted.
func NewKnowledgeIndex(api API, collection string, docs []labextract.Document, logger logging.Logger) (*KnowledgeIndex, error) {
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeLabIndexEmpty, "milvus: knowledge base is empty")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &KnowledgeIndex{
		api:        api,
		collection: collection,
		docs:       docs,
		logger:     logger.Named("milvus_index"),
	}, nil
}

// Search returns the k nearest knowledge documents by L2 distance.
func (i *KnowledgeIndex) Search(ctx context.Context, vector []float32, k int) ([]labextract.SearchHit, error) {
	if k < 1 {
		return nil, errors.New(errors.CodeInvalidParam, "milvus: k must be positive")
	}
	if k > len(i.docs) {
		k = len(i.docs)
	}

	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLabRetrievalFailed, "milvus: building search param")
	}

	results, err := i.api.Search(ctx, i.collection, nil, "", []string{fieldID},
		[]entity.Vector{entity.FloatVector(vector)}, fieldEmbedding, entity.L2, k, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLabRetrievalFailed, "milvus: searching")
	}

	hits := []labextract.SearchHit{}
	for _, result := range results {
		ids, ok := result.IDs.(*entity.ColumnInt64)
		if !ok {
			return nil, errors.New(errors.ErrCodeLabRetrievalFailed, "milvus: unexpected id column type")
		}
		for j, id := range ids.Data() {
			if id < 0 || int(id) >= len(i.docs) {
				i.logger.Warn("search returned unknown document id", logging.Int64("id", id))
				continue
			}
			hits = append(hits, labextract.SearchHit{
				Doc:      i.docs[id],
				Distance: result.Scores[j],
			})
		}
	}
	return hits, nil
}
