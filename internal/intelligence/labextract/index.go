package labextract

import (
	"context"
	"sort"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Embedder produces the dense vector for a text passage.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchHit is one retrieved document with its squared L2 distance to the
// query vector. Smaller is closer.
type SearchHit struct {
	Doc      Document
	Distance float32
}

// VectorIndex retrieves the k nearest knowledge-base documents for a query
// vector. Implementations must be safe for concurrent searches.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]SearchHit, error)
}

// MemoryIndex is a flat exact-search index over the knowledge base. With ten
// documents a scan beats any approximate structure, and the index stays
// read-only after construction so searches need no locking.
type MemoryIndex struct {
	docs    []Document
	vectors [][]float32
	dim     int
}

// NewMemoryIndex embeds every document with embedder and builds the index.
func NewMemoryIndex(ctx context.Context, docs []Document, embedder Embedder) (*MemoryIndex, error) {
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeLabIndexEmpty, "labextract: no documents to index")
	}
	if embedder == nil {
		return nil, errors.New(errors.CodeInvalidParam, "labextract: embedder is required")
	}

	idx := &MemoryIndex{
		docs:    make([]Document, len(docs)),
		vectors: make([][]float32, len(docs)),
	}
	copy(idx.docs, docs)
	for i, doc := range docs {
		vec, err := embedder.Embed(ctx, doc.Text)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeLabEmbeddingFailed, "labextract: embedding document "+doc.ID)
		}
		if i == 0 {
			idx.dim = len(vec)
		} else if len(vec) != idx.dim {
			return nil, errors.Newf(errors.ErrCodeLabIndexDimMismatch,
				"labextract: document %s embedded to %d dims, index is %d", doc.ID, len(vec), idx.dim)
		}
		idx.vectors[i] = vec
	}
	return idx, nil
}

// Size returns the number of indexed documents.
func (idx *MemoryIndex) Size() int { return len(idx.docs) }

// Search returns the k nearest documents by squared L2 distance, closest
// first. k larger than the index is capped, never an error.
func (idx *MemoryIndex) Search(_ context.Context, vector []float32, k int) ([]SearchHit, error) {
	if len(idx.docs) == 0 {
		return nil, errors.New(errors.ErrCodeLabIndexEmpty, "labextract: index is empty")
	}
	if len(vector) != idx.dim {
		return nil, errors.Newf(errors.ErrCodeLabIndexDimMismatch,
			"labextract: query has %d dims, index is %d", len(vector), idx.dim)
	}
	if k < 1 {
		return nil, errors.Newf(errors.CodeInvalidParam, "labextract: k %d must be positive", k)
	}
	if k > len(idx.docs) {
		k = len(idx.docs)
	}

	hits := make([]SearchHit, len(idx.docs))
	for i, vec := range idx.vectors {
		hits[i] = SearchHit{Doc: idx.docs[i], Distance: squaredL2(vector, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
