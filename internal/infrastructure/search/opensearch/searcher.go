package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Search runs a multi-field full-text query and returns matching record IDs
// ranked by relevance, plus the cluster-side total.
func (i *Indexer) Search(ctx context.Context, query string, page common.Pagination) ([]common.ID, int64, error) {
	body := map[string]any{
		"from": page.Offset(),
		"size": page.PageSize,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"text", "summary", "diseases^2", "labs"},
			},
		},
		"_source": false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeSerialization, "opensearch: encoding query")
	}

	resp, err := i.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{i.index},
		Body:    bytes.NewReader(payload),
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: searching")
	}

	ids := make([]common.ID, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		ids = append(ids, common.ID(hit.ID))
	}
	return ids, int64(resp.Hits.Total.Value), nil
}
