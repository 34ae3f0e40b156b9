package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// DefaultIndexPrefix is used when the configuration leaves the prefix empty.
const DefaultIndexPrefix = "medner"

const indexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"filename":    {"type": "keyword"},
			"text":        {"type": "text"},
			"summary":     {"type": "text"},
			"diseases":    {"type": "text"},
			"labs":        {"type": "text"},
			"risk_level":  {"type": "keyword"},
			"uploaded_at": {"type": "date"}
		}
	}
}`

// reportDocument is the indexed projection of a medical record.
type reportDocument struct {
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Summary    string    `json:"summary"`
	Diseases   []string  `json:"diseases"`
	Labs       []string  `json:"labs"`
	RiskLevel  string    `json:"risk_level"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Indexer writes report documents into the reports index.
type Indexer struct {
	client *opensearchapi.Client
	index  string
	logger logging.Logger
}

// NewIndexer wires an indexer over the "<prefix>-reports" index.
func NewIndexer(client *opensearchapi.Client, indexPrefix string, logger logging.Logger) *Indexer {
	if indexPrefix == "" {
		indexPrefix = DefaultIndexPrefix
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Indexer{
		client: client,
		index:  indexPrefix + "-reports",
		logger: logger.Named("os_indexer"),
	}
}

// IndexName exposes the concrete index the indexer writes to.
func (i *Indexer) IndexName() string {
	return i.index
}

// EnsureIndex creates the reports index. An already existing index is fine.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	_, err := i.client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: i.index,
		Body:  strings.NewReader(indexMapping),
	})
	if err != nil && !strings.Contains(err.Error(), "resource_already_exists_exception") {
		return errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: creating index")
	}
	return nil
}

// Index upserts one record document keyed by the record ID.
func (i *Indexer) Index(ctx context.Context, rec *record.MedicalRecord) error {
	doc := reportDocument{
		Filename:   rec.Filename,
		Text:       rec.Text,
		Summary:    rec.Summary,
		Diseases:   rec.DiseaseNames(),
		RiskLevel:  string(rec.RiskLevel),
		UploadedAt: rec.UploadedAt,
	}
	for _, lab := range rec.Labs {
		doc.Labs = append(doc.Labs, lab.Name)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "opensearch: encoding document")
	}

	_, err = i.client.Index(ctx, opensearchapi.IndexReq{
		Index:      i.index,
		DocumentID: string(rec.ID),
		Body:       bytes.NewReader(payload),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: indexing document")
	}

	i.logger.Debug("record indexed", logging.String("record_id", string(rec.ID)))
	return nil
}

// Remove deletes one record document. Missing documents are a no-op.
func (i *Indexer) Remove(ctx context.Context, id common.ID) error {
	_, err := i.client.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      i.index,
		DocumentID: string(id),
	})
	if err != nil && !strings.Contains(err.Error(), "not_found") {
		return errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: deleting document")
	}
	return nil
}
