// Package opensearch backs full-text report search with an OpenSearch
// cluster. PostgreSQL ILIKE remains the fallback when the cluster is down.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// NewClient opens and verifies an OpenSearch API client from configuration.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, logger logging.Logger) (*opensearchapi.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "opensearch: at least one address is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var transport http.RoundTripper
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: cfg.Addresses,
			Username:  cfg.User,
			Password:  cfg.Password,
			Transport: transport,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: creating client")
	}

	if _, err := client.Info(ctx, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "opensearch: verifying connection")
	}

	logger.Info("connected to opensearch",
		logging.Int("addresses", len(cfg.Addresses)))
	return client, nil
}
