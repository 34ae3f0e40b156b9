// The apiserver binary serves the medner HTTP API: report ingestion, record
// retrieval, risk screening, and analytics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/analytics"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/report"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/screening"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/database/postgres"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/database/redis"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/genai"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/messaging/kafka"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	promexport "github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/prometheus"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/search/milvus"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/search/opensearch"
	minioinfra "github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/storage/minio"
	intel "github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/diseasener"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/summarizer"
	httpserver "github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/handlers"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/middleware"

	goredis "github.com/redis/go-redis/v9"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = logger.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting medner API server", logging.Int("port", cfg.Server.Port))

	// Database.
	migrator, err := postgres.NewMigrator(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		migrator.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	migrator.Close()

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	recordRepo := postgres.NewRecordRepository(pool, logger)
	screeningRepo := postgres.NewScreeningRepository(pool, logger)

	// Redis.
	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL, logger)

	// Metrics.
	registry := promexport.NewRegistry()
	httpMetrics, err := promexport.NewHTTPMetrics(registry.Registerer())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	intelMetrics, err := intel.NewPrometheusMetrics(registry.Registerer())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// Model serving backend and NER.
	backend, err := intel.NewHTTPBackend(cfg.Intelligence.ServingAddr, cfg.Intelligence.ModelTimeout, logger)
	if err != nil {
		return fmt.Errorf("model backend: %w", err)
	}
	defer backend.Close()

	nerCfg := diseasener.DefaultConfig()
	if cfg.Intelligence.NERModel != "" {
		nerCfg.ModelName = cfg.Intelligence.NERModel
	}
	if cfg.Intelligence.MaxWindowSize > 0 {
		nerCfg.MaxWindowSize = cfg.Intelligence.MaxWindowSize
	}
	if cfg.Intelligence.WindowStride > 0 {
		nerCfg.Stride = cfg.Intelligence.WindowStride
	}
	nerCfg.ProbThreshold = cfg.Intelligence.ProbThreshold
	recognizer, err := diseasener.NewRecognizer(backend, nerCfg, logger, intelMetrics)
	if err != nil {
		return fmt.Errorf("recognizer: %w", err)
	}

	// Generative model. Without an API key the pipeline degrades to the
	// regex extractor and skips summarization.
	var generator *genai.Client
	if cfg.Intelligence.GenAIAPIKey != "" {
		generator, err = genai.NewClient(ctx, cfg.Intelligence.GenAIAPIKey, cfg.Intelligence.GenAIModel, logger)
		if err != nil {
			return fmt.Errorf("genai: %w", err)
		}
		defer generator.Close()
	} else {
		logger.Warn("no GenAI API key configured, summaries and RAG extraction disabled")
	}

	// Lab extraction.
	labExtractor, err := buildLabExtractor(ctx, cfg, backend, generator, logger, intelMetrics)
	if err != nil {
		return err
	}

	var summaries report.Summarizer
	if generator != nil {
		summaries, err = summarizer.New(generator, cfg.Intelligence.SummaryMaxChars, logger)
		if err != nil {
			return fmt.Errorf("summarizer: %w", err)
		}
	}

	// Screening.
	rules, err := loadRules(cfg, logger)
	if err != nil {
		return err
	}
	engine, err := screening.NewEngine(rules)
	if err != nil {
		return fmt.Errorf("screening rules: %w", err)
	}
	screeningSvc, err := screening.NewService(engine, recordRepo, screeningRepo, cache, cfg.Screening.CacheTTL, logger, intelMetrics)
	if err != nil {
		return fmt.Errorf("screening service: %w", err)
	}

	// Optional infrastructure: search index, object archive, event bus.
	deps := report.Deps{
		Records:          recordRepo,
		Diseases:         recognizer,
		Labs:             labExtractor,
		Summarizer:       summaries,
		Screener:         screeningSvc,
		Invalidator:      screeningSvc,
		Logger:           logger,
		Metrics:          intelMetrics,
		BatchConcurrency: cfg.Worker.Concurrency,
	}

	var osIndexer *opensearch.Indexer
	if len(cfg.OpenSearch.Addresses) > 0 {
		osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
		if err != nil {
			return fmt.Errorf("opensearch: %w", err)
		}
		osIndexer = opensearch.NewIndexer(osClient, cfg.OpenSearch.IndexPrefix, logger)
		if err := osIndexer.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("opensearch index: %w", err)
		}
		deps.Indexer = osIndexer
	} else {
		logger.Warn("no OpenSearch addresses configured, full-text search disabled")
	}

	if cfg.MinIO.Endpoint != "" {
		minioClient, err := minioinfra.NewClient(cfg.MinIO, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		bucket := cfg.MinIO.Bucket
		if bucket == "" {
			bucket = minioinfra.DefaultBucket
		}
		if err := minioinfra.EnsureBucket(ctx, minioClient, bucket); err != nil {
			return fmt.Errorf("minio bucket: %w", err)
		}
		deps.Store = minioinfra.NewReportStore(minioClient, bucket, cfg.MinIO.PresignExpiry, logger)
	} else {
		logger.Warn("no MinIO endpoint configured, raw report archival disabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer producer.Close()
		deps.Publisher = producer
	} else {
		logger.Warn("no Kafka brokers configured, domain events disabled")
	}

	reportSvc, err := report.NewService(deps)
	if err != nil {
		return fmt.Errorf("report service: %w", err)
	}

	analyticsSvc, err := analytics.NewService(recordRepo, cfg.Screening.OutbreakThreshold, cfg.Screening.OutbreakWindow, logger)
	if err != nil {
		return fmt.Errorf("analytics service: %w", err)
	}

	// HTTP surface.
	limiter := middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		ReportHandler:    handlers.NewReportHandler(reportSvc),
		ScreeningHandler: handlers.NewScreeningHandler(screeningSvc),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
		HealthHandler:    handlers.NewHealthHandler(healthChecks(pool, redisClient)),
		Logger:           logger,
		MetricsHandler:   registry.Handler(),
		HTTPMetrics:      middleware.Metrics(httpMetrics),
		RateLimiter:      limiter,
	})

	server := httpserver.NewServer(cfg.Server.Port, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// loadConfig reads the config file when present, otherwise falls back to
// MEDNER_* environment variables.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func loadRules(cfg *config.Config, logger logging.Logger) ([]screening.Rule, error) {
	if cfg.Screening.RulesPath == "" {
		return screening.DefaultRules(), nil
	}
	rules, err := screening.LoadRules(cfg.Screening.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("screening rules: %w", err)
	}
	logger.Info("loaded screening rules",
		logging.String("path", cfg.Screening.RulesPath),
		logging.Int("rules", len(rules)))
	return rules, nil
}

// buildLabExtractor assembles the regex strategy plus, when a generative
// model and embedder are available, the RAG strategy over the knowledge base.
func buildLabExtractor(
	ctx context.Context,
	cfg *config.Config,
	backend intel.ModelBackend,
	generator *genai.Client,
	logger logging.Logger,
	metrics intel.IntelligenceMetrics,
) (*labextract.Extractor, error) {
	regex := labextract.NewRegexExtractor()

	var rag *labextract.RAGExtractor
	if cfg.Intelligence.RAGEnabled && generator != nil {
		embedder, err := intel.NewModelEmbedder(backend, cfg.Intelligence.EmbeddingModel, cfg.Intelligence.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}

		docs := labextract.KnowledgeBase()
		var index labextract.VectorIndex
		switch cfg.Retrieval.Backend {
		case "milvus":
			milvusClient, err := milvus.NewClient(ctx, cfg.Milvus, logger)
			if err != nil {
				return nil, fmt.Errorf("milvus: %w", err)
			}
			collection := cfg.Milvus.Collection
			if collection == "" {
				collection = milvus.DefaultCollection
			}
			if err := milvus.Bootstrap(ctx, milvusClient, collection, embedder, docs, logger); err != nil {
				return nil, fmt.Errorf("milvus bootstrap: %w", err)
			}
			index, err = milvus.NewKnowledgeIndex(milvusClient, collection, docs, logger)
			if err != nil {
				return nil, fmt.Errorf("milvus index: %w", err)
			}
		default:
			memIndex, err := labextract.NewMemoryIndex(ctx, docs, embedder)
			if err != nil {
				return nil, fmt.Errorf("knowledge index: %w", err)
			}
			index = memIndex
		}

		rag, err = labextract.NewRAGExtractor(embedder, index, generator, cfg.Intelligence.RAGTopK, logger)
		if err != nil {
			return nil, fmt.Errorf("rag extractor: %w", err)
		}
	}

	return labextract.NewExtractor(regex, rag, logger, metrics), nil
}

func healthChecks(pool interface {
	Ping(ctx context.Context) error
}, redisClient *goredis.Client) map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"postgres": pool.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
}
