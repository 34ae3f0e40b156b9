// The worker binary consumes submitted reports from Kafka, runs them through
// the extraction pipeline, and periodically scans for disease outbreaks. The
// outbreak scan takes a Redis lock so only one worker instance runs it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/analytics"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/report"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/screening"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/database/postgres"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/database/redis"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/genai"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/messaging/kafka"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	intel "github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/common"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/diseasener"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/summarizer"
)

const (
	defaultConfigPath    = "configs/config.yaml"
	outbreakScanInterval = time.Hour
	outbreakLockName     = "outbreak-scan"
	outbreakLockTTL      = 10 * time.Minute
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting medner worker",
		logging.Any("brokers", cfg.Kafka.Brokers),
		logging.String("group_id", cfg.Kafka.GroupID))

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	recordRepo := postgres.NewRecordRepository(pool, logger)
	screeningRepo := postgres.NewScreeningRepository(pool, logger)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.DefaultTTL, logger)

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
	recognizer, err := diseasener.NewRecognizer(backend, nerCfg, logger, intel.NewNoopMetrics())
	if err != nil {
		return fmt.Errorf("recognizer: %w", err)
	}

	var generator *genai.Client
	if cfg.Intelligence.GenAIAPIKey != "" {
		generator, err = genai.NewClient(ctx, cfg.Intelligence.GenAIAPIKey, cfg.Intelligence.GenAIModel, logger)
		if err != nil {
			return fmt.Errorf("genai: %w", err)
		}
		defer generator.Close()
	}

	regex := labextract.NewRegexExtractor()
	var rag *labextract.RAGExtractor
	if cfg.Intelligence.RAGEnabled && generator != nil {
		embedder, err := intel.NewModelEmbedder(backend, cfg.Intelligence.EmbeddingModel, cfg.Intelligence.EmbeddingDim)
		if err != nil {
			return fmt.Errorf("embedder: %w", err)
		}
		index, err := labextract.NewMemoryIndex(ctx, labextract.KnowledgeBase(), embedder)
		if err != nil {
			return fmt.Errorf("knowledge index: %w", err)
		}
		rag, err = labextract.NewRAGExtractor(embedder, index, generator, cfg.Intelligence.RAGTopK, logger)
		if err != nil {
			return fmt.Errorf("rag extractor: %w", err)
		}
	}
	labExtractor := labextract.NewExtractor(regex, rag, logger, intel.NewNoopMetrics())

	var summaries report.Summarizer
	if generator != nil {
		summaries, err = summarizer.New(generator, cfg.Intelligence.SummaryMaxChars, logger)
		if err != nil {
			return fmt.Errorf("summarizer: %w", err)
		}
	}

	rules := screening.DefaultRules()
	if cfg.Screening.RulesPath != "" {
		rules, err = screening.LoadRules(cfg.Screening.RulesPath)
		if err != nil {
			return fmt.Errorf("screening rules: %w", err)
		}
	}
	engine, err := screening.NewEngine(rules)
	if err != nil {
		return fmt.Errorf("screening rules: %w", err)
	}
	screeningSvc, err := screening.NewService(engine, recordRepo, screeningRepo, cache, cfg.Screening.CacheTTL, logger, intel.NewNoopMetrics())
	if err != nil {
		return fmt.Errorf("screening service: %w", err)
	}

	reportSvc, err := report.NewService(report.Deps{
		Records:          recordRepo,
		Diseases:         recognizer,
		Labs:             labExtractor,
		Summarizer:       summaries,
		Screener:         screeningSvc,
		Invalidator:      screeningSvc,
		Logger:           logger,
		BatchConcurrency: cfg.Worker.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("report service: %w", err)
	}

	analyticsSvc, err := analytics.NewService(recordRepo, cfg.Screening.OutbreakThreshold, cfg.Screening.OutbreakWindow, logger)
	if err != nil {
		return fmt.Errorf("analytics service: %w", err)
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.TopicReportSubmitted, logger)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer consumer.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Run(gctx, submittedReportHandler(reportSvc, logger))
	})

	g.Go(func() error {
		runOutbreakScans(gctx, redisClient, analyticsSvc, logger)
		return nil
	})

	err = g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// submittedReportHandler runs the extraction pipeline over one submitted
// report. Returning an error leaves the offset uncommitted for redelivery.
func submittedReportHandler(svc *report.Service, logger logging.Logger) kafka.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event record.ReportSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Malformed payloads never become processable; log and drop.
			logger.Error("dropping malformed report event",
				logging.String("topic", msg.Topic), logging.Err(err))
			return nil
		}

		result, err := svc.Process(ctx, event.Text, event.Filename)
		if err != nil {
			return err
		}
		logger.Info("processed submitted report",
			logging.String("record_id", string(result.Record.ID)),
			logging.Int("diseases", len(result.Record.Diseases)),
			logging.Int("labs", len(result.Record.Labs)))
		return nil
	}
}

// runOutbreakScans triggers an outbreak scan every interval. The Redis lock
// keeps concurrent worker replicas from running duplicate scans.
func runOutbreakScans(ctx context.Context, client *goredis.Client, svc *analytics.Service, logger logging.Logger) {
	ticker := time.NewTicker(outbreakScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		lock := redis.NewLock(client, outbreakLockName, outbreakLockTTL)
		acquired, err := lock.TryAcquire(ctx)
		if err != nil {
			logger.Warn("outbreak scan lock unavailable", logging.Err(err))
			continue
		}
		if !acquired {
			logger.Debug("outbreak scan already running elsewhere")
			continue
		}

		scan, err := svc.Outbreaks(ctx)
		if err != nil {
			logger.Error("outbreak scan failed", logging.Err(err))
		} else if len(scan.Alerts) > 0 {
			for _, alert := range scan.Alerts {
				logger.Warn("outbreak signal detected",
					logging.String("disease", alert.Disease),
					logging.Int("count", alert.Count),
					logging.Float64("increase_ratio", alert.IncreaseRatio),
					logging.String("severity", string(alert.Severity)))
			}
		} else {
			logger.Info("outbreak scan clean")
		}

		if err := lock.Release(ctx); err != nil {
			logger.Warn("outbreak scan lock release failed", logging.Err(err))
		}
	}
}
