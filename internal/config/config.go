// Package config defines all configuration structures for the MedicalNER
// service. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	AutoOffsetReset  string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries  int      `mapstructure:"producer_retries"`
	BatchSize        int      `mapstructure:"batch_size"`
	AutoCreateTopics bool     `mapstructure:"auto_create_topics"`
}

// OpenSearchConfig holds OpenSearch cluster connection parameters.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	IndexPrefix        string   `mapstructure:"index_prefix"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// MilvusConfig holds Milvus vector-store connection parameters. Milvus is an
// optional backend for the lab knowledge retrieval index; the in-memory flat
// index is the default.
type MilvusConfig struct {
	Addr       string `mapstructure:"addr"`
	DBName     string `mapstructure:"db_name"`
	Collection string `mapstructure:"collection"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters for raw
// report archival.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	CommitInterval time.Duration `mapstructure:"commit_interval"`
}

// IntelligenceConfig holds the external model collaborators: the NER token
// classifier, the sentence embedder, and the generative model.
type IntelligenceConfig struct {
	// ServingAddr is the base URL of the model serving endpoint hosting the
	// NER and embedding models.
	ServingAddr  string        `mapstructure:"serving_addr"`
	ModelTimeout time.Duration `mapstructure:"model_timeout"`

	NERModel       string  `mapstructure:"ner_model"`
	MaxWindowSize  int     `mapstructure:"max_window_size"`
	WindowStride   int     `mapstructure:"window_stride"`
	ProbThreshold  float64 `mapstructure:"prob_threshold"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	EmbeddingDim   int     `mapstructure:"embedding_dim"`

	// GenAIAPIKey authenticates against the Gemini API. When empty the RAG
	// extractor and summarizer are disabled and extraction degrades to the
	// regex strategy alone.
	GenAIAPIKey string `mapstructure:"genai_api_key"`
	GenAIModel  string `mapstructure:"genai_model"`

	RAGTopK         int  `mapstructure:"rag_top_k"`
	RAGEnabled      bool `mapstructure:"rag_enabled"`
	SummaryMaxChars int  `mapstructure:"summary_max_chars"`
}

// RetrievalConfig selects the vector-index backend for the lab knowledge base.
type RetrievalConfig struct {
	Backend string `mapstructure:"backend"` // "memory" | "milvus"
}

// ScreeningConfig holds rule-engine and outbreak-detection parameters.
type ScreeningConfig struct {
	RulesPath         string        `mapstructure:"rules_path"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	OutbreakThreshold float64       `mapstructure:"outbreak_threshold"`
	OutbreakWindow    int           `mapstructure:"outbreak_window_days"`
}

// LogConfig aliases the logging package config so callers only import config.
type LogConfig = logging.LogConfig

// Config is the root configuration structure for the entire service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	OpenSearch   OpenSearchConfig   `mapstructure:"opensearch"`
	Milvus       MilvusConfig       `mapstructure:"milvus"`
	MinIO        MinIOConfig        `mapstructure:"minio"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Screening    ScreeningConfig    `mapstructure:"screening"`
	Log          LogConfig          `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	if c.Intelligence.ServingAddr == "" {
		return fmt.Errorf("config: intelligence.serving_addr is required")
	}
	if c.Intelligence.MaxWindowSize < 1 || c.Intelligence.MaxWindowSize > 512 {
		return fmt.Errorf("config: intelligence.max_window_size %d is out of range [1, 512]", c.Intelligence.MaxWindowSize)
	}
	if c.Intelligence.WindowStride < 1 {
		return fmt.Errorf("config: intelligence.window_stride must be >= 1, got %d", c.Intelligence.WindowStride)
	}
	if c.Intelligence.ProbThreshold < 0 || c.Intelligence.ProbThreshold > 1 {
		return fmt.Errorf("config: intelligence.prob_threshold %g is out of range [0, 1]", c.Intelligence.ProbThreshold)
	}
	if c.Intelligence.RAGTopK < 1 {
		return fmt.Errorf("config: intelligence.rag_top_k must be >= 1, got %d", c.Intelligence.RAGTopK)
	}

	switch c.Retrieval.Backend {
	case "memory", "milvus":
	default:
		return fmt.Errorf("config: retrieval.backend %q is invalid; expected memory|milvus", c.Retrieval.Backend)
	}
	if c.Retrieval.Backend == "milvus" && c.Milvus.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required when retrieval.backend is milvus")
	}

	if c.Screening.OutbreakThreshold <= 0 {
		return fmt.Errorf("config: screening.outbreak_threshold must be > 0, got %g", c.Screening.OutbreakThreshold)
	}
	if c.Screening.OutbreakWindow < 1 {
		return fmt.Errorf("config: screening.outbreak_window_days must be >= 1, got %d", c.Screening.OutbreakWindow)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
