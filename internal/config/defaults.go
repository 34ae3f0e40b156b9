package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "medner"
	DefaultDBMaxConns = 25

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "medner-workers"

	DefaultOpenSearchAddr = "http://localhost:9200"
	DefaultIndexPrefix    = "medner"

	DefaultMilvusAddr = "localhost:19530"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "medner-reports"

	DefaultServingAddr   = "http://localhost:8001"
	DefaultNERModel      = "disease-ner"
	DefaultEmbeddingModel = "all-MiniLM-L6-v2"
	DefaultEmbeddingDim  = 384
	DefaultMaxWindowSize = 512
	DefaultWindowStride  = 128
	DefaultGenAIModel    = "gemini-2.5-flash-lite"
	DefaultRAGTopK       = 10
	DefaultSummaryChars  = 4000

	DefaultOutbreakThreshold = 2.0
	DefaultOutbreakWindow    = 14

	DefaultWorkerConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins. It must be called after unmarshalling and before
// Validate so optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "medner"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddr}
	}
	if cfg.OpenSearch.IndexPrefix == "" {
		cfg.OpenSearch.IndexPrefix = DefaultIndexPrefix
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}

	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "lab_knowledge"
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 15 * time.Minute
	}

	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 2 * time.Second
	}

	if cfg.Intelligence.ServingAddr == "" {
		cfg.Intelligence.ServingAddr = DefaultServingAddr
	}
	if cfg.Intelligence.ModelTimeout == 0 {
		cfg.Intelligence.ModelTimeout = 30 * time.Second
	}
	if cfg.Intelligence.NERModel == "" {
		cfg.Intelligence.NERModel = DefaultNERModel
	}
	if cfg.Intelligence.MaxWindowSize == 0 {
		cfg.Intelligence.MaxWindowSize = DefaultMaxWindowSize
	}
	if cfg.Intelligence.WindowStride == 0 {
		cfg.Intelligence.WindowStride = DefaultWindowStride
	}
	if cfg.Intelligence.EmbeddingModel == "" {
		cfg.Intelligence.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Intelligence.EmbeddingDim == 0 {
		cfg.Intelligence.EmbeddingDim = DefaultEmbeddingDim
	}
	if cfg.Intelligence.GenAIModel == "" {
		cfg.Intelligence.GenAIModel = DefaultGenAIModel
	}
	if cfg.Intelligence.RAGTopK == 0 {
		cfg.Intelligence.RAGTopK = DefaultRAGTopK
	}
	if cfg.Intelligence.SummaryMaxChars == 0 {
		cfg.Intelligence.SummaryMaxChars = DefaultSummaryChars
	}

	if cfg.Retrieval.Backend == "" {
		cfg.Retrieval.Backend = "memory"
	}

	if cfg.Screening.OutbreakThreshold == 0 {
		cfg.Screening.OutbreakThreshold = DefaultOutbreakThreshold
	}
	if cfg.Screening.OutbreakWindow == 0 {
		cfg.Screening.OutbreakWindow = DefaultOutbreakWindow
	}
	if cfg.Screening.CacheTTL == 0 {
		cfg.Screening.CacheTTL = 30 * time.Minute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
