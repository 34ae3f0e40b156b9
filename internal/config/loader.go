// Package config provides configuration loading, defaults, and validation
// for the MedicalNER service.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "MEDNER"

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, MEDNER_ env prefix, automatic env binding, and a
// key replacer that maps "." to "_" so that nested keys like "database.host"
// resolve to "MEDNER_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any MEDNER_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result. It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from MEDNER_* environment variables,
// with no config file required. This is the preferred loading strategy for
// containerised deployments:
//
//	MEDNER_<SECTION>_<FIELD>   e.g. MEDNER_DATABASE_HOST, MEDNER_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// envKeys lists the settings resolvable from environment variables. Viper's
// AutomaticEnv only participates in Unmarshal for keys it already knows
// about, so each key is registered explicitly.
var envKeys = []string{
	"server.port", "server.mode",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.migration_path",
	"redis.addr", "redis.password", "redis.db", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.auto_offset_reset",
	"opensearch.addresses", "opensearch.user", "opensearch.password",
	"opensearch.index_prefix",
	"milvus.addr", "milvus.db_name", "milvus.collection",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"minio.use_ssl",
	"worker.concurrency", "worker.max_retries",
	"intelligence.serving_addr", "intelligence.ner_model",
	"intelligence.embedding_model", "intelligence.embedding_dim",
	"intelligence.prob_threshold", "intelligence.genai_api_key",
	"intelligence.genai_model", "intelligence.rag_top_k",
	"intelligence.rag_enabled",
	"retrieval.backend",
	"screening.rules_path", "screening.outbreak_threshold",
	"screening.outbreak_window_days",
	"log.level", "log.format",
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: failed to bind env for %q: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk. It is intended for
// hot-reloading non-critical settings such as log level and screening
// thresholds; callers are responsible for applying only the safe subset of
// changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper
// (fsnotify underneath). If the changed file fails to parse or validate,
// onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read. Errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			// A changed file that no longer validates must not push the
			// application into a broken state.
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
