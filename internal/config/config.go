// Package config loads process configuration from environment variables
// (and an optional config.yaml) the way ArthurCRodrigues-transcode-worker's
// worker config does: viper defaults, env override, unmarshal, validate.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all static configuration for the server, worker, and
// janitor processes (spec.md §6's environment variables, plus the ambient
// variables SPEC_FULL.md §6 adds).
type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	DatabaseURL string `mapstructure:"database_url"`

	AssetsDir      string `mapstructure:"assets_dir"`
	ScratchDir     string `mapstructure:"scratch_dir"`
	StorageBackend string `mapstructure:"storage_backend"`

	S3Bucket          string `mapstructure:"s3_bucket"`
	S3Region          string `mapstructure:"s3_region"`
	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3BaseURL         string `mapstructure:"s3_base_url"`

	DefaultApiKey     string `mapstructure:"default_api_key"`
	RateLimitPerMin   int    `mapstructure:"rate_limit_per_min"`
	WorkerConcurrency map[string]int `mapstructure:"worker_concurrency"`

	TranscoderBin      string `mapstructure:"transcoder_bin"`
	TranscoderProbeBin string `mapstructure:"transcoder_probe_bin"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	GenerationTimeoutMs int `mapstructure:"generation_timeout_ms"`
	GracefulShutdownSec int `mapstructure:"graceful_shutdown_sec"`

	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`

	OtelEnabled      bool    `mapstructure:"otel_enabled"`
	OtelEndpoint     string  `mapstructure:"otel_exporter_otlp_endpoint"`
	OtelSamplingRate float64 `mapstructure:"otel_sampling_rate"`
}

// Load reads configuration from config.yaml (optional) layered under
// environment variables named after each key in upper case (PORT,
// DATABASE_URL, S3_BUCKET, ...). DATABASE_URL is required; boot
// fails without it, per spec.md §6.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("assets_dir", "./data/assets")
	v.SetDefault("scratch_dir", "./data/tmp")
	v.SetDefault("storage_backend", "local")
	v.SetDefault("rate_limit_per_min", 60)
	v.SetDefault("worker_concurrency", map[string]int{
		"pipeline": 4,
	})
	v.SetDefault("transcoder_bin", "ffmpeg")
	v.SetDefault("transcoder_probe_bin", "ffprobe")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "server.log")
	v.SetDefault("generation_timeout_ms", 15*60*1000)
	v.SetDefault("graceful_shutdown_sec", 30)
	v.SetDefault("otel_sampling_rate", 0.1)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only consults AutomaticEnv for keys viper already knows, so
	// keys without a default are bound explicitly.
	for _, key := range []string{"database_url", "s3_bucket", "s3_region", "s3_endpoint", "s3_access_key_id", "s3_secret_access_key", "s3_base_url", "default_api_key", "redis_host", "redis_port", "redis_password", "otel_enabled", "otel_exporter_otlp_endpoint"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding into struct: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.StorageBackend != "local" && cfg.StorageBackend != "s3" {
		return fmt.Errorf("config: storage_backend must be 'local' or 's3', got %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "s3" && cfg.S3Bucket == "" {
		return fmt.Errorf("config: s3_bucket is required when storage_backend=s3")
	}
	if len(cfg.WorkerConcurrency) == 0 {
		cfg.WorkerConcurrency = map[string]int{"pipeline": 4}
	}
	return nil
}
