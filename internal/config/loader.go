package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment over the defaults.
// Priority (highest to lowest): env vars > config file > defaults. CLI
// flag overrides are not read here; cmd/scoregoat applies them to the
// returned Config.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SCOREGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("scoregoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".scoregoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	return Load(path)
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scoring_partition_id", cfg.ScoringPartitionID)
	v.SetDefault("spider_log_partitions", cfg.SpiderLogPartitions)
	v.SetDefault("spider_log_consumer_batch_size", cfg.SpiderLogConsumerBatchSize)
	v.SetDefault("sw_flush_interval", cfg.SWFlushInterval)
	v.SetDefault("job_id", cfg.JobID)
	v.SetDefault("crawling_strategy", cfg.CrawlingStrategy)

	v.SetDefault("message_bus.driver", cfg.MessageBus.Driver)
	v.SetDefault("message_bus.url", cfg.MessageBus.URL)

	v.SetDefault("message_bus_codec.driver", cfg.MessageBusCodec.Driver)
	v.SetDefault("message_bus_codec.compress_min_bytes", cfg.MessageBusCodec.CompressMinBytes)

	v.SetDefault("states_backend.driver", cfg.StatesBackend.Driver)
	v.SetDefault("states_backend.mongo_uri", cfg.StatesBackend.MongoURI)
	v.SetDefault("states_backend.mongo_database", cfg.StatesBackend.MongoDatabase)
	v.SetDefault("states_backend.mongo_collection", cfg.StatesBackend.MongoCollection)

	v.SetDefault("stats.prometheus_enabled", cfg.Stats.PrometheusEnabled)
	v.SetDefault("stats.prometheus_addr", cfg.Stats.PrometheusAddr)
	v.SetDefault("stats.otel_enabled", cfg.Stats.OTelEnabled)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)
}
