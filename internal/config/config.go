package config

import "time"

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the strategy worker's root configuration (spec.md §6.1).
type Config struct {
	ScoringPartitionID         int           `mapstructure:"scoring_partition_id"           yaml:"scoring_partition_id"`
	SpiderLogPartitions        int           `mapstructure:"spider_log_partitions"          yaml:"spider_log_partitions"`
	SpiderLogConsumerBatchSize int           `mapstructure:"spider_log_consumer_batch_size" yaml:"spider_log_consumer_batch_size"`
	SWFlushInterval            time.Duration `mapstructure:"sw_flush_interval"              yaml:"sw_flush_interval"`
	JobID                      int64         `mapstructure:"job_id"                         yaml:"job_id"`
	CrawlingStrategy           string        `mapstructure:"crawling_strategy"              yaml:"crawling_strategy"`

	MessageBus      MessageBusConfig      `mapstructure:"message_bus"       yaml:"message_bus"`
	MessageBusCodec MessageBusCodecConfig `mapstructure:"message_bus_codec" yaml:"message_bus_codec"`
	StatesBackend   StatesBackendConfig   `mapstructure:"states_backend"    yaml:"states_backend"`
	Stats           StatsConfig           `mapstructure:"stats"             yaml:"stats"`
	Logging         LoggingConfig         `mapstructure:"logging"           yaml:"logging"`
}

// MessageBusConfig selects and configures the spider-log/scoring-log
// transport (spec.md §6.1 MESSAGE_BUS).
type MessageBusConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "inmemory" or "nats"
	URL    string `mapstructure:"url"    yaml:"url"`
}

// MessageBusCodecConfig selects and configures the wire codec
// (spec.md §6.1 MESSAGE_BUS_CODEC).
type MessageBusCodecConfig struct {
	Driver           string `mapstructure:"driver"             yaml:"driver"` // "json" or "brotli+json"
	CompressMinBytes int    `mapstructure:"compress_min_bytes" yaml:"compress_min_bytes"`
}

// StatesBackendConfig selects and configures the StatesContext's
// backing store (spec.md §4.1, §4.4).
type StatesBackendConfig struct {
	Driver          string `mapstructure:"driver"           yaml:"driver"` // "memory" or "mongo"
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// StatsConfig controls stats export sinks (spec.md §4.6).
type StatsConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusAddr    string `mapstructure:"prometheus_addr"    yaml:"prometheus_addr"`
	OTelEnabled       bool   `mapstructure:"otel_enabled"       yaml:"otel_enabled"`
}

// LoggingConfig controls logging behavior (spec.md §6.1 LOGGING_CONFIG).
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ScoringPartitionID:         0,
		SpiderLogPartitions:        1,
		SpiderLogConsumerBatchSize: 256,
		SWFlushInterval:            60 * time.Second,
		JobID:                      1,
		CrawlingStrategy:           "breadthfirst",
		MessageBus: MessageBusConfig{
			Driver: "inmemory",
		},
		MessageBusCodec: MessageBusCodecConfig{
			Driver:           "json",
			CompressMinBytes: 4096,
		},
		StatesBackend: StatesBackendConfig{
			Driver:          "memory",
			MongoDatabase:   "scoregoat",
			MongoCollection: "states",
		},
		Stats: StatsConfig{
			PrometheusEnabled: false,
			PrometheusAddr:    ":9090",
			OTelEnabled:       false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
