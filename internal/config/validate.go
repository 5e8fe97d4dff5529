package config

import "fmt"

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.SpiderLogPartitions < 1 {
		return fmt.Errorf("spider_log_partitions must be >= 1, got %d", cfg.SpiderLogPartitions)
	}
	if err := ValidatePartition(cfg.ScoringPartitionID, cfg.SpiderLogPartitions); err != nil {
		return err
	}
	if cfg.SpiderLogConsumerBatchSize < 1 {
		return fmt.Errorf("spider_log_consumer_batch_size must be >= 1, got %d", cfg.SpiderLogConsumerBatchSize)
	}
	if cfg.SWFlushInterval <= 0 {
		return fmt.Errorf("sw_flush_interval must be > 0")
	}

	validStrategies := map[string]bool{"breadthfirst": true, "contentscore": true}
	if !validStrategies[cfg.CrawlingStrategy] {
		return fmt.Errorf("crawling_strategy %q is not supported (valid: breadthfirst, contentscore)", cfg.CrawlingStrategy)
	}

	validBusDrivers := map[string]bool{"inmemory": true, "nats": true}
	if !validBusDrivers[cfg.MessageBus.Driver] {
		return fmt.Errorf("message_bus.driver %q is not supported (valid: inmemory, nats)", cfg.MessageBus.Driver)
	}
	if cfg.MessageBus.Driver == "nats" && cfg.MessageBus.URL == "" {
		return fmt.Errorf("message_bus.url is required when message_bus.driver is 'nats'")
	}

	validCodecDrivers := map[string]bool{"json": true, "brotli+json": true}
	if !validCodecDrivers[cfg.MessageBusCodec.Driver] {
		return fmt.Errorf("message_bus_codec.driver %q is not supported (valid: json, brotli+json)", cfg.MessageBusCodec.Driver)
	}
	if cfg.MessageBusCodec.CompressMinBytes < 0 {
		return fmt.Errorf("message_bus_codec.compress_min_bytes must be >= 0")
	}

	validBackendDrivers := map[string]bool{"memory": true, "mongo": true}
	if !validBackendDrivers[cfg.StatesBackend.Driver] {
		return fmt.Errorf("states_backend.driver %q is not supported (valid: memory, mongo)", cfg.StatesBackend.Driver)
	}
	if cfg.StatesBackend.Driver == "mongo" && cfg.StatesBackend.MongoURI == "" {
		return fmt.Errorf("states_backend.mongo_uri is required when states_backend.driver is 'mongo'")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Stats.PrometheusEnabled && cfg.Stats.PrometheusAddr == "" {
		return fmt.Errorf("stats.prometheus_addr is required when stats.prometheus_enabled is true")
	}

	return nil
}

// ValidatePartition checks that partitionID falls within
// [0, totalPartitions). Supplemented from original_source's
// frontera/worker/strategy.py setup_environment, which refuses to
// start a strategy worker whose configured partition id does not
// index an actual spider-log partition.
func ValidatePartition(partitionID, totalPartitions int) error {
	if totalPartitions < 1 {
		return fmt.Errorf("spider_log_partitions must be >= 1, got %d", totalPartitions)
	}
	if partitionID < 0 || partitionID >= totalPartitions {
		return fmt.Errorf("scoring_partition_id must be in [0, %d), got %d", totalPartitions, partitionID)
	}
	return nil
}
