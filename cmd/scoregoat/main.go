package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/IshaanNene/scoregoat/internal/bus"
	"github.com/IshaanNene/scoregoat/internal/bus/inmemory"
	"github.com/IshaanNene/scoregoat/internal/bus/natsbus"
	"github.com/IshaanNene/scoregoat/internal/codec"
	"github.com/IshaanNene/scoregoat/internal/codec/brotlicodec"
	"github.com/IshaanNene/scoregoat/internal/codec/jsoncodec"
	"github.com/IshaanNene/scoregoat/internal/config"
	"github.com/IshaanNene/scoregoat/internal/states"
	"github.com/IshaanNene/scoregoat/internal/states/memorybackend"
	"github.com/IshaanNene/scoregoat/internal/states/mongobackend"
	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/strategy"
	"github.com/IshaanNene/scoregoat/internal/strategy/breadthfirst"
	"github.com/IshaanNene/scoregoat/internal/strategy/contentscore"
	"github.com/IshaanNene/scoregoat/internal/worker"
)

var (
	cfgFile         string
	strategyFlag    string
	partitionIDFlag int
	logLevelFlag    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scoregoat",
		Short: "scoregoat — distributed crawl-frontier strategy worker",
		Long: `scoregoat runs a single strategy-worker partition: it consumes a
spider-log partition, replays each event through a pluggable crawling
strategy against a shared states backend, and emits scoring decisions
to the scoring log.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (required)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCmd creates the "run" subcommand: the main worker entrypoint.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the strategy worker",
		RunE:  runWorker,
	}

	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "crawling strategy override (breadthfirst, contentscore)")
	cmd.Flags().IntVar(&partitionIDFlag, "partition-id", -1, "scoring partition id override")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "log level override: debug, info, warn, error")

	return cmd
}

func runWorker(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	ctx := context.Background()

	messageBus, err := buildBus(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build message bus: %w", err)
	}

	wireCodec := buildCodec(cfg)

	backend, err := buildBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("build states backend: %w", err)
	}

	consumer, err := messageBus.Consumer(cfg.ScoringPartitionID)
	if err != nil {
		return fmt.Errorf("create consumer for partition %d: %w", cfg.ScoringPartitionID, err)
	}
	producer, err := messageBus.Producer()
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}

	emitter := worker.NewScoreEmitter(wireCodec, producer)
	strat, err := buildStrategy(cfg, emitter, logger)
	if err != nil {
		return fmt.Errorf("build strategy: %w", err)
	}

	sinks := buildSinks(cfg)

	w := worker.New(worker.Config{
		Consumer:      consumer,
		Producer:      producer,
		Codec:         wireCodec,
		Backend:       backend,
		Strategy:      strat,
		JobID:         cfg.JobID,
		PartitionID:   cfg.ScoringPartitionID,
		BatchSize:     cfg.SpiderLogConsumerBatchSize,
		FlushInterval: cfg.SWFlushInterval,
		Sinks:         sinks,
		Logger:        logger,
	})

	logger.Info("starting strategy worker",
		"partition_id", cfg.ScoringPartitionID,
		"strategy", cfg.CrawlingStrategy,
		"message_bus", cfg.MessageBus.Driver,
		"states_backend", cfg.StatesBackend.Driver,
	)

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("worker run: %w", err)
	}
	return nil
}

func buildBus(ctx context.Context, cfg *config.Config) (bus.MessageBus, error) {
	switch cfg.MessageBus.Driver {
	case "nats":
		return natsbus.New(ctx, cfg.MessageBus.URL, cfg.SpiderLogPartitions)
	default:
		return inmemory.New(cfg.SpiderLogPartitions), nil
	}
}

func buildCodec(cfg *config.Config) codec.Codec {
	base := jsoncodec.New()
	if cfg.MessageBusCodec.Driver == "brotli+json" {
		return brotlicodec.New(base, cfg.MessageBusCodec.CompressMinBytes)
	}
	return base
}

func buildBackend(cfg *config.Config, logger *slog.Logger) (states.Backend, error) {
	switch cfg.StatesBackend.Driver {
	case "mongo":
		return mongobackend.New(cfg.StatesBackend.MongoURI, cfg.StatesBackend.MongoDatabase, cfg.StatesBackend.MongoCollection, logger)
	default:
		return memorybackend.New(), nil
	}
}

func buildStrategy(cfg *config.Config, emitter *worker.ScoreEmitter, logger *slog.Logger) (strategy.Strategy, error) {
	switch cfg.CrawlingStrategy {
	case "contentscore":
		return contentscore.New(emitter, 0, logger), nil
	case "breadthfirst":
		return breadthfirst.New(emitter, 0, 0, logger), nil
	default:
		return nil, fmt.Errorf("unknown crawling_strategy %q", cfg.CrawlingStrategy)
	}
}

func buildSinks(cfg *config.Config) []stats.Sink {
	var sinks []stats.Sink
	if cfg.Stats.PrometheusEnabled {
		sink := stats.NewPrometheusSink()
		if err := sink.StartServer(cfg.Stats.PrometheusAddr, "/metrics"); err == nil {
			sinks = append(sinks, sink)
		}
	}
	if cfg.Stats.OTelEnabled {
		meter := otel.Meter("scoregoat")
		sinks = append(sinks, stats.NewOTelSink(meter))
	}
	return sinks
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scoregoat %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting effective
// configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("ScoringPartitionID:         %d\n", cfg.ScoringPartitionID)
			fmt.Printf("SpiderLogPartitions:        %d\n", cfg.SpiderLogPartitions)
			fmt.Printf("SpiderLogConsumerBatchSize: %d\n", cfg.SpiderLogConsumerBatchSize)
			fmt.Printf("SWFlushInterval:            %s\n", cfg.SWFlushInterval)
			fmt.Printf("CrawlingStrategy:           %s\n", cfg.CrawlingStrategy)
			fmt.Printf("\nMessageBus:\n")
			fmt.Printf("  Driver: %s\n", cfg.MessageBus.Driver)
			fmt.Printf("  URL:    %s\n", cfg.MessageBus.URL)
			fmt.Printf("\nMessageBusCodec:\n")
			fmt.Printf("  Driver:           %s\n", cfg.MessageBusCodec.Driver)
			fmt.Printf("  CompressMinBytes: %d\n", cfg.MessageBusCodec.CompressMinBytes)
			fmt.Printf("\nStatesBackend:\n")
			fmt.Printf("  Driver: %s\n", cfg.StatesBackend.Driver)
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:  %s\n", cfg.Logging.Level)
			fmt.Printf("  Format: %s\n", cfg.Logging.Format)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the effective config.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config,
// matching spec.md §6.2's --strategy/--partition-id/--log-level
// overrides.
func applyCLIOverrides(cfg *config.Config) {
	if strategyFlag != "" {
		cfg.CrawlingStrategy = strategyFlag
	}
	if partitionIDFlag >= 0 {
		cfg.ScoringPartitionID = partitionIDFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
}
