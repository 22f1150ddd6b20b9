package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"satoruIndexer/internal/chain"
	"satoruIndexer/internal/config"
	"satoruIndexer/internal/indexer"
	"satoruIndexer/internal/metrics"
	"satoruIndexer/internal/satoru"
	"satoruIndexer/internal/storage"
	"satoruIndexer/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Satoru event indexer for Starknet",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch raw Satoru events from a Starknet node",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "Starknet JSON-RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("address", nil, "emitting contract addresses (comma-separated), empty means any")
	runCmd.Flags().StringSlice("event-key", nil, "event keys to fetch (comma-separated), empty means every decodable event")
	runCmd.Flags().Uint64("batch-size", 1000, "blocks per batch")
	runCmd.Flags().Int("chunk-size", 100, "events per starknet_getEvents page")
	runCmd.Flags().String("out", "./data/events.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN, stores the checkpoint in indexer_state when set")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw events into records and store them",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "./data/events.jsonl", "input raw events JSONL")
	decodeCmd.Flags().String("sink", config.SinkJSONL, "record sink (postgres, jsonl)")
	decodeCmd.Flags().String("out", "./data/records.jsonl", "output records JSONL for the jsonl sink")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("pg-dsn", "", "Postgres DSN for the postgres sink")
	decodeCmd.Flags().Int("workers", 4, "parallel decode workers")
	decodeCmd.Flags().Int("batch-size", 100, "records per insert batch for the postgres sink (1 disables batching)")
	decodeCmd.Flags().String("event-key-map", "", "extra event key->event name mappings (comma-separated key=value)")
	decodeCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres record and state tables",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}

	keys, err := indexer.ParseKeys(cfg.EventKeys)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		registry, err := satoru.NewDefaultRegistry(satoru.Config{})
		if err != nil {
			return err
		}
		keys = registry.Keys()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	var checkpoint indexer.Checkpointer = indexer.NewFileCheckpointer(cfg.Checkpoint, cfg.CheckpointEnabled)
	if cfg.PGDSN != "" && cfg.CheckpointEnabled {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		checkpoint = &indexer.DBCheckpointer{Store: store, Name: "run:" + chainID}
	}

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Addresses:    addresses,
		Keys:         keys,
		BatchSize:    cfg.BatchSize,
		ChunkSize:    cfg.ChunkSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, storageSink, checkpoint, metrics.New(), logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain_id", chainID),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Int("event_keys", len(keys)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// redactDSN hides the password of a URL-style DSN.
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
