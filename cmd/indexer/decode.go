package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"satoruIndexer/internal/config"
	"satoruIndexer/internal/metrics"
	"satoruIndexer/internal/model"
	"satoruIndexer/internal/pipeline"
	"satoruIndexer/internal/satoru"
	"satoruIndexer/internal/storage"
	"satoruIndexer/internal/storage/postgres"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := satoru.NewDefaultRegistry(satoru.Config{KeyMap: cfg.EventKeyMap})
	if err != nil {
		return err
	}

	var sink storage.Sink
	switch cfg.Sink {
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		sink = store
	default:
		if cfg.Out == "" {
			return fmt.Errorf("output path is required")
		}
		if err := os.Remove(cfg.Out); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reset output: %w", err)
		}
		sink = storage.NewJsonlStorage(cfg.Out)
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	if err := os.Remove(cfg.Errors); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reset errors file: %w", err)
	}
	errWriter := storage.NewJsonlStorage(cfg.Errors)

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("sink", cfg.Sink),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("workers", cfg.Workers),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("event_keys", len(registry.Keys())),
	)

	events := make(chan model.RawEvent, cfg.Workers*16)
	var invalid int
	var scanErr error
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		defer close(events)
		invalid, scanErr = scanEvents(ctx, inputFile, events, errWriter)
	}()

	p := pipeline.New(registry, sink, pipeline.Config{Workers: cfg.Workers, BatchSize: cfg.BatchSize}, m, logger)
	stats, runErr := p.Run(ctx, events, func(r pipeline.Result) {
		if r.Err == nil {
			return
		}
		outcome := model.OutcomeInsertFailed
		if errors.Is(r.Err, satoru.ErrUnknownEvent) {
			outcome = model.OutcomeUnknownEvent
			logger.Debug("skip unknown event", zap.String("event_key", r.Event.EventKey), zap.String("event_id", r.Event.ID()))
		} else {
			logger.Error("insert failed", zap.String("event_id", r.Event.ID()), zap.Error(r.Err))
		}
		if err := writeDecodeError(errWriter, decodeErrorFromEvent(r.Event, outcome, r.Err)); err != nil {
			logger.Error("write decode error", zap.Error(err))
		}
	})
	<-scanDone

	if runErr != nil {
		return runErr
	}
	if scanErr != nil {
		return fmt.Errorf("scan input: %w", scanErr)
	}

	logger.Info("decode complete",
		zap.Int("total", stats.Total+invalid),
		zap.Int("decoded", stats.Decoded),
		zap.Int("unknown", stats.Unknown),
		zap.Int("invalid", invalid),
		zap.Int("failed", stats.Failed),
	)

	if stats.Failed > 0 {
		return fmt.Errorf("%d records failed to insert", stats.Failed)
	}
	return nil
}

// scanEvents parses JSONL raw events into the channel. Lines that do not parse
// are written to the errors file.
func scanEvents(ctx context.Context, r io.Reader, out chan<- model.RawEvent, errWriter decodeErrorWriter) (int, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	invalid := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event model.RawEvent
		if err := json.Unmarshal(line, &event); err != nil {
			invalid++
			if werr := writeDecodeError(errWriter, model.DecodeError{Outcome: model.OutcomeInvalid, Error: err.Error()}); werr != nil {
				return invalid, werr
			}
			continue
		}

		select {
		case out <- event:
		case <-ctx.Done():
			return invalid, nil
		}
	}
	return invalid, scanner.Err()
}

func decodeErrorFromEvent(event model.RawEvent, outcome string, err error) model.DecodeError {
	return model.DecodeError{
		BlockNumber:     event.BlockNumber,
		TransactionHash: event.TransactionHash,
		EventIndex:      event.EventIndex,
		FromAddress:     event.FromAddress,
		EventKey:        event.EventKey,
		Outcome:         outcome,
		Error:           err.Error(),
	}
}

// decodeErrorWriter receives the error lines of the decode command.
type decodeErrorWriter interface {
	PutDecodeErrors(errs []model.DecodeError) error
}

func writeDecodeError(writer decodeErrorWriter, errRecord model.DecodeError) error {
	if writer == nil {
		return nil
	}
	return writer.PutDecodeErrors([]model.DecodeError{errRecord})
}
