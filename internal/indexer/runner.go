package indexer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"satoruIndexer/internal/chain"
	"satoruIndexer/internal/metrics"
	"satoruIndexer/internal/model"
	"satoruIndexer/internal/storage"
)

// EventSource is the subset of the node client the runner uses.
type EventSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	AllEvents(ctx context.Context, filter chain.EventFilter) ([]chain.EmittedEvent, error)
}

// RunConfig holds runtime settings for the indexer. Addresses and Keys are
// canonical words as returned by ParseAddresses and ParseKeys.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Addresses    []string
	Keys         []string
	BatchSize    uint64
	ChunkSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner streams events from the node and writes them to storage.
type Runner struct {
	cfg        RunConfig
	source     EventSource
	storage    storage.Storage
	checkpoint Checkpointer
	metrics    *metrics.Metrics
	logger     *zap.Logger
	seen       map[string]struct{}
}

// NewRunner builds a Runner with its dependencies. A nil checkpointer
// disables resumption.
func NewRunner(cfg RunConfig, source EventSource, sink storage.Storage, checkpoint Checkpointer, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		storage:    sink,
		checkpoint: checkpoint,
		metrics:    m,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("event source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.latestBlockWithRetry(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch events", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		fetched, err := r.fetchBatch(ctx, blockRange)
		if err != nil {
			return fmt.Errorf("get events: %w", err)
		}

		events, err := r.convert(ctx, fetched)
		if err != nil {
			return err
		}

		if err := r.storage.PutEventBatch(events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		r.metrics.AddFetched(len(events))

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}
		r.metrics.SetLastBlock(blockRange.To)

		r.logger.Info("batch complete", zap.Int("events", len(events)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

// fetchBatch queries every configured address (or all contracts when none is
// configured) and orders the result by block number.
func (r *Runner) fetchBatch(ctx context.Context, blockRange BlockRange) ([]chain.EmittedEvent, error) {
	addresses := r.cfg.Addresses
	if len(addresses) == 0 {
		addresses = []string{""}
	}

	var keys [][]string
	if len(r.cfg.Keys) > 0 {
		selectors := make([]string, len(r.cfg.Keys))
		for i, key := range r.cfg.Keys {
			selectors[i] = rpcFelt(key)
		}
		keys = [][]string{selectors}
	}

	var out []chain.EmittedEvent
	for _, address := range addresses {
		filter := chain.EventFilter{
			FromBlock: chain.BlockID{Number: blockRange.From},
			ToBlock:   chain.BlockID{Number: blockRange.To},
			Keys:      keys,
			ChunkSize: r.cfg.ChunkSize,
		}
		if address != "" {
			filter.Address = rpcFelt(address)
		}

		var page []chain.EmittedEvent
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			page, err = r.source.AllEvents(ctx, filter)
			if err != nil {
				r.logger.Warn("get events failed", zap.Error(err), zap.String("address", filter.Address), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].BlockNumber < out[j].BlockNumber })
	return out, nil
}

// convert assigns per-transaction ordinals, drops events already seen and
// attaches block timestamps.
func (r *Runner) convert(ctx context.Context, fetched []chain.EmittedEvent) ([]model.RawEvent, error) {
	ordinals := make(map[string]uint64)
	events := make([]model.RawEvent, 0, len(fetched))
	for _, ev := range fetched {
		txKey := fmt.Sprintf("%d:%s", ev.BlockNumber, prefixed(ev.TransactionHash))
		ordinal := ordinals[txKey]
		ordinals[txKey] = ordinal + 1

		if r.isDuplicate(txKey, ordinal) {
			continue
		}

		ts, err := r.blockTimestampWithRetry(ctx, ev.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("block timestamp %d: %w", ev.BlockNumber, err)
		}

		raw, ok := buildRawEvent(ev, ordinal, ts)
		if !ok {
			r.logger.Warn("skip event without selector", zap.Uint64("block_number", ev.BlockNumber), zap.String("tx", ev.TransactionHash))
			continue
		}
		events = append(events, raw)
	}
	return events, nil
}

func (r *Runner) latestBlockWithRetry(ctx context.Context) (uint64, error) {
	var n uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		n, err = r.source.BlockNumber(ctx)
		if err != nil {
			r.logger.Warn("block number fetch failed", zap.Error(err))
		}
		return err
	})
	return n, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.source.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(txKey string, ordinal uint64) bool {
	id := fmt.Sprintf("%s:%d", txKey, ordinal)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
