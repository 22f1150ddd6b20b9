// Package pipeline decodes raw events and hands the records to a sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"satoruIndexer/internal/metrics"
	"satoruIndexer/internal/model"
	"satoruIndexer/internal/satoru"
	"satoruIndexer/internal/storage"
)

// Registry resolves raw events into records.
type Registry interface {
	Decode(raw model.RawEvent) (model.Record, error)
}

// Config configures the pipeline. BatchSize above one groups decoded records
// into InsertBatch calls when the sink is a storage.BatchSink.
type Config struct {
	Workers   int
	BatchSize int
}

// unknownEventLabel labels the process duration of events with no decoder.
const unknownEventLabel = "unknown"


// InsertError reports a record the sink rejected.
type InsertError struct {
	EventName string
	TxHash    string
	Err       error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert %s (tx %s): %v", e.EventName, e.TxHash, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// Result is the outcome of one raw event.
type Result struct {
	Event    model.RawEvent
	Record   model.Record
	Err      error
	Duration time.Duration
}

// Stats counts outcomes of a run. Decoded counts records the sink accepted.
type Stats struct {
	Total   int
	Decoded int
	Unknown int
	Failed  int
}

func (s *Stats) add(r Result) {
	s.Total++
	switch {
	case r.Err == nil:
		s.Decoded++
	case errors.Is(r.Err, satoru.ErrUnknownEvent):
		s.Unknown++
	default:
		s.Failed++
	}
}

// Pipeline decodes events and inserts the records.
type Pipeline struct {
	registry  Registry
	sink      storage.Sink
	batch     storage.BatchSink
	batchSize int
	workers   int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func New(registry Registry, sink storage.Sink, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	p := &Pipeline{
		registry: registry,
		sink:     sink,
		workers:  workers,
		metrics:  m,
		logger:   logger,
	}
	if bs, ok := sink.(storage.BatchSink); ok && cfg.BatchSize > 1 {
		p.batch = bs
		p.batchSize = cfg.BatchSize
	}
	return p
}

// Process decodes one event and inserts the record. Unknown keys return an
// error matching satoru.ErrUnknownEvent and nothing is inserted. Sink failures
// return an *InsertError; there is no retry.
func (p *Pipeline) Process(ctx context.Context, raw model.RawEvent) (model.Record, error) {
	start := time.Now()

	rec, err := p.decode(raw, start)
	if err != nil {
		return nil, err
	}
	return rec, p.insert(ctx, raw, rec, start)
}

func (p *Pipeline) decode(raw model.RawEvent, start time.Time) (model.Record, error) {
	rec, err := p.registry.Decode(raw)
	if err != nil {
		p.metrics.IncUnknown()
		p.metrics.ObserveProcess(unknownEventLabel, time.Since(start))
		return nil, err
	}
	p.metrics.IncDecoded(rec.EventName())
	return rec, nil
}

func (p *Pipeline) insert(ctx context.Context, raw model.RawEvent, rec model.Record, start time.Time) error {
	name := rec.EventName()
	err := p.sink.Insert(ctx, rec)
	p.metrics.ObserveProcess(name, time.Since(start))
	if err != nil {
		p.metrics.IncInsertFailure(name)
		return &InsertError{EventName: name, TxHash: raw.TransactionHash, Err: err}
	}
	p.metrics.IncInserted(name)
	return nil
}

// Run processes events from the channel with the configured number of workers
// until the channel is closed or ctx is done. onResult is called from a single
// goroutine, in completion order.
func (p *Pipeline) Run(ctx context.Context, events <-chan model.RawEvent, onResult func(Result)) (Stats, error) {
	results := make(chan Result, p.workers*4)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, events, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	emit := func(r Result) {
		stats.add(r)
		if onResult != nil {
			onResult(r)
		}
	}

	if p.batch == nil {
		for r := range results {
			emit(r)
		}
	} else {
		p.collectBatches(ctx, results, emit)
	}

	p.logger.Debug("pipeline drained",
		zap.Int("total", stats.Total),
		zap.Int("decoded", stats.Decoded),
		zap.Int("unknown", stats.Unknown),
		zap.Int("failed", stats.Failed),
	)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (p *Pipeline) worker(ctx context.Context, id int, events <-chan model.RawEvent, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			if p.batch != nil {
				results <- p.decodeSafe(id, raw)
				continue
			}
			results <- p.processSafe(ctx, id, raw)
		}
	}
}

// processSafe converts a panic in a sink into a failed result.
func (p *Pipeline) processSafe(ctx context.Context, workerID int, raw model.RawEvent) (result Result) {
	start := time.Now()
	result.Event = raw

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing event",
				zap.Int("worker", workerID),
				zap.String("event_id", raw.ID()),
				zap.Any("panic", r),
			)
			result.Err = fmt.Errorf("panic while processing event: %v", r)
			result.Duration = time.Since(start)
		}
	}()

	result.Record, result.Err = p.Process(ctx, raw)
	result.Duration = time.Since(start)
	return result
}

// decodeSafe decodes without inserting. The returned Result carries the
// record for the batch collector.
func (p *Pipeline) decodeSafe(workerID int, raw model.RawEvent) (result Result) {
	start := time.Now()
	result.Event = raw

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while decoding event",
				zap.Int("worker", workerID),
				zap.String("event_id", raw.ID()),
				zap.Any("panic", r),
			)
			result.Record = nil
			result.Err = fmt.Errorf("panic while decoding event: %v", r)
		}
		result.Duration = time.Since(start)
	}()

	result.Record, result.Err = p.decode(raw, start)
	return result
}

// collectBatches groups decoded records and inserts them batchSize at a time.
// Decode failures are emitted as they arrive. Remaining records are flushed
// when the results channel closes.
func (p *Pipeline) collectBatches(ctx context.Context, results <-chan Result, emit func(Result)) {
	pending := make([]Result, 0, p.batchSize)
	for r := range results {
		if r.Err != nil {
			emit(r)
			continue
		}
		pending = append(pending, r)
		if len(pending) >= p.batchSize {
			p.flush(ctx, pending, emit)
			pending = pending[:0]
		}
	}
	if len(pending) > 0 {
		p.flush(ctx, pending, emit)
	}
}

// flush inserts a batch. When the batch fails, its records are inserted one by
// one so that each failure is reported against its own event.
func (p *Pipeline) flush(ctx context.Context, batch []Result, emit func(Result)) {
	start := time.Now()
	recs := make([]model.Record, len(batch))
	for i, r := range batch {
		recs[i] = r.Record
	}

	err := p.insertBatchSafe(ctx, recs)
	elapsed := time.Since(start)
	if err == nil {
		for _, r := range batch {
			name := r.Record.EventName()
			r.Duration += elapsed
			p.metrics.ObserveProcess(name, r.Duration)
			p.metrics.IncInserted(name)
			emit(r)
		}
		return
	}

	p.logger.Warn("batch insert failed, inserting records one by one",
		zap.Int("records", len(batch)),
		zap.Error(err),
	)
	for _, r := range batch {
		emit(p.insertSafe(ctx, r, start.Add(-r.Duration)))
	}
}

func (p *Pipeline) insertBatchSafe(ctx context.Context, recs []model.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while inserting batch: %v", r)
		}
	}()
	return p.batch.InsertBatch(ctx, recs)
}

func (p *Pipeline) insertSafe(ctx context.Context, r Result, start time.Time) Result {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("panic while inserting record",
				zap.String("event_id", r.Event.ID()),
				zap.Any("panic", rec),
			)
			r.Err = fmt.Errorf("panic while inserting record: %v", rec)
			r.Duration = time.Since(start)
		}
	}()

	r.Err = p.insert(ctx, r.Event, r.Record, start)
	r.Duration = time.Since(start)
	return r
}
