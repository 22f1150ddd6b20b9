package storage

import (
	"context"

	"satoruIndexer/internal/model"
)

// Storage defines a sink for raw events fetched from the chain.
type Storage interface {
	PutEventBatch(events []model.RawEvent) error
}

// Sink persists decoded records. Each Insert is independent: a failure leaves
// no partial state for that record and does not affect other records.
type Sink interface {
	Insert(ctx context.Context, rec model.Record) error
}

// BatchSink is a Sink that can store several records in one round trip. A
// failed batch stores none of its records.
type BatchSink interface {
	Sink
	InsertBatch(ctx context.Context, recs []model.Record) error
}
