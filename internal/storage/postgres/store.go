package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"satoruIndexer/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store persists decoded records and indexer checkpoints in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the record and state tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Insert stores one record. Re-inserting a record already stored for the
// same transaction and key is a no-op.
func (s *Store) Insert(ctx context.Context, rec model.Record) error {
	stmt, err := insertStatement(rec)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, stmt.sql, stmt.args...); err != nil {
		return fmt.Errorf("insert %s: %w", rec.EventName(), err)
	}
	return nil
}

// InsertBatch stores records in one round trip. The batch runs in an implicit
// transaction, so the first failing statement rolls back every record.
func (s *Store) InsertBatch(ctx context.Context, recs []model.Record) error {
	if len(recs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range recs {
		stmt, err := insertStatement(rec)
		if err != nil {
			return err
		}
		batch.Queue(stmt.sql, stmt.args...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, rec := range recs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert %s: %w", rec.EventName(), err)
		}
	}
	return nil
}

// LoadState returns the last processed block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last processed block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}
