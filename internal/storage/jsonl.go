package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"satoruIndexer/internal/model"
)

// JsonlStorage appends raw events or decoded records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutEventBatch appends a batch of raw events as JSON lines.
func (s *JsonlStorage) PutEventBatch(events []model.RawEvent) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]any, len(events))
	for i := range events {
		values[i] = events[i]
	}
	return s.appendLines(values)
}

// Insert appends one decoded record wrapped in a RecordEnvelope.
func (s *JsonlStorage) Insert(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.appendLines([]any{model.NewRecordEnvelope(rec)})
}

// PutDecodeErrors appends failed lines.
func (s *JsonlStorage) PutDecodeErrors(errs []model.DecodeError) error {
	if len(errs) == 0 {
		return nil
	}
	values := make([]any, len(errs))
	for i := range errs {
		values[i] = errs[i]
	}
	return s.appendLines(values)
}

func (s *JsonlStorage) appendLines(values []any) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, v := range values {
		line, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal line: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
