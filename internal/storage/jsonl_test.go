package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satoruIndexer/internal/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestJsonlStorageAppendsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	store := NewJsonlStorage(path)

	require.NoError(t, store.PutEventBatch(nil))
	require.NoError(t, store.PutEventBatch([]model.RawEvent{
		{EventKey: "k1", BlockNumber: 1, TransactionHash: "0x1", Data: []string{"aa"}},
		{EventKey: "k2", BlockNumber: 2, TransactionHash: "0x2"},
	}))
	require.NoError(t, store.PutEventBatch([]model.RawEvent{
		{EventKey: "k3", BlockNumber: 3, TransactionHash: "0x3"},
	}))

	lines := readLines(t, path)
	require.Len(t, lines, 3)

	var last model.RawEvent
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, "k3", last.EventKey)
	assert.Equal(t, int64(3), last.BlockNumber)
}

func TestJsonlStorageInsertWritesEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	store := NewJsonlStorage(path)

	key := "0x01"
	var sink Sink = store
	require.NoError(t, sink.Insert(context.Background(), &model.OrderUpdate{
		EventMeta: model.EventMeta{BlockNumber: 9, TransactionHash: "0x9"},
		Key:       &key,
	}))

	lines := readLines(t, path)
	require.Len(t, lines, 1)

	var env model.RecordEnvelope
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &env))
	assert.Equal(t, model.EventOrderUpdated, env.EventName)
	upd, ok := env.Record.(*model.OrderUpdate)
	require.True(t, ok)
	assert.Equal(t, "0x01", *upd.Key)
	assert.Nil(t, upd.SizeDeltaUSD)
}

func TestJsonlStorageInsertHonorsCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJsonlStorage(path).Insert(ctx, &model.OrderExecution{})
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestJsonlStorageDecodeErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	store := NewJsonlStorage(path)

	require.NoError(t, store.PutDecodeErrors([]model.DecodeError{
		{BlockNumber: 1, EventKey: "k", Outcome: model.OutcomeUnknownEvent, Error: "unrecognized event type: k"},
	}))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"outcome":"unknown_event"`)
}
