package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satoruIndexer/internal/model"
	"satoruIndexer/internal/storage"
)

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://satoru:xxxxx@db:5432/indexer", redactDSN("postgres://satoru:secret@db:5432/indexer"))
	assert.Equal(t, "postgres://db/indexer", redactDSN("postgres://db/indexer"))
	assert.Equal(t, "host=db user=satoru", redactDSN("host=db user=satoru"))
	assert.Equal(t, "", redactDSN(""))
}

func TestScanEventsWritesInvalidLines(t *testing.T) {
	errPath := filepath.Join(t.TempDir(), "errors.jsonl")
	errWriter := storage.NewJsonlStorage(errPath)

	input := strings.Join([]string{
		`{"event_key":"k1","block_number":1,"transaction_hash":"0x1","data":["aa"]}`,
		``,
		`not json`,
		`{"event_key":"k2","block_number":2,"transaction_hash":"0x2","data":"aa,bb"}`,
	}, "\n")

	out := make(chan model.RawEvent, 4)
	invalid, err := scanEvents(context.Background(), strings.NewReader(input), out, errWriter)
	require.NoError(t, err)
	close(out)

	assert.Equal(t, 1, invalid)
	var keys []string
	for ev := range out {
		keys = append(keys, ev.EventKey)
	}
	assert.Equal(t, []string{"k1", "k2"}, keys)

	file, err := os.Open(errPath)
	require.NoError(t, err)
	defer file.Close()
	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"outcome":"invalid"`)
	assert.False(t, scanner.Scan())
}

func TestWriteDecodeErrorAppendsLines(t *testing.T) {
	errPath := filepath.Join(t.TempDir(), "out", "errors.jsonl")
	errWriter := storage.NewJsonlStorage(errPath)

	event := model.RawEvent{EventKey: "k", BlockNumber: 7, TransactionHash: "0x7", EventIndex: 1}
	require.NoError(t, writeDecodeError(errWriter, decodeErrorFromEvent(event, model.OutcomeUnknownEvent, errors.New("no decoder"))))
	require.NoError(t, writeDecodeError(errWriter, decodeErrorFromEvent(event, model.OutcomeInsertFailed, errors.New("conn reset"))))
	require.NoError(t, writeDecodeError(nil, model.DecodeError{}))

	data, err := os.ReadFile(errPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"transaction_hash":"0x7"`)
	assert.Contains(t, lines[1], "conn reset")
}
