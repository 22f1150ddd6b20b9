package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satoruIndexer/internal/chain"
	"satoruIndexer/internal/metrics"
	"satoruIndexer/internal/model"
)

type fakeSource struct {
	latest   uint64
	events   []chain.EmittedEvent
	filters  []chain.EventFilter
	failures int
}

func (s *fakeSource) BlockNumber(ctx context.Context) (uint64, error) { return s.latest, nil }

func (s *fakeSource) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	return 1700000000 + number, nil
}

func (s *fakeSource) AllEvents(ctx context.Context, filter chain.EventFilter) ([]chain.EmittedEvent, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("node unavailable")
	}
	s.filters = append(s.filters, filter)
	var out []chain.EmittedEvent
	for _, ev := range s.events {
		if ev.BlockNumber >= filter.FromBlock.Number && ev.BlockNumber <= filter.ToBlock.Number {
			out = append(out, ev)
		}
	}
	return out, nil
}

type memoryStorage struct {
	batches [][]model.RawEvent
}

func (s *memoryStorage) PutEventBatch(events []model.RawEvent) error {
	s.batches = append(s.batches, events)
	return nil
}

func (s *memoryStorage) all() []model.RawEvent {
	var out []model.RawEvent
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

type memoryState struct {
	blocks map[string]uint64
}

func (s *memoryState) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	v, ok := s.blocks[name]
	return v, ok, nil
}

func (s *memoryState) SaveState(ctx context.Context, name string, block uint64) error {
	s.blocks[name] = block
	return nil
}

func sampleEvents() []chain.EmittedEvent {
	key := "0x3427759bfd3b941f14e687e129519da3c9b0046c5b9aaa290bb1dede63753b3"
	return []chain.EmittedEvent{
		{FromAddress: "0x1", Keys: []string{key}, Data: []string{"0x1"}, BlockNumber: 10, TransactionHash: "0xa"},
		{FromAddress: "0x1", Keys: []string{key}, Data: []string{"0x2"}, BlockNumber: 10, TransactionHash: "0xa"},
		{FromAddress: "0x1", Keys: nil, BlockNumber: 11, TransactionHash: "0xb"},
		{FromAddress: "0x1", Keys: []string{key}, Data: []string{"0x3"}, BlockNumber: 13, TransactionHash: "0xc"},
	}
}

func TestRunnerFetchesBatchesAndCheckpoints(t *testing.T) {
	source := &fakeSource{latest: 14, events: sampleEvents(), failures: 1}
	store := &memoryStorage{}
	state := &memoryState{blocks: map[string]uint64{}}
	checkpoint := &DBCheckpointer{Store: state, Name: "run"}

	addresses, err := ParseAddresses([]string{"0x1"})
	require.NoError(t, err)
	keys, err := ParseKeys([]string{"0x3427759bfd3b941f14e687e129519da3c9b0046c5b9aaa290bb1dede63753b3"})
	require.NoError(t, err)

	runner := NewRunner(RunConfig{
		FromBlock:  10,
		Addresses:  addresses,
		Keys:       keys,
		BatchSize:  3,
		MaxRetries: 2,
	}, source, store, checkpoint, metrics.New(), nil)
	require.NoError(t, runner.Run(context.Background()))

	events := store.all()
	require.Len(t, events, 3, "keyless event is skipped")
	assert.Equal(t, uint64(0), events[0].EventIndex)
	assert.Equal(t, uint64(1), events[1].EventIndex)
	assert.Equal(t, "2023-11-14T22:13:30Z", *events[0].Timestamp)
	assert.Equal(t, int64(13), events[2].BlockNumber)

	assert.Equal(t, uint64(14), state.blocks["run"])
	require.NotEmpty(t, source.filters)
	assert.Equal(t, "0x1", source.filters[0].Address)
	assert.Equal(t, [][]string{{"0x3427759bfd3b941f14e687e129519da3c9b0046c5b9aaa290bb1dede63753b3"}}, source.filters[0].Keys)
	assert.Equal(t, 100, source.filters[0].ChunkSize)
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	source := &fakeSource{latest: 14, events: sampleEvents()}
	store := &memoryStorage{}
	checkpoint := NewFileCheckpointer(filepath.Join(t.TempDir(), "state", "checkpoint.json"), true)
	require.NoError(t, checkpoint.Save(context.Background(), 12))

	runner := NewRunner(RunConfig{FromBlock: 10, BatchSize: 10}, source, store, checkpoint, nil, nil)
	require.NoError(t, runner.Run(context.Background()))

	events := store.all()
	require.Len(t, events, 1)
	assert.Equal(t, int64(13), events[0].BlockNumber)
	assert.Equal(t, uint64(13), source.filters[0].FromBlock.Number)
	assert.Equal(t, "", source.filters[0].Address)
	assert.Nil(t, source.filters[0].Keys)

	last, ok, err := checkpoint.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(14), last)
}

func TestRunnerNothingToSync(t *testing.T) {
	source := &fakeSource{latest: 5}
	runner := NewRunner(RunConfig{FromBlock: 10, BatchSize: 10}, source, &memoryStorage{}, nil, nil, nil)
	require.NoError(t, runner.Run(context.Background()))
	assert.Empty(t, source.filters)
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	source := &fakeSource{latest: 5, failures: 5}
	runner := NewRunner(RunConfig{FromBlock: 1, BatchSize: 10, MaxRetries: 1}, source, &memoryStorage{}, nil, nil, nil)
	require.Error(t, runner.Run(context.Background()))
}

func TestRunnerDropsDuplicates(t *testing.T) {
	source := &fakeSource{latest: 10, events: sampleEvents()[:2]}
	store := &memoryStorage{}
	runner := NewRunner(RunConfig{FromBlock: 10, ToBlock: 10, BatchSize: 1}, source, store, nil, nil, nil)

	require.NoError(t, runner.Run(context.Background()))
	require.NoError(t, runner.Run(context.Background()))
	assert.Len(t, store.all(), 2)
}

func TestFileCheckpointerDisabled(t *testing.T) {
	cp := NewFileCheckpointer(filepath.Join(t.TempDir(), "cp.json"), false)
	require.NoError(t, cp.Save(context.Background(), 9))
	_, ok, err := cp.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
