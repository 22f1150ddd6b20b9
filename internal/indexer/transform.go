package indexer

import (
	"time"

	"satoruIndexer/internal/chain"
	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

// buildRawEvent converts a node event. Words that are not valid felts are kept
// verbatim so payload positions never shift; decoders treat them as absent.
// Events without keys have no selector and are rejected.
func buildRawEvent(ev chain.EmittedEvent, ordinal uint64, timestamp uint64) (model.RawEvent, bool) {
	if len(ev.Keys) == 0 {
		return model.RawEvent{}, false
	}
	key, ok := felt.Canonical(ev.Keys[0])
	if !ok {
		return model.RawEvent{}, false
	}

	data := make([]string, len(ev.Data))
	for i, word := range ev.Data {
		if canonical, ok := felt.Canonical(word); ok {
			data[i] = canonical
		} else {
			data[i] = word
		}
	}

	ts := time.Unix(int64(timestamp), 0).UTC().Format(time.RFC3339)
	return model.RawEvent{
		EventKey:        key,
		BlockNumber:     int64(ev.BlockNumber),
		Timestamp:       &ts,
		TransactionHash: prefixed(ev.TransactionHash),
		FromAddress:     prefixed(ev.FromAddress),
		EventIndex:      ordinal,
		Data:            data,
	}, true
}

func prefixed(s string) string {
	if word, ok := felt.Canonical(s); ok {
		return "0x" + word
	}
	return s
}
