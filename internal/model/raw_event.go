package model

import (
	"encoding/json"
	"fmt"

	"satoruIndexer/internal/felt"
)

// RawEvent is a Starknet event as received from the log source. Data holds the
// payload words in order; keys beyond the selector are not used by decoders.
type RawEvent struct {
	EventKey        string   `json:"event_key"`
	BlockNumber     int64    `json:"block_number"`
	Timestamp       *string  `json:"timestamp,omitempty"`
	TransactionHash string   `json:"transaction_hash"`
	FromAddress     string   `json:"from_address,omitempty"`
	EventIndex      uint64   `json:"event_index"`
	Data            []string `json:"data"`
}

// MarshalJSON ensures RawEvent is encoded with stable field names.
func (e RawEvent) MarshalJSON() ([]byte, error) {
	type Alias RawEvent
	return json.Marshal(Alias(e))
}

// UnmarshalJSON decodes a RawEvent. The data field may be a JSON array of
// words or a single comma-joined string.
func (e *RawEvent) UnmarshalJSON(data []byte) error {
	type Alias RawEvent
	var a struct {
		Alias
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	words, err := decodeWords(a.Data)
	if err != nil {
		return err
	}

	*e = RawEvent(a.Alias)
	e.Data = words
	return nil
}

func decodeWords(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, fmt.Errorf("data must be an array or a comma-joined string")
	}
	return felt.SplitWords(joined), nil
}

// ID identifies an event within its transaction.
func (e RawEvent) ID() string {
	return fmt.Sprintf("%d:%s:%d", e.BlockNumber, e.TransactionHash, e.EventIndex)
}
