package chain

import "encoding/json"

// BlockID selects a block by number.
type BlockID struct {
	Number uint64
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]uint64{"block_number": b.Number})
}

// EventFilter is the starknet_getEvents filter. Address and Keys are optional.
// Keys holds the accepted values per key position; only the first position
// (the event selector) is used by the indexer.
type EventFilter struct {
	FromBlock         BlockID
	ToBlock           BlockID
	Address           string
	Keys              [][]string
	ChunkSize         int
	ContinuationToken string
}

// MarshalJSON encodes the filter as the positional starknet_getEvents parameter.
func (f EventFilter) MarshalJSON() ([]byte, error) {
	type body struct {
		FromBlock         BlockID    `json:"from_block"`
		ToBlock           BlockID    `json:"to_block"`
		Address           string     `json:"address,omitempty"`
		Keys              [][]string `json:"keys,omitempty"`
		ChunkSize         int        `json:"chunk_size"`
		ContinuationToken string     `json:"continuation_token,omitempty"`
	}
	return json.Marshal(body(f))
}

// EmittedEvent is an event as returned by the node.
type EmittedEvent struct {
	FromAddress     string   `json:"from_address"`
	Keys            []string `json:"keys"`
	Data            []string `json:"data"`
	BlockHash       string   `json:"block_hash"`
	BlockNumber     uint64   `json:"block_number"`
	TransactionHash string   `json:"transaction_hash"`
}

// EventsPage is one page of starknet_getEvents results.
type EventsPage struct {
	Events            []EmittedEvent `json:"events"`
	ContinuationToken string         `json:"continuation_token"`
}
