package model

// Decode outcomes written with a DecodeError.
const (
	OutcomeInvalid      = "invalid"
	OutcomeUnknownEvent = "unknown_event"
	OutcomeInsertFailed = "insert_failed"
)

// DecodeError records a raw event that could not be turned into a stored record.
type DecodeError struct {
	BlockNumber     int64  `json:"block_number"`
	TransactionHash string `json:"transaction_hash"`
	EventIndex      uint64 `json:"event_index"`
	FromAddress     string `json:"from_address,omitempty"`
	EventKey        string `json:"event_key"`
	Outcome         string `json:"outcome"`
	Error           string `json:"error"`
}
