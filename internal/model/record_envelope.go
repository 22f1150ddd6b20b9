package model

import (
	"encoding/json"
	"fmt"
)

// RecordEnvelope is the JSONL representation of a decoded record.
type RecordEnvelope struct {
	EventName string `json:"event_name"`
	Record    Record `json:"record"`
}

// NewRecordEnvelope wraps a record for output.
func NewRecordEnvelope(rec Record) RecordEnvelope {
	return RecordEnvelope{EventName: rec.EventName(), Record: rec}
}

// UnmarshalJSON restores the concrete record type from the event name.
func (e *RecordEnvelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		EventName string          `json:"event_name"`
		Record    json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var rec Record
	switch raw.EventName {
	case EventOrderCreated:
		rec = &Order{}
	case EventOrderUpdated:
		rec = &OrderUpdate{}
	case EventOrderCancelled, EventOrderFrozen:
		rec = &OrderStatusChange{}
	case EventOrderExecuted:
		rec = &OrderExecution{}
	case EventDepositCreated:
		rec = &Deposit{}
	case EventWithdrawalCreated:
		rec = &Withdrawal{}
	default:
		return fmt.Errorf("unknown event name: %s", raw.EventName)
	}

	if err := json.Unmarshal(raw.Record, rec); err != nil {
		return fmt.Errorf("decode %s: %w", raw.EventName, err)
	}

	e.EventName = raw.EventName
	e.Record = rec
	return nil
}
