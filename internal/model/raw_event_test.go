package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRawEventJSONRoundTrip(t *testing.T) {
	ts := "2024-01-01T00:00:00Z"
	original := RawEvent{
		EventKey:        "03427759bfd3b941f14e687e129519da3c9b0046c5b9aaa290bb1dede63753b3",
		BlockNumber:     64901,
		Timestamp:       &ts,
		TransactionHash: "0x0def456",
		FromAddress:     "0x0111",
		EventIndex:      3,
		Data:            []string{"aa", "bb"},
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded RawEvent
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestRawEventCommaJoinedData(t *testing.T) {
	line := `{"event_key":"k","block_number":7,"transaction_hash":"0x1","data":"aa,bb,,cc"}`

	var decoded RawEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []string{"aa", "bb", "", "cc"}
	if !reflect.DeepEqual(decoded.Data, want) {
		t.Fatalf("data mismatch: %v != %v", decoded.Data, want)
	}
	if decoded.Timestamp != nil {
		t.Fatalf("timestamp should be absent")
	}
	if decoded.BlockNumber != 7 || decoded.EventKey != "k" {
		t.Fatalf("fields mismatch: %+v", decoded)
	}
}

func TestRawEventRejectsBadData(t *testing.T) {
	var decoded RawEvent
	if err := json.Unmarshal([]byte(`{"event_key":"k","data":42}`), &decoded); err == nil {
		t.Fatalf("expected error for numeric data")
	}
}
