// Package satoru decodes Satoru protocol events into typed records.
package satoru

import (
	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

// Decoder turns the raw events of one event type into records. Decode is total:
// fields that cannot be read are left absent.
type Decoder interface {
	EventName() string
	Key() string
	Decode(raw model.RawEvent) model.Record
}

type layoutDecoder struct {
	name   string
	key    string
	layout *felt.Layout
	build  func(meta model.EventMeta, f felt.Frame) model.Record
}

func newDecoder(name string, layout *felt.Layout, build func(model.EventMeta, felt.Frame) model.Record) Decoder {
	return &layoutDecoder{
		name:   name,
		key:    EventKey(name),
		layout: layout,
		build:  build,
	}
}

func (d *layoutDecoder) EventName() string { return d.name }

func (d *layoutDecoder) Key() string { return d.key }

func (d *layoutDecoder) Decode(raw model.RawEvent) model.Record {
	return d.build(model.MetaFromRaw(raw), d.layout.Resolve(raw.Data))
}

// DefaultDecoders returns a decoder for every supported event type.
func DefaultDecoders() []Decoder {
	return []Decoder{
		OrderCreatedDecoder(),
		OrderUpdatedDecoder(),
		OrderCancelledDecoder(),
		OrderFrozenDecoder(),
		OrderExecutedDecoder(),
		DepositCreatedDecoder(),
		WithdrawalCreatedDecoder(),
	}
}
