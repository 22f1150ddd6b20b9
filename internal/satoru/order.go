package satoru

import (
	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

// OrderCreated payload. The event key argument comes first, followed by the
// serialized Order struct (whose own key duplicates it).
var orderCreatedLayout = felt.MustLayout(model.EventOrderCreated,
	felt.Word("key"),
	felt.Word("order_key"),
	felt.Word("order_type"),
	felt.Word("decrease_position_swap_type"),
	felt.Word("account"),
	felt.Word("receiver"),
	felt.Word("callback_contract"),
	felt.Word("ui_fee_receiver"),
	felt.Word("market"),
	felt.Word("initial_collateral_token"),
	felt.Array("swap_path"),
	felt.Uint128("size_delta_usd"),
	felt.Uint128("initial_collateral_delta_amount"),
	felt.Uint128("trigger_price"),
	felt.Uint128("acceptable_price"),
	felt.Uint128("execution_fee"),
	felt.Uint128("callback_gas_limit"),
	felt.Uint128("min_output_amount"),
	felt.Word("updated_at_block"),
	felt.Word("is_long"),
	felt.Word("is_frozen"),
)

var orderUpdatedLayout = felt.MustLayout(model.EventOrderUpdated,
	felt.Word("key"),
	felt.Uint128("size_delta_usd"),
	felt.Uint128("acceptable_price"),
	felt.Uint128("trigger_price"),
	felt.Uint128("min_output_amount"),
)

var orderStatusLayout = felt.MustLayout("OrderStatus",
	felt.Word("key"),
	felt.Word("reason"),
	felt.Array("reason_bytes"),
)

var orderExecutedLayout = felt.MustLayout(model.EventOrderExecuted,
	felt.Word("key"),
	felt.Word("secondary_order_type"),
)

// OrderCreatedDecoder decodes OrderCreated events into model.Order.
func OrderCreatedDecoder() Decoder {
	return newDecoder(model.EventOrderCreated, orderCreatedLayout, decodeOrder)
}

func decodeOrder(meta model.EventMeta, f felt.Frame) model.Record {
	return &model.Order{
		EventMeta:                    meta,
		Key:                          f.Felt("key"),
		OrderType:                    OrderTypes.Field(f, "order_type"),
		DecreasePositionSwapType:     DecreasePositionSwapTypes.Field(f, "decrease_position_swap_type"),
		Account:                      f.Address("account"),
		Receiver:                     f.Address("receiver"),
		CallbackContract:             f.Address("callback_contract"),
		UIFeeReceiver:                f.Address("ui_fee_receiver"),
		Market:                       f.Address("market"),
		InitialCollateralToken:       f.Address("initial_collateral_token"),
		SwapPath:                     f.Addresses("swap_path"),
		SizeDeltaUSD:                 f.Uint128("size_delta_usd"),
		InitialCollateralDeltaAmount: f.Uint128("initial_collateral_delta_amount"),
		TriggerPrice:                 f.Uint128("trigger_price"),
		AcceptablePrice:              f.Uint128("acceptable_price"),
		ExecutionFee:                 f.Uint128("execution_fee"),
		CallbackGasLimit:             f.Uint128("callback_gas_limit"),
		MinOutputAmount:              f.Uint128("min_output_amount"),
		UpdatedAtBlock:               f.Int64("updated_at_block"),
		IsLong:                       f.Bool("is_long"),
		IsFrozen:                     f.Bool("is_frozen"),
	}
}

// OrderUpdatedDecoder decodes OrderUpdated events into model.OrderUpdate.
func OrderUpdatedDecoder() Decoder {
	return newDecoder(model.EventOrderUpdated, orderUpdatedLayout, func(meta model.EventMeta, f felt.Frame) model.Record {
		return &model.OrderUpdate{
			EventMeta:       meta,
			Key:             f.Felt("key"),
			SizeDeltaUSD:    f.Uint128("size_delta_usd"),
			AcceptablePrice: f.Uint128("acceptable_price"),
			TriggerPrice:    f.Uint128("trigger_price"),
			MinOutputAmount: f.Uint128("min_output_amount"),
		}
	})
}

// OrderCancelledDecoder decodes OrderCancelled events.
func OrderCancelledDecoder() Decoder {
	return orderStatusDecoder(model.EventOrderCancelled, model.OrderCancelled)
}

// OrderFrozenDecoder decodes OrderFrozen events.
func OrderFrozenDecoder() Decoder {
	return orderStatusDecoder(model.EventOrderFrozen, model.OrderFrozen)
}

func orderStatusDecoder(name string, status model.OrderStatus) Decoder {
	return newDecoder(name, orderStatusLayout, func(meta model.EventMeta, f felt.Frame) model.Record {
		return &model.OrderStatusChange{
			EventMeta:   meta,
			Status:      status,
			Key:         f.Felt("key"),
			Reason:      f.ShortString("reason"),
			ReasonBytes: f.Felts("reason_bytes"),
		}
	})
}

// OrderExecutedDecoder decodes OrderExecuted events.
func OrderExecutedDecoder() Decoder {
	return newDecoder(model.EventOrderExecuted, orderExecutedLayout, func(meta model.EventMeta, f felt.Frame) model.Record {
		return &model.OrderExecution{
			EventMeta:          meta,
			Key:                f.Felt("key"),
			SecondaryOrderType: SecondaryOrderTypes.Field(f, "secondary_order_type"),
		}
	})
}
