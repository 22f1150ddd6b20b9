package satoru

import (
	"satoruIndexer/internal/felt"
	"satoruIndexer/internal/model"
)

var depositCreatedLayout = felt.MustLayout(model.EventDepositCreated,
	felt.Word("key"),
	felt.Word("deposit_key"),
	felt.Word("account"),
	felt.Word("receiver"),
	felt.Word("callback_contract"),
	felt.Word("ui_fee_receiver"),
	felt.Word("market"),
	felt.Word("initial_long_token"),
	felt.Word("initial_short_token"),
	felt.Array("long_token_swap_path"),
	felt.Array("short_token_swap_path"),
	felt.Uint128("initial_long_token_amount"),
	felt.Uint128("initial_short_token_amount"),
	felt.Uint128("min_market_tokens"),
	felt.Word("updated_at_block"),
	felt.Uint128("execution_fee"),
	felt.Uint128("callback_gas_limit"),
)

var withdrawalCreatedLayout = felt.MustLayout(model.EventWithdrawalCreated,
	felt.Word("key"),
	felt.Word("withdrawal_key"),
	felt.Word("account"),
	felt.Word("receiver"),
	felt.Word("callback_contract"),
	felt.Word("ui_fee_receiver"),
	felt.Word("market"),
	felt.Array("long_token_swap_path"),
	felt.Array("short_token_swap_path"),
	felt.Uint128("market_token_amount"),
	felt.Uint128("min_long_token_amount"),
	felt.Uint128("min_short_token_amount"),
	felt.Word("updated_at_block"),
	felt.Uint128("execution_fee"),
	felt.Uint128("callback_gas_limit"),
)

// DepositCreatedDecoder decodes DepositCreated events into model.Deposit.
func DepositCreatedDecoder() Decoder {
	return newDecoder(model.EventDepositCreated, depositCreatedLayout, func(meta model.EventMeta, f felt.Frame) model.Record {
		return &model.Deposit{
			EventMeta:               meta,
			Key:                     f.Felt("key"),
			Account:                 f.Address("account"),
			Receiver:                f.Address("receiver"),
			CallbackContract:        f.Address("callback_contract"),
			UIFeeReceiver:           f.Address("ui_fee_receiver"),
			Market:                  f.Address("market"),
			InitialLongToken:        f.Address("initial_long_token"),
			InitialShortToken:       f.Address("initial_short_token"),
			LongTokenSwapPath:       f.Addresses("long_token_swap_path"),
			ShortTokenSwapPath:      f.Addresses("short_token_swap_path"),
			InitialLongTokenAmount:  f.Uint128("initial_long_token_amount"),
			InitialShortTokenAmount: f.Uint128("initial_short_token_amount"),
			MinMarketTokens:         f.Uint128("min_market_tokens"),
			UpdatedAtBlock:          f.Int64("updated_at_block"),
			ExecutionFee:            f.Uint128("execution_fee"),
			CallbackGasLimit:        f.Uint128("callback_gas_limit"),
		}
	})
}

// WithdrawalCreatedDecoder decodes WithdrawalCreated events into model.Withdrawal.
func WithdrawalCreatedDecoder() Decoder {
	return newDecoder(model.EventWithdrawalCreated, withdrawalCreatedLayout, func(meta model.EventMeta, f felt.Frame) model.Record {
		return &model.Withdrawal{
			EventMeta:           meta,
			Key:                 f.Felt("key"),
			Account:             f.Address("account"),
			Receiver:            f.Address("receiver"),
			CallbackContract:    f.Address("callback_contract"),
			UIFeeReceiver:       f.Address("ui_fee_receiver"),
			Market:              f.Address("market"),
			LongTokenSwapPath:   f.Addresses("long_token_swap_path"),
			ShortTokenSwapPath:  f.Addresses("short_token_swap_path"),
			MarketTokenAmount:   f.Uint128("market_token_amount"),
			MinLongTokenAmount:  f.Uint128("min_long_token_amount"),
			MinShortTokenAmount: f.Uint128("min_short_token_amount"),
			UpdatedAtBlock:      f.Int64("updated_at_block"),
			ExecutionFee:        f.Uint128("execution_fee"),
			CallbackGasLimit:    f.Uint128("callback_gas_limit"),
		}
	})
}
