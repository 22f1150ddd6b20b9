package postgres

import (
	"encoding"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"satoruIndexer/internal/model"
)

type statement struct {
	sql  string
	args []any
}

const (
	insertOrderSQL = `
		INSERT INTO orders (
			block_number, time_stamp, transaction_hash, from_address, key, order_type,
			decrease_position_swap_type, account, receiver, callback_contract, ui_fee_receiver,
			market, initial_collateral_token, swap_path, size_delta_usd,
			initial_collateral_delta_amount, trigger_price, acceptable_price, execution_fee,
			callback_gas_limit, min_output_amount, updated_at_block, is_long, is_frozen
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT DO NOTHING`

	insertOrderUpdateSQL = `
		INSERT INTO order_updates (
			block_number, time_stamp, transaction_hash, from_address, key,
			size_delta_usd, acceptable_price, trigger_price, min_output_amount
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT DO NOTHING`

	insertOrderStatusSQL = `
		INSERT INTO order_status_changes (
			block_number, time_stamp, transaction_hash, from_address, key, status, reason, reason_bytes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT DO NOTHING`

	insertOrderExecutionSQL = `
		INSERT INTO order_executions (
			block_number, time_stamp, transaction_hash, from_address, key, secondary_order_type
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT DO NOTHING`

	insertDepositSQL = `
		INSERT INTO deposits (
			block_number, time_stamp, transaction_hash, from_address, key, account, receiver,
			callback_contract, ui_fee_receiver, market, initial_long_token, initial_short_token,
			long_token_swap_path, short_token_swap_path, initial_long_token_amount,
			initial_short_token_amount, min_market_tokens, updated_at_block, execution_fee,
			callback_gas_limit
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT DO NOTHING`

	insertWithdrawalSQL = `
		INSERT INTO withdrawals (
			block_number, time_stamp, transaction_hash, from_address, key, account, receiver,
			callback_contract, ui_fee_receiver, market, long_token_swap_path,
			short_token_swap_path, market_token_amount, min_long_token_amount,
			min_short_token_amount, updated_at_block, execution_fee, callback_gas_limit
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT DO NOTHING`
)

func insertStatement(rec model.Record) (statement, error) {
	switch r := rec.(type) {
	case *model.Order:
		return statement{sql: insertOrderSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			enumText(r.OrderType),
			enumText(r.DecreasePositionSwapType),
			r.Account,
			r.Receiver,
			r.CallbackContract,
			r.UIFeeReceiver,
			r.Market,
			r.InitialCollateralToken,
			joinPath(r.SwapPath),
			numeric(r.SizeDeltaUSD),
			numeric(r.InitialCollateralDeltaAmount),
			numeric(r.TriggerPrice),
			numeric(r.AcceptablePrice),
			numeric(r.ExecutionFee),
			numeric(r.CallbackGasLimit),
			numeric(r.MinOutputAmount),
			r.UpdatedAtBlock,
			r.IsLong,
			r.IsFrozen,
		)}, nil
	case *model.OrderUpdate:
		return statement{sql: insertOrderUpdateSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			numeric(r.SizeDeltaUSD),
			numeric(r.AcceptablePrice),
			numeric(r.TriggerPrice),
			numeric(r.MinOutputAmount),
		)}, nil
	case *model.OrderStatusChange:
		return statement{sql: insertOrderStatusSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			r.Status.String(),
			r.Reason,
			joinPath(r.ReasonBytes),
		)}, nil
	case *model.OrderExecution:
		return statement{sql: insertOrderExecutionSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			enumText(r.SecondaryOrderType),
		)}, nil
	case *model.Deposit:
		return statement{sql: insertDepositSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			r.Account,
			r.Receiver,
			r.CallbackContract,
			r.UIFeeReceiver,
			r.Market,
			r.InitialLongToken,
			r.InitialShortToken,
			joinPath(r.LongTokenSwapPath),
			joinPath(r.ShortTokenSwapPath),
			numeric(r.InitialLongTokenAmount),
			numeric(r.InitialShortTokenAmount),
			numeric(r.MinMarketTokens),
			r.UpdatedAtBlock,
			numeric(r.ExecutionFee),
			numeric(r.CallbackGasLimit),
		)}, nil
	case *model.Withdrawal:
		return statement{sql: insertWithdrawalSQL, args: append(metaArgs(r.EventMeta),
			r.Key,
			r.Account,
			r.Receiver,
			r.CallbackContract,
			r.UIFeeReceiver,
			r.Market,
			joinPath(r.LongTokenSwapPath),
			joinPath(r.ShortTokenSwapPath),
			numeric(r.MarketTokenAmount),
			numeric(r.MinLongTokenAmount),
			numeric(r.MinShortTokenAmount),
			r.UpdatedAtBlock,
			numeric(r.ExecutionFee),
			numeric(r.CallbackGasLimit),
		)}, nil
	default:
		return statement{}, fmt.Errorf("unsupported record type %T", rec)
	}
}

func metaArgs(meta model.EventMeta) []any {
	var from *string
	if meta.FromAddress != "" {
		from = &meta.FromAddress
	}
	return []any{meta.BlockNumber, timestamp(meta.Timestamp), meta.TransactionHash, from}
}

// timestamp parses an RFC3339 event timestamp. Unparseable values are stored as NULL.
func timestamp(ts *string) *time.Time {
	if ts == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *ts)
	if err != nil {
		return nil
	}
	return &t
}

func numeric(v *big.Int) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: new(big.Int).Set(v), Valid: true}
}

func joinPath(path []string) *string {
	if path == nil {
		return nil
	}
	joined := strings.Join(path, ",")
	return &joined
}

// enumText stores an optional enum as its variant name.
func enumText[T any, P interface {
	*T
	encoding.TextMarshaler
}](v P) *string {
	if v == nil {
		return nil
	}
	text, err := v.MarshalText()
	if err != nil {
		return nil
	}
	s := string(text)
	return &s
}
