package model

import "math/big"

// Event names of the decoded Satoru events.
const (
	EventOrderCreated      = "OrderCreated"
	EventOrderUpdated      = "OrderUpdated"
	EventOrderCancelled    = "OrderCancelled"
	EventOrderFrozen       = "OrderFrozen"
	EventOrderExecuted     = "OrderExecuted"
	EventDepositCreated    = "DepositCreated"
	EventWithdrawalCreated = "WithdrawalCreated"
)

// Record is a decoded event ready for the sink.
type Record interface {
	EventName() string
	Meta() EventMeta
}

// EventMeta carries the raw event fields every record keeps.
type EventMeta struct {
	BlockNumber     int64   `json:"block_number"`
	Timestamp       *string `json:"timestamp"`
	TransactionHash string  `json:"transaction_hash"`
	FromAddress     string  `json:"from_address,omitempty"`
}

func (m EventMeta) Meta() EventMeta { return m }

// MetaFromRaw copies the event metadata of a raw event.
func MetaFromRaw(raw RawEvent) EventMeta {
	return EventMeta{
		BlockNumber:     raw.BlockNumber,
		Timestamp:       raw.Timestamp,
		TransactionHash: raw.TransactionHash,
		FromAddress:     raw.FromAddress,
	}
}

// Order is the decoded OrderCreated payload.
type Order struct {
	EventMeta
	Key                          *string                   `json:"key"`
	OrderType                    *OrderType                `json:"order_type"`
	DecreasePositionSwapType     *DecreasePositionSwapType `json:"decrease_position_swap_type"`
	Account                      *string                   `json:"account"`
	Receiver                     *string                   `json:"receiver"`
	CallbackContract             *string                   `json:"callback_contract"`
	UIFeeReceiver                *string                   `json:"ui_fee_receiver"`
	Market                       *string                   `json:"market"`
	InitialCollateralToken       *string                   `json:"initial_collateral_token"`
	SwapPath                     []string                  `json:"swap_path"`
	SizeDeltaUSD                 *big.Int                  `json:"size_delta_usd"`
	InitialCollateralDeltaAmount *big.Int                  `json:"initial_collateral_delta_amount"`
	TriggerPrice                 *big.Int                  `json:"trigger_price"`
	AcceptablePrice              *big.Int                  `json:"acceptable_price"`
	ExecutionFee                 *big.Int                  `json:"execution_fee"`
	CallbackGasLimit             *big.Int                  `json:"callback_gas_limit"`
	MinOutputAmount              *big.Int                  `json:"min_output_amount"`
	UpdatedAtBlock               *int64                    `json:"updated_at_block"`
	IsLong                       *bool                     `json:"is_long"`
	IsFrozen                     *bool                     `json:"is_frozen"`
}

func (Order) EventName() string { return EventOrderCreated }

// OrderUpdate is the decoded OrderUpdated payload.
type OrderUpdate struct {
	EventMeta
	Key             *string  `json:"key"`
	SizeDeltaUSD    *big.Int `json:"size_delta_usd"`
	AcceptablePrice *big.Int `json:"acceptable_price"`
	TriggerPrice    *big.Int `json:"trigger_price"`
	MinOutputAmount *big.Int `json:"min_output_amount"`
}

func (OrderUpdate) EventName() string { return EventOrderUpdated }

// OrderStatusChange is the decoded OrderCancelled or OrderFrozen payload.
type OrderStatusChange struct {
	EventMeta
	Status      OrderStatus `json:"status"`
	Key         *string     `json:"key"`
	Reason      *string     `json:"reason"`
	ReasonBytes []string    `json:"reason_bytes"`
}

func (c OrderStatusChange) EventName() string {
	if c.Status == OrderFrozen {
		return EventOrderFrozen
	}
	return EventOrderCancelled
}

// OrderExecution is the decoded OrderExecuted payload.
type OrderExecution struct {
	EventMeta
	Key                *string             `json:"key"`
	SecondaryOrderType *SecondaryOrderType `json:"secondary_order_type"`
}

func (OrderExecution) EventName() string { return EventOrderExecuted }

// Deposit is the decoded DepositCreated payload.
type Deposit struct {
	EventMeta
	Key                     *string  `json:"key"`
	Account                 *string  `json:"account"`
	Receiver                *string  `json:"receiver"`
	CallbackContract        *string  `json:"callback_contract"`
	UIFeeReceiver           *string  `json:"ui_fee_receiver"`
	Market                  *string  `json:"market"`
	InitialLongToken        *string  `json:"initial_long_token"`
	InitialShortToken       *string  `json:"initial_short_token"`
	LongTokenSwapPath       []string `json:"long_token_swap_path"`
	ShortTokenSwapPath      []string `json:"short_token_swap_path"`
	InitialLongTokenAmount  *big.Int `json:"initial_long_token_amount"`
	InitialShortTokenAmount *big.Int `json:"initial_short_token_amount"`
	MinMarketTokens         *big.Int `json:"min_market_tokens"`
	UpdatedAtBlock          *int64   `json:"updated_at_block"`
	ExecutionFee            *big.Int `json:"execution_fee"`
	CallbackGasLimit        *big.Int `json:"callback_gas_limit"`
}

func (Deposit) EventName() string { return EventDepositCreated }

// Withdrawal is the decoded WithdrawalCreated payload.
type Withdrawal struct {
	EventMeta
	Key                 *string  `json:"key"`
	Account             *string  `json:"account"`
	Receiver            *string  `json:"receiver"`
	CallbackContract    *string  `json:"callback_contract"`
	UIFeeReceiver       *string  `json:"ui_fee_receiver"`
	Market              *string  `json:"market"`
	LongTokenSwapPath   []string `json:"long_token_swap_path"`
	ShortTokenSwapPath  []string `json:"short_token_swap_path"`
	MarketTokenAmount   *big.Int `json:"market_token_amount"`
	MinLongTokenAmount  *big.Int `json:"min_long_token_amount"`
	MinShortTokenAmount *big.Int `json:"min_short_token_amount"`
	UpdatedAtBlock      *int64   `json:"updated_at_block"`
	ExecutionFee        *big.Int `json:"execution_fee"`
	CallbackGasLimit    *big.Int `json:"callback_gas_limit"`
}

func (Withdrawal) EventName() string { return EventWithdrawalCreated }
