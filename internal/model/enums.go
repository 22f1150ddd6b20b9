package model

import "fmt"

// OrderType is the kind of a Satoru order.
type OrderType uint8

const (
	MarketSwap OrderType = iota
	LimitSwap
	MarketIncrease
	LimitIncrease
	MarketDecrease
	LimitDecrease
	StopLossDecrease
	Liquidation
)

var orderTypeNames = []string{
	"MarketSwap",
	"LimitSwap",
	"MarketIncrease",
	"LimitIncrease",
	"MarketDecrease",
	"LimitDecrease",
	"StopLossDecrease",
	"Liquidation",
}

// OrderTypes lists every OrderType in selector order.
func OrderTypes() []OrderType {
	out := make([]OrderType, len(orderTypeNames))
	for i := range out {
		out[i] = OrderType(i)
	}
	return out
}

func (t OrderType) String() string { return enumName(orderTypeNames, uint8(t)) }

func (t OrderType) MarshalText() ([]byte, error) { return marshalEnum(orderTypeNames, uint8(t)) }

func (t *OrderType) UnmarshalText(text []byte) error {
	v, err := parseEnum(orderTypeNames, "order type", string(text))
	if err != nil {
		return err
	}
	*t = OrderType(v)
	return nil
}

// DecreasePositionSwapType controls the swap applied when a position decreases.
type DecreasePositionSwapType uint8

const (
	NoSwap DecreasePositionSwapType = iota
	SwapPnlTokenToCollateralToken
	SwapCollateralTokenToPnlToken
)

var decreasePositionSwapTypeNames = []string{
	"NoSwap",
	"SwapPnlTokenToCollateralToken",
	"SwapCollateralTokenToPnlToken",
}

// DecreasePositionSwapTypes lists every DecreasePositionSwapType in selector order.
func DecreasePositionSwapTypes() []DecreasePositionSwapType {
	out := make([]DecreasePositionSwapType, len(decreasePositionSwapTypeNames))
	for i := range out {
		out[i] = DecreasePositionSwapType(i)
	}
	return out
}

func (t DecreasePositionSwapType) String() string {
	return enumName(decreasePositionSwapTypeNames, uint8(t))
}

func (t DecreasePositionSwapType) MarshalText() ([]byte, error) {
	return marshalEnum(decreasePositionSwapTypeNames, uint8(t))
}

func (t *DecreasePositionSwapType) UnmarshalText(text []byte) error {
	v, err := parseEnum(decreasePositionSwapTypeNames, "decrease position swap type", string(text))
	if err != nil {
		return err
	}
	*t = DecreasePositionSwapType(v)
	return nil
}

// SecondaryOrderType marks orders executed outside the normal keeper flow.
type SecondaryOrderType uint8

const (
	SecondaryNone SecondaryOrderType = iota
	SecondaryAdl
)

var secondaryOrderTypeNames = []string{"None", "Adl"}

// SecondaryOrderTypes lists every SecondaryOrderType in selector order.
func SecondaryOrderTypes() []SecondaryOrderType {
	return []SecondaryOrderType{SecondaryNone, SecondaryAdl}
}

func (t SecondaryOrderType) String() string { return enumName(secondaryOrderTypeNames, uint8(t)) }

func (t SecondaryOrderType) MarshalText() ([]byte, error) {
	return marshalEnum(secondaryOrderTypeNames, uint8(t))
}

func (t *SecondaryOrderType) UnmarshalText(text []byte) error {
	v, err := parseEnum(secondaryOrderTypeNames, "secondary order type", string(text))
	if err != nil {
		return err
	}
	*t = SecondaryOrderType(v)
	return nil
}

// OrderStatus is the state an order moved to in a status change event.
type OrderStatus uint8

const (
	OrderCancelled OrderStatus = iota
	OrderFrozen
)

var orderStatusNames = []string{"Cancelled", "Frozen"}

func (s OrderStatus) String() string { return enumName(orderStatusNames, uint8(s)) }

func (s OrderStatus) MarshalText() ([]byte, error) { return marshalEnum(orderStatusNames, uint8(s)) }

func (s *OrderStatus) UnmarshalText(text []byte) error {
	v, err := parseEnum(orderStatusNames, "order status", string(text))
	if err != nil {
		return err
	}
	*s = OrderStatus(v)
	return nil
}

func enumName(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("Unknown(%d)", v)
}

func marshalEnum(names []string, v uint8) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, fmt.Errorf("enum value %d out of range", v)
	}
	return []byte(names[v]), nil
}

func parseEnum(names []string, kind, text string) (uint8, error) {
	for i, name := range names {
		if name == text {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %q", kind, text)
}
