package validate

import "strings"

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes and resolves a side string.
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	default:
		return "", false
	}
}

// OrderType is the closed set of supported order types.
type OrderType string

const (
	OrderTypeMarket             OrderType = "MARKET"
	OrderTypeLimit              OrderType = "LIMIT"
	OrderTypeStopMarket         OrderType = "STOP_MARKET"
	OrderTypeTakeProfitMarket   OrderType = "TAKE_PROFIT_MARKET"
	OrderTypeStop               OrderType = "STOP"
	OrderTypeTakeProfit         OrderType = "TAKE_PROFIT"
	OrderTypeTrailingStopMarket OrderType = "TRAILING_STOP_MARKET"
)

// OrderTypes lists every valid order type, in the order error messages
// enumerate them.
func OrderTypes() []OrderType {
	return []OrderType{
		OrderTypeMarket,
		OrderTypeLimit,
		OrderTypeStopMarket,
		OrderTypeTakeProfitMarket,
		OrderTypeStop,
		OrderTypeTakeProfit,
		OrderTypeTrailingStopMarket,
	}
}

// ParseOrderType normalizes and resolves an order type string.
func ParseOrderType(s string) (OrderType, bool) {
	t := OrderType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStopMarket, OrderTypeTakeProfitMarket,
		OrderTypeStop, OrderTypeTakeProfit, OrderTypeTrailingStopMarket:
		return t, true
	default:
		return "", false
	}
}

// Algo reports whether the type is a conditional order placed through
// the algo endpoint.
func (t OrderType) Algo() bool {
	switch t {
	case OrderTypeStopMarket, OrderTypeTakeProfitMarket, OrderTypeStop,
		OrderTypeTakeProfit, OrderTypeTrailingStopMarket:
		return true
	case OrderTypeMarket, OrderTypeLimit:
		return false
	default:
		return false
	}
}

// RequiresPrice reports whether a limit price is mandatory.
func (t OrderType) RequiresPrice() bool {
	switch t {
	case OrderTypeLimit, OrderTypeStop, OrderTypeTakeProfit:
		return true
	default:
		return false
	}
}

// RequiresTrigger reports whether a trigger price is mandatory.
func (t OrderType) RequiresTrigger() bool {
	switch t {
	case OrderTypeStopMarket, OrderTypeTakeProfitMarket, OrderTypeStop, OrderTypeTakeProfit:
		return true
	default:
		return false
	}
}

// RequiresCallbackRate reports whether a callback rate is mandatory.
func (t OrderType) RequiresCallbackRate() bool {
	return t == OrderTypeTrailingStopMarket
}

// WorkingType is the price an algo trigger is evaluated against.
type WorkingType string

const (
	WorkingTypeContract WorkingType = "CONTRACT_PRICE"
	WorkingTypeMark     WorkingType = "MARK_PRICE"
)

// TimeInForce governs how long a resting order stays active.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// OrderParams is a fully validated, canonical order. Constructed only by
// Engine.Validate on success; treat as immutable. Optional fields are
// nil unless the order type requires or the caller supplied them.
type OrderParams struct {
	Symbol    string
	Side      Side
	OrderType OrderType
	Quantity  float64

	Price         *float64
	TriggerPrice  *float64
	CallbackRate  *float64
	ActivatePrice *float64

	WorkingType  WorkingType
	PriceProtect bool
	TimeInForce  TimeInForce
}

// FieldError is one validation failure, scoped to the field that
// caused it. A single request can carry several.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// JoinErrors renders a list of validation failures the way callers
// surface them: messages joined with "; ".
func JoinErrors(errs []FieldError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}
