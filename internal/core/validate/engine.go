package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dcheng/futures-trading/internal/config"
)

var symbolPattern = regexp.MustCompile(`^[A-Z]{2,10}USDT$`)

// Engine validates order fields against the configured trading limits.
// It is pure and stateless: the same input always yields the same
// OrderParams or the same error list.
type Engine struct {
	limits config.TradingLimits
}

func NewEngine(limits config.TradingLimits) *Engine {
	return &Engine{limits: limits}
}

// Input is a raw order request as it arrives from the caller. Numeric
// fields are strings so that non-numeric text fails validation instead
// of silently coercing; "" means the field was not supplied.
type Input struct {
	Symbol    string
	Side      string
	OrderType string
	Quantity  string

	Price         string
	TriggerPrice  string
	CallbackRate  string
	ActivatePrice string

	WorkingType  string
	PriceProtect bool
	TimeInForce  string

	// CurrentPrice enables the minimum-notional check; 0 skips it.
	CurrentPrice float64
}

// ValidateSymbol checks the trading pair format.
func (e *Engine) ValidateSymbol(symbol string) *FieldError {
	if strings.TrimSpace(symbol) == "" {
		return &FieldError{Field: "symbol", Message: "Symbol cannot be empty"}
	}
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(normalized) {
		return &FieldError{
			Field:   "symbol",
			Message: fmt.Sprintf("Invalid symbol format: %s. Expected format: XXXUSDT (e.g. BTCUSDT)", normalized),
		}
	}
	return nil
}

// ValidateSide checks the order direction.
func (e *Engine) ValidateSide(side string) *FieldError {
	if strings.TrimSpace(side) == "" {
		return &FieldError{Field: "side", Message: "Side cannot be empty"}
	}
	if _, ok := ParseSide(side); !ok {
		return &FieldError{
			Field:   "side",
			Message: fmt.Sprintf("Invalid side: %s. Must be BUY or SELL", strings.ToUpper(strings.TrimSpace(side))),
		}
	}
	return nil
}

// ValidateOrderType checks membership in the closed order type set.
func (e *Engine) ValidateOrderType(orderType string) *FieldError {
	if strings.TrimSpace(orderType) == "" {
		return &FieldError{Field: "type", Message: "Order type cannot be empty"}
	}
	if _, ok := ParseOrderType(orderType); !ok {
		names := make([]string, 0, len(OrderTypes()))
		for _, t := range OrderTypes() {
			names = append(names, string(t))
		}
		return &FieldError{
			Field: "type",
			Message: fmt.Sprintf("Invalid order type: %s. Must be one of: %s",
				strings.ToUpper(strings.TrimSpace(orderType)), strings.Join(names, ", ")),
		}
	}
	return nil
}

// ValidateQuantity checks quantity bounds and, when currentPrice is
// known, the minimum notional value.
func (e *Engine) ValidateQuantity(quantity string, currentPrice float64) *FieldError {
	if strings.TrimSpace(quantity) == "" {
		return &FieldError{Field: "quantity", Message: "Quantity cannot be empty"}
	}
	qty, err := strconv.ParseFloat(strings.TrimSpace(quantity), 64)
	if err != nil {
		return &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Invalid quantity: %s. Must be a number", quantity),
		}
	}
	if qty <= 0 {
		return &FieldError{Field: "quantity", Message: "Quantity must be greater than 0"}
	}
	if qty < e.limits.MinQuantity {
		return &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Quantity %v is below minimum: %v", qty, e.limits.MinQuantity),
		}
	}
	if qty > e.limits.MaxQuantity {
		return &FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Quantity %v exceeds maximum: %v", qty, e.limits.MaxQuantity),
		}
	}
	if currentPrice > 0 {
		notional := qty * currentPrice
		if notional < e.limits.MinNotional {
			minQtyNeeded := e.limits.MinNotional / currentPrice
			return &FieldError{
				Field: "quantity",
				Message: fmt.Sprintf("Order notional value ($%.2f) is below minimum: $%v. Minimum quantity needed: %.6f",
					notional, e.limits.MinNotional, minQtyNeeded),
			}
		}
	}
	return nil
}

// ValidatePrice checks the limit price for the types that carry one;
// for all other types the price is ignored regardless of presence.
func (e *Engine) ValidatePrice(price string, orderType OrderType) *FieldError {
	if !orderType.RequiresPrice() {
		return nil
	}
	if strings.TrimSpace(price) == "" {
		return &FieldError{
			Field:   "price",
			Message: fmt.Sprintf("Price is required for %s orders", orderType),
		}
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return &FieldError{
			Field:   "price",
			Message: fmt.Sprintf("Invalid price: %s. Must be a number", price),
		}
	}
	if p <= 0 {
		return &FieldError{Field: "price", Message: "Price must be greater than 0"}
	}
	if p < e.limits.MinPrice {
		return &FieldError{
			Field:   "price",
			Message: fmt.Sprintf("Price %v is below minimum: %v", p, e.limits.MinPrice),
		}
	}
	if p > e.limits.MaxPrice {
		return &FieldError{
			Field:   "price",
			Message: fmt.Sprintf("Price %v exceeds maximum: %v", p, e.limits.MaxPrice),
		}
	}
	return nil
}

// ValidateTriggerPrice checks the trigger for conditional types.
func (e *Engine) ValidateTriggerPrice(trigger string, orderType OrderType) *FieldError {
	if !orderType.RequiresTrigger() {
		return nil
	}
	if strings.TrimSpace(trigger) == "" {
		return &FieldError{
			Field:   "stopPrice",
			Message: fmt.Sprintf("Trigger price is required for %s orders", orderType),
		}
	}
	tp, err := strconv.ParseFloat(strings.TrimSpace(trigger), 64)
	if err != nil {
		return &FieldError{
			Field:   "stopPrice",
			Message: fmt.Sprintf("Invalid trigger price: %s. Must be a number", trigger),
		}
	}
	if tp <= 0 {
		return &FieldError{Field: "stopPrice", Message: "Trigger price must be greater than 0"}
	}
	return nil
}

// ValidateCallbackRate checks the trailing-stop callback rate.
func (e *Engine) ValidateCallbackRate(rate string, orderType OrderType) *FieldError {
	if !orderType.RequiresCallbackRate() {
		return nil
	}
	if strings.TrimSpace(rate) == "" {
		return &FieldError{
			Field:   "callbackRate",
			Message: "Callback rate is required for TRAILING_STOP_MARKET orders",
		}
	}
	cr, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
	if err != nil {
		return &FieldError{
			Field:   "callbackRate",
			Message: fmt.Sprintf("Invalid callback rate: %s. Must be a number", rate),
		}
	}
	if cr < e.limits.MinCallbackRate || cr > e.limits.MaxCallbackRate {
		return &FieldError{
			Field: "callbackRate",
			Message: fmt.Sprintf("Callback rate must be between %v and %v (representing %v%%-%v%%)",
				e.limits.MinCallbackRate, e.limits.MaxCallbackRate,
				e.limits.MinCallbackRate, e.limits.MaxCallbackRate),
		}
	}
	return nil
}

func (e *Engine) validateWorkingType(workingType string) *FieldError {
	if strings.TrimSpace(workingType) == "" {
		return nil
	}
	switch WorkingType(strings.ToUpper(strings.TrimSpace(workingType))) {
	case WorkingTypeContract, WorkingTypeMark:
		return nil
	default:
		return &FieldError{
			Field:   "workingType",
			Message: fmt.Sprintf("Invalid working type: %s. Must be CONTRACT_PRICE or MARK_PRICE", workingType),
		}
	}
}

func (e *Engine) validateTimeInForce(tif string) *FieldError {
	if strings.TrimSpace(tif) == "" {
		return nil
	}
	switch TimeInForce(strings.ToUpper(strings.TrimSpace(tif))) {
	case TimeInForceGTC, TimeInForceIOC, TimeInForceFOK:
		return nil
	default:
		return &FieldError{
			Field:   "timeInForce",
			Message: fmt.Sprintf("Invalid time in force: %s. Must be GTC, IOC or FOK", tif),
		}
	}
}

func (e *Engine) validateActivatePrice(activate string, orderType OrderType) *FieldError {
	// Optional even for trailing stops; only checked when supplied.
	if orderType != OrderTypeTrailingStopMarket || strings.TrimSpace(activate) == "" {
		return nil
	}
	ap, err := strconv.ParseFloat(strings.TrimSpace(activate), 64)
	if err != nil {
		return &FieldError{
			Field:   "activationPrice",
			Message: fmt.Sprintf("Invalid activation price: %s. Must be a number", activate),
		}
	}
	if ap <= 0 {
		return &FieldError{Field: "activationPrice", Message: "Activation price must be greater than 0"}
	}
	return nil
}

// Validate applies every rule independently and accumulates all
// failures, so one call surfaces every violation at once. On success
// it returns canonical OrderParams with strings normalized and numeric
// fields resolved; on failure no OrderParams is produced.
func (e *Engine) Validate(in Input) (OrderParams, []FieldError) {
	var errs []FieldError
	appendErr := func(fe *FieldError) {
		if fe != nil {
			errs = append(errs, *fe)
		}
	}

	appendErr(e.ValidateSymbol(in.Symbol))
	appendErr(e.ValidateSide(in.Side))
	appendErr(e.ValidateOrderType(in.OrderType))
	appendErr(e.ValidateQuantity(in.Quantity, in.CurrentPrice))

	// Type-scoped rules only fire for a resolvable order type.
	orderType, typeKnown := ParseOrderType(in.OrderType)
	if typeKnown {
		appendErr(e.ValidatePrice(in.Price, orderType))
		appendErr(e.ValidateTriggerPrice(in.TriggerPrice, orderType))
		appendErr(e.ValidateCallbackRate(in.CallbackRate, orderType))
		appendErr(e.validateActivatePrice(in.ActivatePrice, orderType))
	}
	appendErr(e.validateWorkingType(in.WorkingType))
	appendErr(e.validateTimeInForce(in.TimeInForce))

	if len(errs) > 0 {
		return OrderParams{}, errs
	}

	side, _ := ParseSide(in.Side)
	quantity, _ := strconv.ParseFloat(strings.TrimSpace(in.Quantity), 64)

	params := OrderParams{
		Symbol:       strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Side:         side,
		OrderType:    orderType,
		Quantity:     quantity,
		WorkingType:  WorkingTypeContract,
		PriceProtect: in.PriceProtect,
		TimeInForce:  TimeInForceGTC,
	}
	if wt := strings.ToUpper(strings.TrimSpace(in.WorkingType)); wt != "" {
		params.WorkingType = WorkingType(wt)
	}
	if tif := strings.ToUpper(strings.TrimSpace(in.TimeInForce)); tif != "" {
		params.TimeInForce = TimeInForce(tif)
	}

	// Price is only carried for the types that use it; for everything
	// else a supplied value is dropped during canonicalization.
	if orderType.RequiresPrice() {
		params.Price = parseFloatPtr(in.Price)
	}
	if orderType.RequiresTrigger() {
		params.TriggerPrice = parseFloatPtr(in.TriggerPrice)
	}
	if orderType.RequiresCallbackRate() {
		params.CallbackRate = parseFloatPtr(in.CallbackRate)
		params.ActivatePrice = parseFloatPtr(in.ActivatePrice)
	}

	return params, nil
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
