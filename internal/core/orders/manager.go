package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcheng/futures-trading/internal/adapters/binance"
	"github.com/dcheng/futures-trading/internal/core/validate"
	"github.com/dcheng/futures-trading/internal/telemetry"
)

// Manager sequences price lookup, validation, submission, and response
// normalization for every order operation. Each request moves through
// Requested → Rejected (validation failed, no network call) or
// Validated → Accepted/Failed; all three terminal states come back as
// a Result, never as an error or panic.
type Manager struct {
	exchange Exchange
	prices   PriceSource
	engine   *validate.Engine
	journal  Journal
	log      *slog.Logger
	metrics  *telemetry.Metrics

	newClientID func() string
}

// NewManager wires the orchestrator. prices may be nil to fetch the
// ticker directly from the exchange; journal may be nil to disable
// local persistence.
func NewManager(exchange Exchange, prices PriceSource, engine *validate.Engine, journal Journal, log *slog.Logger, metrics *telemetry.Metrics) *Manager {
	if prices == nil {
		prices = exchangePrices{ex: exchange}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Manager{
		exchange:    exchange,
		prices:      prices,
		engine:      engine,
		journal:     journal,
		log:         log,
		metrics:     metrics,
		newClientID: uuid.NewString,
	}
}

// exchangePrices is the uncached fallback price source.
type exchangePrices struct {
	ex Exchange
}

func (p exchangePrices) Get(ctx context.Context, symbol string) (float64, error) {
	return p.ex.TickerPrice(ctx, symbol)
}

// PlaceRequest is a raw order as typed by the caller. Numeric fields
// stay strings until validation so that junk input is rejected with a
// message instead of coerced.
type PlaceRequest struct {
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
}

// ValidateOrder runs the validation engine without touching the
// network. currentPrice of 0 skips the notional check.
func (m *Manager) ValidateOrder(req PlaceRequest, currentPrice float64) (validate.OrderParams, []validate.FieldError) {
	return m.engine.Validate(validate.Input{
		Symbol:        req.Symbol,
		Side:          req.Side,
		OrderType:     req.OrderType,
		Quantity:      req.Quantity,
		Price:         req.Price,
		TriggerPrice:  req.TriggerPrice,
		CallbackRate:  req.CallbackRate,
		ActivatePrice: req.ActivatePrice,
		WorkingType:   req.WorkingType,
		PriceProtect:  req.PriceProtect,
		TimeInForce:   req.TimeInForce,
		CurrentPrice:  currentPrice,
	})
}

// PlaceOrder validates and submits one order and returns its terminal
// Result. Validation failures never reach the network.
func (m *Manager) PlaceOrder(ctx context.Context, req PlaceRequest) Result {
	m.log.Info("orders: placing", "symbol", req.Symbol, "side", req.Side, "type", req.OrderType, "qty", req.Quantity)

	currentPrice, err := m.prices.Get(ctx, req.Symbol)
	if err != nil {
		m.log.Error("orders: price fetch failed", "symbol", req.Symbol, "error", err)
		m.metrics.OrderErrors.Inc()
		return m.finish(ctx, failure("Could not fetch current price for validation"))
	}

	params, fieldErrs := m.ValidateOrder(req, currentPrice)
	if len(fieldErrs) > 0 {
		msg := validate.JoinErrors(fieldErrs)
		m.log.Error("orders: validation failed", "errors", msg)
		m.metrics.OrderErrors.Inc()
		return m.finish(ctx, failure(msg))
	}

	var res Result
	if params.OrderType.Algo() {
		res = m.submitAlgoOrder(ctx, params)
	} else {
		res = m.submitOrder(ctx, params)
	}
	return m.finish(ctx, res)
}

func (m *Manager) submitOrder(ctx context.Context, params validate.OrderParams) Result {
	req := binance.NewOrderRequest{
		Symbol:        params.Symbol,
		Side:          string(params.Side),
		Type:          string(params.OrderType),
		Quantity:      params.Quantity,
		Price:         params.Price,
		TimeInForce:   string(params.TimeInForce),
		ClientOrderID: m.newClientID(),
	}

	resp, err := m.exchange.NewOrder(ctx, req)
	if err != nil {
		return m.submitFailure(params, err)
	}

	res := resultFromOrder(resp)
	m.metrics.OrdersSent.Inc()
	m.log.Info("orders: placed", "type", params.OrderType, "order_id", res.OrderID, "status", res.Status)
	return res
}

func (m *Manager) submitAlgoOrder(ctx context.Context, params validate.OrderParams) Result {
	req := binance.AlgoOrderRequest{
		Symbol:        params.Symbol,
		Side:          string(params.Side),
		Type:          string(params.OrderType),
		Quantity:      params.Quantity,
		Price:         params.Price,
		WorkingType:   string(params.WorkingType),
		PriceProtect:  params.PriceProtect,
		CallbackRate:  params.CallbackRate,
		ActivatePrice: params.ActivatePrice,
		ClientOrderID: m.newClientID(),
	}
	if params.TriggerPrice != nil {
		req.TriggerPrice = *params.TriggerPrice
	}

	resp, err := m.exchange.NewAlgoOrder(ctx, req)
	if err != nil {
		return m.submitFailure(params, err)
	}

	res := resultFromAlgo(resp)
	m.metrics.OrdersSent.Inc()
	m.log.Info("orders: placed", "type", params.OrderType, "algo_id", res.OrderID, "status", res.Status)
	return res
}

func (m *Manager) submitFailure(params validate.OrderParams, err error) Result {
	m.metrics.OrderErrors.Inc()
	m.log.Error("orders: submission failed", "type", params.OrderType, "error", err)

	var apiErr *binance.APIError
	if errors.As(err, &apiErr) {
		return failureWithRaw(apiErr.Error(), apiErr.Raw)
	}
	return failure(err.Error())
}

// finish journals a terminal result before handing it back.
func (m *Manager) finish(ctx context.Context, res Result) Result {
	if m.journal != nil {
		if err := m.journal.Record(ctx, res); err != nil {
			m.log.Warn("orders: journal write failed", "error", err)
		}
	}
	return res
}

// CancelOrder cancels an order by id and normalizes the response.
func (m *Manager) CancelOrder(ctx context.Context, symbol string, orderID int64) Result {
	m.log.Info("orders: cancelling", "symbol", symbol, "order_id", orderID)

	resp, err := m.exchange.CancelOrder(ctx, symbol, orderID)
	if err != nil {
		m.log.Error("orders: cancel failed", "order_id", orderID, "error", err)
		var apiErr *binance.APIError
		if errors.As(err, &apiErr) {
			return failureWithRaw(apiErr.Error(), apiErr.Raw)
		}
		return failure(err.Error())
	}
	return resultFromOrder(resp)
}

// CurrentPrice fetches the market price for a symbol through the
// shared price source.
func (m *Manager) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	return m.prices.Get(ctx, symbol)
}

// OpenOrders lists open orders; failures degrade to an empty list.
func (m *Manager) OpenOrders(ctx context.Context, symbol string) []binance.OrderResponse {
	list, err := m.exchange.OpenOrders(ctx, symbol)
	if err != nil {
		m.log.Error("orders: open orders fetch failed", "error", err)
		return nil
	}
	return list
}

// OrderHistory lists past orders; failures degrade to an empty list.
func (m *Manager) OrderHistory(ctx context.Context, symbol string, limit int) []binance.OrderResponse {
	list, err := m.exchange.AllOrders(ctx, symbol, limit)
	if err != nil {
		m.log.Error("orders: history fetch failed", "error", err)
		return nil
	}
	return list
}

// Positions lists current positions; failures degrade to an empty list.
func (m *Manager) Positions(ctx context.Context, symbol string) []binance.Position {
	list, err := m.exchange.PositionRisk(ctx, symbol)
	if err != nil {
		m.log.Error("orders: positions fetch failed", "error", err)
		return nil
	}
	return list
}
