package binance

import (
	"context"
	"strings"
)

// NewOrderRequest is the payload for POST /fapi/v1/order (MARKET and
// LIMIT orders).
type NewOrderRequest struct {
	Symbol        string
	Side          string
	Type          string
	Quantity      float64
	Price         *float64 // LIMIT only
	TimeInForce   string   // LIMIT only, e.g. GTC
	ClientOrderID string
}

// AlgoOrderRequest is the payload for the conditional-order endpoint
// (stop, take-profit, trailing-stop variants).
type AlgoOrderRequest struct {
	Symbol        string
	Side          string
	Type          string
	Quantity      float64
	TriggerPrice  float64
	Price         *float64 // STOP / TAKE_PROFIT limit leg
	WorkingType   string   // CONTRACT_PRICE or MARK_PRICE
	PriceProtect  bool
	CallbackRate  *float64 // TRAILING_STOP_MARKET only
	ActivatePrice *float64 // TRAILING_STOP_MARKET only
	ClientOrderID string
}

// OrderResponse is the plain-order response shape (orderId/status/...).
type OrderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	TimeInForce   string `json:"timeInForce"`
	UpdateTime    int64  `json:"updateTime"`

	Raw map[string]any `json:"-"`
}

// AlgoOrderResponse is the conditional-order response shape. Algo orders
// are not filled at placement, so there is no executed quantity here.
type AlgoOrderResponse struct {
	AlgoID     int64  `json:"algoId"`
	AlgoStatus string `json:"algoStatus"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	OrderType  string `json:"orderType"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`

	Raw map[string]any `json:"-"`
}

// orderParams builds the plain-order parameter list. The insertion order
// here is the canonical signing order: symbol, side, type, quantity,
// then the optional price/timeInForce pair, then newClientOrderId.
func orderParams(req NewOrderRequest) *Params {
	p := NewParams().
		Set("symbol", strings.ToUpper(req.Symbol)).
		Set("side", strings.ToUpper(req.Side)).
		Set("type", strings.ToUpper(req.Type)).
		SetFloat("quantity", req.Quantity)
	if req.Price != nil {
		p.SetFloat("price", *req.Price)
		tif := req.TimeInForce
		if tif == "" {
			tif = "GTC"
		}
		p.Set("timeInForce", strings.ToUpper(tif))
	}
	if req.ClientOrderID != "" {
		p.Set("newClientOrderId", req.ClientOrderID)
	}
	return p
}

// algoOrderParams builds the conditional-order parameter list in its
// canonical signing order.
func algoOrderParams(req AlgoOrderRequest) *Params {
	p := NewParams().
		Set("symbol", strings.ToUpper(req.Symbol)).
		Set("side", strings.ToUpper(req.Side)).
		Set("type", strings.ToUpper(req.Type)).
		SetFloat("quantity", req.Quantity)
	if req.TriggerPrice > 0 {
		p.SetFloat("stopPrice", req.TriggerPrice)
	}
	if req.Price != nil {
		p.SetFloat("price", *req.Price)
		p.Set("timeInForce", "GTC")
	}
	if req.CallbackRate != nil {
		p.SetFloat("callbackRate", *req.CallbackRate)
	}
	if req.ActivatePrice != nil {
		p.SetFloat("activationPrice", *req.ActivatePrice)
	}
	workingType := req.WorkingType
	if workingType == "" {
		workingType = "CONTRACT_PRICE"
	}
	p.Set("workingType", strings.ToUpper(workingType))
	if req.PriceProtect {
		p.SetBool("priceProtect", true)
	}
	if req.ClientOrderID != "" {
		p.Set("newClientOrderId", req.ClientOrderID)
	}
	return p
}

// NewOrder places a MARKET or LIMIT order.
func (c *Client) NewOrder(ctx context.Context, req NewOrderRequest) (*OrderResponse, error) {
	body, err := c.post(ctx, "/order", orderParams(req), true)
	if err != nil {
		return nil, err
	}
	var resp OrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	resp.Raw = rawMap(body)
	return &resp, nil
}

// NewAlgoOrder places a conditional order.
func (c *Client) NewAlgoOrder(ctx context.Context, req AlgoOrderRequest) (*AlgoOrderResponse, error) {
	body, err := c.post(ctx, "/algoOrder", algoOrderParams(req), true)
	if err != nil {
		return nil, err
	}
	var resp AlgoOrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	resp.Raw = rawMap(body)
	return &resp, nil
}

// QueryOrder fetches a single order by id.
func (c *Client) QueryOrder(ctx context.Context, symbol string, orderID int64) (*OrderResponse, error) {
	params := NewParams().
		Set("symbol", strings.ToUpper(symbol)).
		SetInt("orderId", orderID)
	body, err := c.get(ctx, "/order", params, true)
	if err != nil {
		return nil, err
	}
	var resp OrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	resp.Raw = rawMap(body)
	return &resp, nil
}

// CancelOrder cancels an order by id.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (*OrderResponse, error) {
	params := NewParams().
		Set("symbol", strings.ToUpper(symbol)).
		SetInt("orderId", orderID)
	body, err := c.delete(ctx, "/order", params, true)
	if err != nil {
		return nil, err
	}
	var resp OrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	resp.Raw = rawMap(body)
	return &resp, nil
}

// OpenOrders lists open orders, for one symbol when given or all
// symbols when empty.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]OrderResponse, error) {
	params := NewParams()
	if symbol != "" {
		params.Set("symbol", strings.ToUpper(symbol))
	}
	body, err := c.get(ctx, "/openOrders", params, true)
	if err != nil {
		return nil, err
	}
	var resp []OrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AllOrders lists active, canceled, and filled orders for a symbol.
func (c *Client) AllOrders(ctx context.Context, symbol string, limit int) ([]OrderResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	params := NewParams().
		Set("symbol", strings.ToUpper(symbol)).
		SetInt("limit", int64(limit))
	body, err := c.get(ctx, "/allOrders", params, true)
	if err != nil {
		return nil, err
	}
	var resp []OrderResponse
	if err := decodeInto(body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
