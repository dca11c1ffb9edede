package orders

import (
	"strconv"

	"github.com/dcheng/futures-trading/internal/adapters/binance"
)

// Result is the single terminal outcome of any order operation. Both
// the plain-order and the algo-order response shapes normalize into it,
// and every failure path produces one instead of an error.
type Result struct {
	Success bool

	OrderID     int64
	Status      string
	Symbol      string
	Side        string
	OrderType   string
	Quantity    float64
	ExecutedQty float64
	Price       *float64
	AvgPrice    *float64

	ErrorMessage string
	Raw          map[string]any
}

func failure(msg string) Result {
	return Result{Success: false, ErrorMessage: msg}
}

func failureWithRaw(msg string, raw map[string]any) Result {
	return Result{Success: false, ErrorMessage: msg, Raw: raw}
}

// resultFromOrder maps the plain-order shape
// (orderId/status/type/origQty/executedQty/price/avgPrice).
func resultFromOrder(resp *binance.OrderResponse) Result {
	return Result{
		Success:     true,
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		Symbol:      resp.Symbol,
		Side:        resp.Side,
		OrderType:   resp.Type,
		Quantity:    parseFloat(resp.OrigQty),
		ExecutedQty: parseFloat(resp.ExecutedQty),
		Price:       floatPtr(resp.Price),
		AvgPrice:    floatPtr(resp.AvgPrice),
		Raw:         resp.Raw,
	}
}

// resultFromAlgo maps the algo-order shape
// (algoId/algoStatus/orderType/quantity/price). Algo orders are not
// filled at placement time, so the executed quantity is always 0.
func resultFromAlgo(resp *binance.AlgoOrderResponse) Result {
	return Result{
		Success:     true,
		OrderID:     resp.AlgoID,
		Status:      resp.AlgoStatus,
		Symbol:      resp.Symbol,
		Side:        resp.Side,
		OrderType:   resp.OrderType,
		Quantity:    parseFloat(resp.Quantity),
		ExecutedQty: 0,
		Price:       floatPtr(resp.Price),
		Raw:         resp.Raw,
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func floatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
