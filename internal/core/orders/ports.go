package orders

import (
	"context"

	"github.com/dcheng/futures-trading/internal/adapters/binance"
)

// Exchange abstracts the outbound exchange API the manager drives.
// Satisfied by *binance.Client.
type Exchange interface {
	TickerPrice(ctx context.Context, symbol string) (float64, error)
	NewOrder(ctx context.Context, req binance.NewOrderRequest) (*binance.OrderResponse, error)
	NewAlgoOrder(ctx context.Context, req binance.AlgoOrderRequest) (*binance.AlgoOrderResponse, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) (*binance.OrderResponse, error)
	OpenOrders(ctx context.Context, symbol string) ([]binance.OrderResponse, error)
	AllOrders(ctx context.Context, symbol string, limit int) ([]binance.OrderResponse, error)
	PositionRisk(ctx context.Context, symbol string) ([]binance.Position, error)
}

var _ Exchange = (*binance.Client)(nil)

// PriceSource supplies the market price used for validation and
// display. Backed by a shared PriceCache in production so repeated
// lookups within a command share one fetch.
type PriceSource interface {
	Get(ctx context.Context, symbol string) (float64, error)
}

var _ PriceSource = (*binance.PriceCache)(nil)

// Journal receives every terminal order result for local persistence.
type Journal interface {
	Record(ctx context.Context, res Result) error
}
