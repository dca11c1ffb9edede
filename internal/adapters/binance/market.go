package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// TickerPrice returns the current market price for a symbol.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	params := NewParams().Set("symbol", strings.ToUpper(symbol))
	body, err := c.get(ctx, "/ticker/price", params, false)
	if err != nil {
		return 0, err
	}

	var resp tickerPriceResponse
	if err := decodeInto(body, &resp); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, &APIError{Code: CodeBadPayload, Message: fmt.Sprintf("bad ticker price %q", resp.Price)}
	}
	return price, nil
}

// SymbolInfo is the subset of exchange filters the CLI surfaces.
type SymbolInfo struct {
	Symbol            string `json:"symbol"`
	Status            string `json:"status"`
	BaseAsset         string `json:"baseAsset"`
	QuoteAsset        string `json:"quoteAsset"`
	PricePrecision    int    `json:"pricePrecision"`
	QuantityPrecision int    `json:"quantityPrecision"`
}

type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// GetExchangeInfo fetches the exchange's trading rules and symbol list.
func (c *Client) GetExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	body, err := c.get(ctx, "/exchangeInfo", nil, false)
	if err != nil {
		return nil, err
	}
	var info ExchangeInfo
	if err := decodeInto(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// PriceCache wraps TickerPrice with a short TTL cache and in-flight
// dedup, so validation and presentation within one command don't hit
// the ticker endpoint twice for the same symbol.
type PriceCache struct {
	client *Client
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]priceEntry
	group   singleflight.Group
}

type priceEntry struct {
	price     float64
	fetchedAt time.Time
}

func NewPriceCache(client *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{
		client:  client,
		ttl:     ttl,
		entries: make(map[string]priceEntry),
	}
}

// Get returns the cached price for symbol, fetching when stale.
// Concurrent callers for the same symbol share a single fetch.
func (pc *PriceCache) Get(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	pc.mu.RLock()
	e, ok := pc.entries[symbol]
	pc.mu.RUnlock()
	if ok && time.Since(e.fetchedAt) < pc.ttl {
		return e.price, nil
	}

	v, err, _ := pc.group.Do(symbol, func() (any, error) {
		price, err := pc.client.TickerPrice(ctx, symbol)
		if err != nil {
			return 0.0, err
		}
		pc.mu.Lock()
		pc.entries[symbol] = priceEntry{price: price, fetchedAt: time.Now()}
		pc.mu.Unlock()
		return price, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Invalidate forces the next Get for symbol to fetch fresh data.
func (pc *PriceCache) Invalidate(symbol string) {
	pc.mu.Lock()
	delete(pc.entries, strings.ToUpper(strings.TrimSpace(symbol)))
	pc.mu.Unlock()
}
