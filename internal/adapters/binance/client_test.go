package binance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcheng/futures-trading/internal/telemetry"
)

// mockRoundTripper lets tests script HTTP responses without a network.
type mockRoundTripper struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.fn(req)
}

func newTestClient(fn func(req *http.Request) (*http.Response, error)) *Client {
	c := NewClient(ClientConfig{
		BaseURL:    "https://testnet.example",
		APIKey:     "test-key",
		SecretKey:  "test-secret",
		RecvWindow: 5000,
	}, nil, nil)
	c.httpClient.Transport = &mockRoundTripper{fn: fn}
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestTickerPrice(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/fapi/v1/ticker/price", req.URL.Path)
		assert.Equal(t, "symbol=BTCUSDT", req.URL.RawQuery)
		// Unsigned endpoint carries no timestamp or signature.
		assert.NotContains(t, req.URL.RawQuery, "signature")
		assert.Equal(t, "test-key", req.Header.Get("X-MBX-APIKEY"))
		return jsonResponse(200, `{"symbol":"BTCUSDT","price":"50123.45"}`), nil
	})

	price, err := client.TickerPrice(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 50123.45, price)
}

func TestSignedRequestParamOrder(t *testing.T) {
	signer := NewSigner("test-secret")

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/fapi/v1/order", req.URL.Path)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		encoded := string(body)

		// User params first, in builder order, then recvWindow,
		// timestamp, and the signature last.
		assert.True(t, strings.HasPrefix(encoded,
			"symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.01&newClientOrderId=cid-1&recvWindow=5000&timestamp="), encoded)

		idx := strings.LastIndex(encoded, "&signature=")
		require.Greater(t, idx, 0)
		preimage, sig := encoded[:idx], encoded[idx+len("&signature="):]
		assert.Equal(t, signer.Sign(preimage), sig, "signature must cover the literal body string")

		return jsonResponse(200, `{"orderId":1,"symbol":"BTCUSDT","status":"FILLED","side":"BUY","type":"MARKET","origQty":"0.01","executedQty":"0.01","avgPrice":"50000"}`), nil
	})

	resp, err := client.NewOrder(context.Background(), NewOrderRequest{
		Symbol:        "BTCUSDT",
		Side:          "BUY",
		Type:          "MARKET",
		Quantity:      0.01,
		ClientOrderID: "cid-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.OrderID)
	assert.Equal(t, "FILLED", resp.Status)
	assert.Equal(t, "0.01", resp.ExecutedQty)
	assert.Equal(t, "FILLED", resp.Raw["status"])
}

func TestLimitOrderParams(t *testing.T) {
	var encoded string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		encoded = string(body)
		return jsonResponse(200, `{"orderId":7,"status":"NEW"}`), nil
	})

	price := 50000.0
	_, err := client.NewOrder(context.Background(), NewOrderRequest{
		Symbol:   "BTCUSDT",
		Side:     "SELL",
		Type:     "LIMIT",
		Quantity: 0.01,
		Price:    &price,
	})
	require.NoError(t, err)
	assert.Contains(t, encoded, "price=50000")
	assert.Contains(t, encoded, "timeInForce=GTC")
}

func TestAlgoOrderParams(t *testing.T) {
	var encoded string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/fapi/v1/algoOrder", req.URL.Path)
		body, _ := io.ReadAll(req.Body)
		encoded = string(body)
		return jsonResponse(200, `{"algoId":2,"algoStatus":"NEW","orderType":"STOP_MARKET","quantity":"0.01"}`), nil
	})

	resp, err := client.NewAlgoOrder(context.Background(), AlgoOrderRequest{
		Symbol:       "BTCUSDT",
		Side:         "SELL",
		Type:         "STOP_MARKET",
		Quantity:     0.01,
		TriggerPrice: 48000,
		PriceProtect: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.AlgoID)
	assert.Equal(t, "NEW", resp.AlgoStatus)
	assert.Contains(t, encoded, "stopPrice=48000")
	assert.Contains(t, encoded, "workingType=CONTRACT_PRICE")
	assert.Contains(t, encoded, "priceProtect=true")
}

func TestAPIErrorClassification(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(400, `{"code":-1121,"msg":"Invalid symbol."}`), nil
	})

	_, err := client.TickerPrice(context.Background(), "NOPEUSDT")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(-1121), apiErr.Code)
	assert.Equal(t, "Invalid symbol.", apiErr.Message)
	assert.False(t, apiErr.Transport())
	assert.Equal(t, "Binance API Error [-1121]: Invalid symbol.", apiErr.Error())
	assert.Equal(t, "Invalid symbol.", apiErr.Raw["msg"])
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(502, `Bad Gateway`), nil
	})

	_, err := client.GetExchangeInfo(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(502), apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestNetworkErrorSyntheticCode(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.TickerPrice(context.Background(), "BTCUSDT")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNetworkError, apiErr.Code)
	assert.True(t, apiErr.Transport())
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestTimeoutSyntheticCode(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})

	_, err := client.TickerPrice(context.Background(), "BTCUSDT")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeTimeout, apiErr.Code)
	assert.True(t, apiErr.Transport())
}

func TestUnparseableSuccessBody(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `not json at all`), nil
	})

	_, err := client.TickerPrice(context.Background(), "BTCUSDT")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeBadPayload, apiErr.Code)
	assert.True(t, apiErr.Transport())
}

func TestOpenOrdersSigned(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/fapi/v1/openOrders", req.URL.Path)
		assert.Contains(t, req.URL.RawQuery, "symbol=BTCUSDT")
		assert.Contains(t, req.URL.RawQuery, "timestamp=")
		assert.Contains(t, req.URL.RawQuery, "signature=")
		return jsonResponse(200, `[{"orderId":11,"symbol":"BTCUSDT","status":"NEW"}]`), nil
	})

	list, err := client.OpenOrders(context.Background(), "btcusdt")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].OrderID)
}

func TestAccountV2Path(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/fapi/v2/account", req.URL.Path)
		return jsonResponse(200, `{"totalWalletBalance":"1000.00","availableBalance":"900.00"}`), nil
	})

	info, err := client.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000.00", info.TotalWalletBalance)
}

func TestQueryOrder(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/fapi/v1/order", req.URL.Path)
		assert.Contains(t, req.URL.RawQuery, "symbol=BTCUSDT")
		assert.Contains(t, req.URL.RawQuery, "orderId=42")
		assert.Contains(t, req.URL.RawQuery, "signature=")
		return jsonResponse(200, `{"orderId":42,"status":"PARTIALLY_FILLED","origQty":"0.05","executedQty":"0.02"}`), nil
	})

	resp, err := client.QueryOrder(context.Background(), "btcusdt", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, "PARTIALLY_FILLED", resp.Status)
	assert.Equal(t, "0.02", resp.ExecutedQty)
}

func TestCancelOrderDelete(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/fapi/v1/order", req.URL.Path)
		assert.Contains(t, req.URL.RawQuery, "orderId=42")
		return jsonResponse(200, `{"orderId":42,"status":"CANCELED","symbol":"BTCUSDT"}`), nil
	})

	resp, err := client.CancelOrder(context.Background(), "BTCUSDT", 42)
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", resp.Status)
}

func TestRequestMetrics(t *testing.T) {
	metrics := telemetry.NewMetrics()
	var seenInFlight int64
	client := NewClient(ClientConfig{
		BaseURL:   "https://testnet.example",
		APIKey:    "test-key",
		SecretKey: "test-secret",
	}, nil, metrics)
	client.httpClient.Transport = &mockRoundTripper{fn: func(req *http.Request) (*http.Response, error) {
		seenInFlight = metrics.InFlight.Value()
		return jsonResponse(200, `{"symbol":"BTCUSDT","price":"50000"}`), nil
	}}

	_, err := client.TickerPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seenInFlight, "gauge counts the request while it runs")
	assert.Equal(t, int64(0), metrics.InFlight.Value(), "gauge drains once the request finishes")

	client.httpClient.Transport = &mockRoundTripper{fn: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(400, `{"code":-1121,"msg":"Invalid symbol."}`), nil
	}}
	_, err = client.TickerPrice(context.Background(), "NOPEUSDT")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.APIErrors.Value())

	client.httpClient.Transport = &mockRoundTripper{fn: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	_, err = client.TickerPrice(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.TransportErrors.Value())
	assert.Equal(t, int64(0), metrics.InFlight.Value())
}

func TestPriceCache(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, `{"symbol":"BTCUSDT","price":"50000"}`), nil
	})

	cache := NewPriceCache(client, time.Minute)

	for i := 0; i < 3; i++ {
		price, err := cache.Get(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, 50000.0, price)
	}
	assert.Equal(t, 1, calls, "repeated gets within the TTL must hit the cache")

	cache.Invalidate("BTCUSDT")
	_, err := cache.Get(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
