package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dcheng/futures-trading/internal/telemetry"
)

const defaultTimeout = 30 * time.Second

// ClientConfig carries the connection settings for a Client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string

	// RecvWindow in ms, appended to signed requests when > 0.
	RecvWindow int

	// Timeout defaults to 30s when zero.
	Timeout time.Duration
}

// Client talks to the Binance USDT-M futures REST API. It owns the
// outbound HTTP connection pool, attaches the API-key header, signs
// requests that need it, and classifies every response into a success
// payload or an *APIError. It never retries; each call attempt is
// made exactly once.
type Client struct {
	baseURL      string
	apiKey       string
	signer       *Signer
	recvWindow   int
	httpClient   *http.Client
	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
	log          *slog.Logger
	metrics      *telemetry.Metrics
}

func NewClient(cfg ClientConfig, log *slog.Logger, metrics *telemetry.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		signer:     NewSigner(cfg.SecretKey),
		recvWindow: cfg.RecvWindow,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		readLimiter:  rate.NewLimiter(rate.Limit(20), 20),
		writeLimiter: rate.NewLimiter(rate.Limit(10), 10),
		log:          log,
		metrics:      metrics,
	}
}

// Close releases the pooled connections. Safe to call on all exit paths.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.log.Info("binance: client closed")
}

// request dispatches one HTTP call. Signed requests get recvWindow (if
// configured) and timestamp appended after the caller's parameters, then
// the signature last, so the signed string is byte-identical to the
// query/body string sent.
func (c *Client) request(ctx context.Context, method, endpoint string, params *Params, signed bool) ([]byte, error) {
	lim := c.readLimiter
	if method != http.MethodGet {
		lim = c.writeLimiter
	}
	waitStart := time.Now()
	if err := lim.Wait(ctx); err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: fmt.Sprintf("rate limit wait: %v", err)}
	}
	c.metrics.RateLimiterWait.Record(time.Since(waitStart))

	if params == nil {
		params = NewParams()
	}
	if signed {
		if c.recvWindow > 0 {
			params.SetInt("recvWindow", int64(c.recvWindow))
		}
		params.SetInt("timestamp", time.Now().UnixMilli())
		c.signer.SignParams(params)
	}
	encoded := params.Encode()

	url := c.baseURL + resolvePath(endpoint)
	var bodyReader io.Reader
	if method == http.MethodPost {
		bodyReader = strings.NewReader(encoded)
	} else if encoded != "" {
		url += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.log.Info("binance: request", "method", method, "path", resolvePath(endpoint))

	c.metrics.InFlight.Inc()
	defer c.metrics.InFlight.Dec()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.TransportErrors.Inc()
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.TransportErrors.Inc()
		return nil, classifyTransport(err)
	}
	c.metrics.RequestLatency.Record(time.Since(start))

	c.log.Debug("binance: response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= 400 {
		apiErr := parseAPIError(resp.StatusCode, body)
		c.metrics.APIErrors.Inc()
		c.log.Error("binance: api error", "code", apiErr.Code, "msg", apiErr.Message)
		return nil, apiErr
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params *Params, signed bool) ([]byte, error) {
	return c.request(ctx, http.MethodGet, endpoint, params, signed)
}

func (c *Client) post(ctx context.Context, endpoint string, params *Params, signed bool) ([]byte, error) {
	return c.request(ctx, http.MethodPost, endpoint, params, signed)
}

func (c *Client) delete(ctx context.Context, endpoint string, params *Params, signed bool) ([]byte, error) {
	return c.request(ctx, http.MethodDelete, endpoint, params, signed)
}

// resolvePath prefixes bare endpoints with /fapi/v1; endpoints that
// already carry a /fapi/ version pass through (account and positionRisk
// live under /fapi/v2).
func resolvePath(endpoint string) string {
	if strings.HasPrefix(endpoint, "/fapi/") {
		return endpoint
	}
	return "/fapi/v1" + endpoint
}

func classifyTransport(err error) *APIError {
	code := CodeNetworkError
	var ne net.Error
	if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		code = CodeTimeout
		return &APIError{Code: code, Message: "request timed out"}
	}
	return &APIError{Code: code, Message: fmt.Sprintf("network error: %v", err)}
}

// parseAPIError maps an HTTP >= 400 response onto the exchange's own
// code/msg pair, falling back to the status and raw body when the body
// is not the standard error shape.
func parseAPIError(status int, body []byte) *APIError {
	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &APIError{Code: int64(status), Message: strings.TrimSpace(string(body))}
	}

	var payload struct {
		Code int64  `json:"code"`
		Msg  string `json:"msg"`
	}
	_ = json.Unmarshal(body, &payload)

	code := payload.Code
	if code == 0 {
		code = int64(status)
	}
	msg := payload.Msg
	if msg == "" {
		msg = "Unknown error"
	}
	return &APIError{Code: code, Message: msg, Raw: raw}
}

// decodeInto unmarshals a success payload; a success body that does not
// parse is a transport-class failure, not a silent zero value.
func decodeInto(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &APIError{Code: CodeBadPayload, Message: fmt.Sprintf("unparseable response: %v", err)}
	}
	return nil
}

// rawMap decodes a response body into an opaque map for result auditing.
func rawMap(body []byte) map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal(body, &m)
	return m
}
