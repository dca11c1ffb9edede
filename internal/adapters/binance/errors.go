package binance

import "fmt"

// Synthetic error codes for failures that never reached the exchange's
// error handler. They sit far outside Binance's real code range so
// callers can tell transport faults from exchange-reported errors.
const (
	CodeNetworkError int64 = -9000
	CodeTimeout      int64 = -9001
	CodeBadPayload   int64 = -9002
)

// APIError is an error reported by the exchange (negative Binance code)
// or synthesized by the client for transport failures.
type APIError struct {
	Code    int64
	Message string
	Raw     map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Binance API Error [%d]: %s", e.Code, e.Message)
}

// Transport reports whether this error was synthesized client-side
// rather than returned by the exchange.
func (e *APIError) Transport() bool {
	return e.Code == CodeNetworkError || e.Code == CodeTimeout || e.Code == CodeBadPayload
}
